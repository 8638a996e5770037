package textutil

import (
	"path"
	"strings"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace
// and dots so it can never name a parent directory.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.Trim(strings.TrimSpace(fileNameReplacer.Replace(name)), ".")
}

// FileNameFromURL derives a download filename from a URL path, falling back
// to fallback (plus the URL's extension) when the path has no usable base.
func FileNameFromURL(rawPath, fallback string) string {
	base := path.Base(rawPath)
	ext := path.Ext(base)
	if decoded := SanitizeFileName(base); decoded != "" && decoded != "-" {
		return decoded
	}
	name := SanitizeFileName(fallback)
	if name == "" {
		name = "download"
	}
	return name + ext
}
