package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// partSuffix marks files still being written.
const partSuffix = ".part"

// ErrExists reports that the destination already exists.
var ErrExists = errors.New("destination already exists")

// Written describes a completed StreamToFile.
type Written struct {
	Path   string
	Bytes  int64
	SHA256 string
}

// StreamToFile copies r into dst through a sibling ".part" file that is
// renamed into place only after a successful copy. The partial file is
// removed on any failure. An existing dst is never overwritten.
func StreamToFile(dst string, r io.Reader, mode os.FileMode) (Written, error) {
	if _, err := os.Stat(dst); err == nil {
		return Written{}, fmt.Errorf("%w: %s", ErrExists, dst)
	}
	part := dst + partSuffix
	out, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return Written{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = out.Close()
			_ = os.Remove(part)
		}
	}()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, hasher), r)
	if err != nil {
		return Written{}, err
	}
	if err := out.Sync(); err != nil {
		return Written{}, fmt.Errorf("sync: %w", err)
	}
	if err := out.Close(); err != nil {
		return Written{}, err
	}
	if err := os.Rename(part, dst); err != nil {
		_ = os.Remove(part)
		committed = true
		return Written{}, fmt.Errorf("rename: %w", err)
	}
	committed = true
	return Written{Path: dst, Bytes: written, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// UniquePath returns dir/name, or dir/"name (n).ext" for the first n that
// does not exist yet.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for n := 2; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// EnsureWritableDir creates dir if needed and verifies it is writable.
func EnsureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return nil
}
