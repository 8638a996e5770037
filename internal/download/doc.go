// Package download routes a download request for one catalog item.
//
// Dispatch never fails because the user is not entitled: a Locked gate yields
// ActionPromptEntitlement and no transfer. Unlocked HTTP(S) items are
// streamed into the download directory; items stored behind an opaque remote
// path go to the deployment's single remote strategy, which either copies an
// rclone command to the clipboard or opens a storage search for the item.
package download
