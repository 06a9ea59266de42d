package embed

import (
	"path"
	"strings"
)

// Content type for an upload, chosen by file suffix only. Bytes are never sniffed.
func MimeTypeForPath(p string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
