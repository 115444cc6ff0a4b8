package constants

import "strings"

// Source formats accepted for extraction.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// Source kinds reported in the response envelope.
const (
	SourceScanned = "scanned"
	SourceDigital = "digital"
)

// AllowedExtensions holds the file extensions accepted for upload and ingest.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF or IMAGE for an allowed extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return ""
	}
}
