package constants

import (
	"path/filepath"
	"strings"
)

// FileFormat is the closed set of document formats the pipeline understands.
// UNKNOWN routes to the fallback extraction strategy.
type FileFormat string

const (
	PDF     FileFormat = "PDF"
	DOCX    FileFormat = "DOCX"
	IMAGE   FileFormat = "IMAGE"
	TEXT    FileFormat = "TEXT"
	UNKNOWN FileFormat = "UNKNOWN"
)

const (
	MIMEPdf  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectFormat classifies a file by declared media type and file name.
// Exact MIME matches win; an absent or generic MIME falls back to the extension.
func DetectFormat(mimeType, fileName string) FileFormat {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == MIMEPdf:
		return PDF
	case mt == MIMEDocx:
		return DOCX
	case strings.HasPrefix(mt, "text/"):
		return TEXT
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	}
	return MapExtToFormat(filepath.Ext(fileName))
}

// MapExtToFormat maps a file extension to a FileFormat.
func MapExtToFormat(ext string) FileFormat {
	switch e := NormalizeExt(ext); {
	case e == "pdf":
		return PDF
	case e == "docx":
		return DOCX
	case e == "txt":
		return TEXT
	default:
		if _, ok := imageExtensions[NormalizeExt(ext)]; ok {
			return IMAGE
		}
		return UNKNOWN
	}
}

// IsImageExt reports whether ext is a recognized image extension.
func IsImageExt(ext string) bool {
	_, ok := imageExtensions[NormalizeExt(ext)]
	return ok
}
