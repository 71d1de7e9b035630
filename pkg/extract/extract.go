// Package extract pulls plain text out of uploaded contract and invoice
// documents. Extraction failures are result values, never errors: a broken
// page or file yields whatever text could be salvaged, and callers decide
// what an empty result means.
package extract

import (
	"os"
	"path/filepath"
	"strings"
)

// Text extracts plain text from the file at path, dispatching on the
// original filename's extension. The second return value is false when the
// extension is unsupported or the file does not exist; extraction problems
// inside a supported file are logged and surface only as missing text.
func Text(path, originalFilename string) (string, bool) {
	name := strings.ToLower(originalFilename)
	switch {
	case strings.HasSuffix(name, ".pdf"):
		if _, err := os.Stat(path); err != nil {
			return "", false
		}
		return PDFText(path), true
	case strings.HasSuffix(name, ".docx"):
		if _, err := os.Stat(path); err != nil {
			return "", false
		}
		return DOCXText(path), true
	default:
		return "", false
	}
}

// Supported reports whether the filename has an extension this package
// can extract text from.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".pdf" || ext == ".docx"
}
