package security

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult is the outcome of checking an uploaded CV.
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

var pdfMagic = []byte("%PDF")

const pdfMIME = "application/pdf"

// ValidatePDF accepts only PDF documents. The extension, when present, must be
// .pdf, the content must start with the %PDF signature, and the sniffed MIME
// type must be application/pdf. declaredMIME is checked when the client sent
// one.
func ValidatePDF(filename, declaredMIME string, data []byte) FileValidationResult {
	result := FileValidationResult{Extension: strings.ToLower(filepath.Ext(filename))}

	if result.Extension != "" && result.Extension != ".pdf" {
		result.Error = "file extension not allowed: " + result.Extension
		return result
	}

	if declared := normalizeMIME(declaredMIME); declared != "" && declared != pdfMIME && declared != "application/octet-stream" {
		result.Error = "declared MIME type not allowed: " + declared
		return result
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		result.Error = "file content is not a PDF"
		return result
	}

	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	if !detected.Is(pdfMIME) {
		result.Error = "MIME type not allowed: " + result.DetectedMIME
		return result
	}

	result.Valid = true
	return result
}

// IsPDF reports whether data sniffs as a PDF.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic) && mimetype.Detect(data).Is(pdfMIME)
}

func normalizeMIME(m string) string {
	m, _, _ = strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(m))
}
