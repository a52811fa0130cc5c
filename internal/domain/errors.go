package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds produced by the screening core. Callers match them with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDocumentDecoding  = errors.New("document decoding failed")
	ErrTextExtraction    = errors.New("text extraction failed")
	ErrConfiguration     = errors.New("invalid role configuration")
	ErrEvaluatorNotFound = errors.New("no evaluator for job title")
	ErrNotFound          = errors.New("record not found")
)

// ValidationError lists the required candidate fields that were missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DocumentDecodingError is returned when a document is present but its content
// cannot be turned into bytes.
type DocumentDecodingError struct {
	Encoding string
	Err      error
}

func (e *DocumentDecodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s document: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("decode %s document", e.Encoding)
}

func (e *DocumentDecodingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDocumentDecoding}
	}
	return []error{ErrDocumentDecoding, e.Err}
}
