// Package pdftext extracts plain text from PDF documents.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cv-screening-backend/internal/domain"

	"github.com/ledongthuc/pdf"
)

// Extractor reads the text layer of a PDF. Scanned documents without a text
// layer produce an empty string, not an error.
type Extractor struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{timeout: timeout}
}

type result struct {
	text string
	err  error
}

// ExtractText returns the document text with whitespace runs collapsed. The
// call gives up when ctx is done or the configured timeout elapses.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", domain.ErrTextExtraction)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		text, err := extract(data)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", domain.ErrTextExtraction, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrTextExtraction, r.err)
		}
		return r.text, nil
	}
}

// extract converts parser panics on malformed input into errors.
func extract(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(buf.String()), " "), nil
}
