package pdftext_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/pdftext"

	"github.com/stretchr/testify/assert"
)

func TestExtractText_Failures(t *testing.T) {
	ex := pdftext.New(time.Second)

	t.Run("Should reject an empty document", func(t *testing.T) {
		_, err := ex.ExtractText(context.Background(), nil)
		assert.True(t, errors.Is(err, domain.ErrTextExtraction))
	})

	t.Run("Should report malformed input as an extraction error", func(t *testing.T) {
		_, err := ex.ExtractText(context.Background(), []byte("%PDF-1.4\nthis is not really a pdf"))
		assert.True(t, errors.Is(err, domain.ErrTextExtraction))
	})

	t.Run("Should honour a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ex.ExtractText(ctx, []byte("%PDF-1.4\n"))
		assert.True(t, errors.Is(err, domain.ErrTextExtraction))
	})
}
