package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"cv-screening-backend/internal/domain"
)

// Content is a document body in one of the shapes the webhook delivers it.
// It is one of RawBytes, Base64String or DataURI.
type Content interface {
	decode() ([]byte, error)
	encoding() string
}

// RawBytes is content that already arrived as bytes, including Node Buffer
// JSON ({"type":"Buffer","data":[...]}) and bare number arrays.
type RawBytes []byte

// Base64String is base64 text without a data URI prefix.
type Base64String string

// DataURI is a "data:<media type>;base64,<payload>" string split into parts.
type DataURI struct {
	MediaType string
	Data      string
}

func (c RawBytes) decode() ([]byte, error) { return []byte(c), nil }
func (c RawBytes) encoding() string         { return "raw" }

func (c Base64String) decode() ([]byte, error) { return decodeBase64(string(c)) }
func (c Base64String) encoding() string         { return "base64" }

func (c DataURI) decode() ([]byte, error) { return decodeBase64(c.Data) }
func (c DataURI) encoding() string         { return "data-uri" }

var (
	errEmptyContent   = errors.New("document content is empty")
	errUnsupported    = errors.New("unsupported document content")
	errMalformedURI   = errors.New("data URI has no payload separator")
	errByteOutOfRange = errors.New("byte value out of range")
)

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Key aliases, most specific first.
var (
	documentPaths     = [][]string{{"file"}, {"binary"}, {"data", "file"}, {"data", "binary"}, {"binary", "data"}}
	contentKeys       = []string{"data", "binary", "base64"}
	fileNameKeys      = []string{"fileName", "File Name", "filename", "originalname"}
	fileExtensionKeys = []string{"fileExtension", "File Extension"}
	mimeTypeKeys      = []string{"mimeType", "Mime Type", "mimetype"}
	fileSizeKeys      = []string{"fileSize", "File Size"}
)

// maxContentDescents bounds how many nested file objects are followed.
const maxContentDescents = 4

// classifyContent maps a decoded JSON value onto a Content variant. Values
// that cannot hold a document yield an error.
func classifyContent(v any) (Content, error) {
	switch c := v.(type) {
	case []byte:
		return RawBytes(c), nil
	case string:
		s := strings.TrimSpace(c)
		if s == "" {
			return nil, errEmptyContent
		}
		if len(s) >= 5 && strings.EqualFold(s[:5], "data:") {
			header, data, ok := strings.Cut(s[5:], ",")
			if !ok {
				return nil, errMalformedURI
			}
			mediaType, _, _ := strings.Cut(header, ";")
			return DataURI{MediaType: mediaType, Data: data}, nil
		}
		return Base64String(s), nil
	case []any:
		b, err := numbersToBytes(c)
		if err != nil {
			return nil, err
		}
		return RawBytes(b), nil
	case map[string]any:
		if t, _ := c["type"].(string); t == "Buffer" {
			if arr, ok := c["data"].([]any); ok {
				b, err := numbersToBytes(arr)
				if err != nil {
					return nil, err
				}
				return RawBytes(b), nil
			}
		}
	}
	return nil, errUnsupported
}

func numbersToBytes(arr []any) ([]byte, error) {
	if len(arr) == 0 {
		return nil, errEmptyContent
	}
	out := make([]byte, len(arr))
	for i, v := range arr {
		n, ok := v.(float64)
		if !ok || n < 0 || n > 255 || n != float64(int(n)) {
			return nil, errByteOutOfRange
		}
		out[i] = byte(n)
	}
	return out, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, errEmptyContent
	}

	var lastErr error
	for _, enc := range base64Encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ExtractDocument returns the candidate's document. A typed upload wins over
// anything in the body. When no document-bearing key exists it returns
// (nil, nil); content that is present but undecodable yields a
// *domain.DocumentDecodingError.
func ExtractDocument(payload any, upload *domain.Upload, now time.Time) (*domain.Document, error) {
	if upload != nil && len(upload.Data) > 0 {
		return newDocument(upload.Data, domain.DocumentSourceUpload, now, metadata{
			fileName: upload.Filename,
			mimeType: upload.MimeType,
		}), nil
	}

	res := Resolve(payload)
	var (
		holder any
		owner  map[string]any
	)
	res.innermostFirst(func(obj map[string]any) bool {
		for _, p := range documentPaths {
			if v, ok := lookupPath(obj, p); ok {
				holder, owner = v, obj
				return true
			}
		}
		return false
	})
	if holder == nil {
		return nil, nil
	}

	// Metadata sources are searched innermost first: the file object, then
	// the object that carried it.
	sources := []map[string]any{owner}
	raw := holder
	for i := 0; i < maxContentDescents; i++ {
		obj, ok := raw.(map[string]any)
		if !ok || isBufferJSON(obj) {
			break
		}
		sources = append([]map[string]any{obj}, sources...)
		next, found := firstPresent(obj, contentKeys)
		if !found {
			return nil, &domain.DocumentDecodingError{Encoding: "none", Err: errEmptyContent}
		}
		raw = next
	}

	content, err := classifyContent(raw)
	if err != nil {
		return nil, &domain.DocumentDecodingError{Encoding: "unknown", Err: err}
	}
	data, err := content.decode()
	if err != nil {
		return nil, &domain.DocumentDecodingError{Encoding: content.encoding(), Err: err}
	}

	meta := readMetadata(sources)
	if uri, ok := content.(DataURI); ok && meta.mimeType == "" {
		meta.mimeType = uri.MediaType
	}
	return newDocument(data, domain.DocumentSourceBody, now, meta), nil
}

func isBufferJSON(obj map[string]any) bool {
	t, _ := obj["type"].(string)
	_, isArr := obj["data"].([]any)
	return t == "Buffer" && isArr
}

func lookupPath(obj map[string]any, keys []string) (any, bool) {
	var cur any = obj
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[k]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func firstPresent(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

type metadata struct {
	fileName      string
	fileExtension string
	mimeType      string
	fileSize      string
}

func readMetadata(sources []map[string]any) metadata {
	return metadata{
		fileName:      firstString(sources, fileNameKeys),
		fileExtension: firstString(sources, fileExtensionKeys),
		mimeType:      firstString(sources, mimeTypeKeys),
		fileSize:      firstString(sources, fileSizeKeys),
	}
}

func firstString(sources []map[string]any, keys []string) string {
	for _, src := range sources {
		for _, k := range keys {
			if s, ok := src[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func newDocument(data []byte, source domain.DocumentSource, now time.Time, meta metadata) *domain.Document {
	doc := &domain.Document{
		FileName:      meta.fileName,
		FileExtension: strings.TrimPrefix(strings.ToLower(meta.fileExtension), "."),
		MimeType:      meta.mimeType,
		FileSize:      meta.fileSize,
		Size:          int64(len(data)),
		Source:        source,
		Data:          data,
	}
	if doc.FileName == "" {
		doc.FileName = fmt.Sprintf("cv-%d.pdf", now.UnixMilli())
	}
	if doc.FileExtension == "" {
		doc.FileExtension = strings.TrimPrefix(strings.ToLower(path.Ext(doc.FileName)), ".")
	}
	if doc.FileExtension == "" {
		doc.FileExtension = domain.NoFileExtension
	}
	if doc.MimeType == "" {
		doc.MimeType = domain.MimeTypePDF
	}
	if doc.FileSize == "" {
		doc.FileSize = SizeLabel(doc.Size)
	}
	return doc
}

// SizeLabel renders a byte count the way the automation platform labels file
// sizes, e.g. "12.50 kB".
func SizeLabel(n int64) string {
	return fmt.Sprintf("%.2f kB", float64(n)/1024)
}
