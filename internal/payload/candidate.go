package payload

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

var validate = validation.New()

// timestampLayouts are tried in order on string timestamps.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ExtractCandidateFields reads the candidate record from the resolved payload.
// A missing or blank fullName, email or jobTitle yields a
// *domain.ValidationError. Timestamps that are absent or unparsable fall back
// to now.
func ExtractCandidateFields(payload any, now time.Time) (domain.CandidateFields, error) {
	obj := Resolve(payload).Object

	fields := domain.CandidateFields{
		FullName:    stringField(obj, "fullName"),
		Email:       stringField(obj, "email"),
		JobTitle:    stringField(obj, "jobTitle"),
		PhoneNumber: stringField(obj, "phoneNumber"),
		Timestamp:   now,
	}

	if err := validate.Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.CandidateFields{}, err
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return domain.CandidateFields{}, &domain.ValidationError{Fields: missing}
	}

	for _, key := range []string{"timestamp", "timeStamp"} {
		if ts, ok := parseTimestamp(obj[key]); ok {
			fields.Timestamp = ts
			break
		}
	}
	return fields, nil
}

// stringField returns the trimmed string form of obj[key]. Numbers are
// accepted so numeric phone numbers survive.
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC(), true
		}
	case float64:
		if t > 0 && t < math.MaxInt64 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
	}
	return time.Time{}, false
}
