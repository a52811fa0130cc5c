package security

import "go.uber.org/zap/zapcore"

// Severity is derived from the EventType, never supplied by callers.
type Severity string

const (
	SeverityINFO Severity = "INFO"
	SeverityWARN Severity = "WARN"
	SeverityHIGH Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventLoginSuccess:       SeverityINFO,
	EventLogout:             SeverityINFO,
	EventBulkDelete:         SeverityINFO,
	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventUploadRejected:     SeverityWARN,
	EventLoginBlocked:       SeverityHIGH,
	EventUnauthorizedAccess: SeverityHIGH,
}

// GetSeverity returns the severity for an event type, WARN when unmapped.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := eventSeverity[eventType]; ok {
		return severity
	}
	return SeverityWARN
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
