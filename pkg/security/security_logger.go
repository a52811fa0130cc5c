package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an audit event.
type EventType string

const (
	EventLoginSuccess       EventType = "admin_login_success"
	EventLoginFailed        EventType = "admin_login_failed"
	EventLoginBlocked       EventType = "admin_login_blocked"
	EventLogout             EventType = "admin_logout"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUploadRejected     EventType = "upload_rejected"
	EventBulkDelete         EventType = "cv_bulk_delete"
)

// SecurityEvent is one audit log line.
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip" or "cv"
	SubjectValue string // masked or hashed
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]any
}

// PersistFunc stores an event outside the log stream.
type PersistFunc func(ctx context.Context, event StoredEvent) error

// StoredEvent is an event together with the fields the logger adds to it.
type StoredEvent struct {
	SecurityEvent
	Service     string
	Environment string
	Severity    Severity
}

// SecurityLogger writes audit events through zap, separate from the
// application log, and optionally persists them.
type SecurityLogger struct {
	zapLogger      *zap.Logger
	serviceName    string
	environment    string
	persist        PersistFunc
	persistTimeout time.Duration
	inflight       sync.WaitGroup
}

const serviceName = "cv-screening-backend"

var (
	defaultMu     sync.RWMutex
	defaultLogger *SecurityLogger
)

// InitSecurityLogger builds the production zap logger and installs it as the
// default.
func InitSecurityLogger(environment string) *SecurityLogger {
	sl := newProductionLogger(environment)
	defaultMu.Lock()
	defaultLogger = sl
	defaultMu.Unlock()
	return sl
}

func newProductionLogger(environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return NewSecurityLogger(logger, environment)
}

// NewSecurityLogger wraps an existing zap logger. Tests pass an observer core.
func NewSecurityLogger(logger *zap.Logger, environment string) *SecurityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the process-wide security logger.
func DefaultLogger() *SecurityLogger {
	defaultMu.RLock()
	sl := defaultLogger
	defaultMu.RUnlock()
	if sl != nil {
		return sl
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = newProductionLogger(getEnvironment())
	}
	return defaultLogger
}

// SetPersistFunc makes Log also hand every event to fn in the background.
// Call it before the logger is shared.
func (sl *SecurityLogger) SetPersistFunc(fn PersistFunc, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	sl.persist = fn
	sl.persistTimeout = timeout
}

// Log writes one event.
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	severity := GetSeverity(event.Event)
	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(severity.level(), string(event.Event), fields...)

	if sl.persist != nil {
		sl.persistAsync(ctx, StoredEvent{
			SecurityEvent: event,
			Service:       sl.serviceName,
			Environment:   sl.environment,
			Severity:      severity,
		})
	}
}

// persistAsync runs detached from the request so a slow database never
// delays the response.
func (sl *SecurityLogger) persistAsync(ctx context.Context, event StoredEvent) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	sl.inflight.Add(1)
	go func() {
		defer sl.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, sl.persistTimeout)
		defer cancel()
		if err := sl.persist(ctx, event); err != nil {
			sl.zapLogger.Warn("Failed to persist security event",
				zap.String("event", string(event.Event)), zap.Error(err))
		}
	}()
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
	})
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip, userAgent, requestID string, retryAfter time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"retry_after_seconds": int(retryAfter.Seconds())},
	})
}

func (sl *SecurityLogger) LogLogout(ctx context.Context, email, ip, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLogout,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
	})
}

func (sl *SecurityLogger) LogUnauthorized(ctx context.Context, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Details:   map[string]any{"reason": reason},
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

// LogUploadRejected records a webhook upload refused by the file checks.
func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, ip, requestID, filename, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadRejected,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"file_hash": HashValue(filename), "reason": reason},
	})
}

func (sl *SecurityLogger) LogBulkDelete(ctx context.Context, ip, requestID, scope string, deleted int64) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBulkDelete,
		SubjectType:  "cv",
		SubjectValue: scope,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"deleted": deleted},
	})
}

// Sync waits for pending writes and flushes buffered entries.
func (sl *SecurityLogger) Sync() error {
	sl.inflight.Wait()
	return sl.zapLogger.Sync()
}

// MaskEmail keeps the first character and the domain: "j***@example.com".
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[1:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns the first 16 hex characters of the value's SHA-256.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
