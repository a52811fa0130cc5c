package security

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*SecurityLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewSecurityLogger(zap.New(core), "test"), logs
}

func TestSecurityLogger_Log(t *testing.T) {
	t.Run("Should log at the level of the event severity", func(t *testing.T) {
		sl, logs := observed()
		ctx := context.Background()

		sl.LogLoginSuccess(ctx, "jane@example.com", "10.0.0.1", "curl", "req-1")
		sl.LogLoginFailed(ctx, "jane@example.com", "10.0.0.1", "curl", "req-2", "bad password")
		sl.LogUnauthorized(ctx, "10.0.0.2", "curl", "req-3", "missing token")

		entries := logs.All()
		require.Len(t, entries, 3)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "admin_login_success", fields["event"])
		assert.Equal(t, "INFO", fields["severity"])
		assert.Equal(t, "j***@example.com", fields["subject_value"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "test", fields["env"])
	})

	t.Run("Should hash upload file names", func(t *testing.T) {
		sl, logs := observed()
		sl.LogUploadRejected(context.Background(), "10.0.0.1", "req-4", "secret-name.exe", "bad type")

		details := logs.All()[0].ContextMap()["details"].(map[string]any)
		assert.Equal(t, HashValue("secret-name.exe"), details["file_hash"])
		assert.NotContains(t, details, "filename")
	})

	t.Run("Should persist events in the background", func(t *testing.T) {
		sl, _ := observed()
		var (
			mu     sync.Mutex
			stored []StoredEvent
		)
		sl.SetPersistFunc(func(ctx context.Context, e StoredEvent) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			mu.Lock()
			defer mu.Unlock()
			stored = append(stored, e)
			return nil
		}, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		sl.LogBulkDelete(ctx, "10.0.0.1", "req-5", "rejected", 4)
		cancel()
		require.NoError(t, sl.Sync())

		require.Len(t, stored, 1)
		assert.Equal(t, EventBulkDelete, stored[0].Event)
		assert.Equal(t, SeverityINFO, stored[0].Severity)
		assert.Equal(t, "cv-screening-backend", stored[0].Service)
		assert.False(t, stored[0].Timestamp.IsZero())
	})

	t.Run("Should log persistence failures", func(t *testing.T) {
		sl, logs := observed()
		sl.SetPersistFunc(func(context.Context, StoredEvent) error { return errors.New("db down") }, 0)

		sl.LogLogout(context.Background(), "jane@example.com", "10.0.0.1", "req-6")
		require.NoError(t, sl.Sync())

		assert.Equal(t, 1, logs.FilterMessage("Failed to persist security event").Len())
	})
}

func TestDefaultLogger(t *testing.T) {
	t.Run("Should return the installed logger under concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				InitSecurityLogger("test")
			}()
			go func() {
				defer wg.Done()
				assert.NotNil(t, DefaultLogger())
			}()
		}
		wg.Wait()

		installed := InitSecurityLogger("test")
		assert.Same(t, installed, DefaultLogger())
		assert.Equal(t, "test", DefaultLogger().environment)
	})
}

func TestGetSeverity(t *testing.T) {
	assert.Equal(t, SeverityHIGH, GetSeverity(EventLoginBlocked))
	assert.Equal(t, SeverityWARN, GetSeverity(EventType("something_new")))
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"jane@example.com": "j***@example.com",
		"a@b.io":           "***@b.io",
		"x":                "***",
		"no-at-sign":       "***o-at-sign",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, MaskEmail(in))
		})
	}
}

func TestEventArgs(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	args, err := eventArgs(StoredEvent{
		SecurityEvent: SecurityEvent{Timestamp: ts, Event: EventLogout, Details: map[string]any{"k": 1}},
		Service:       "svc",
		Environment:   "test",
		Severity:      SeverityINFO,
	})
	require.NoError(t, err)
	require.Len(t, args, 11)

	assert.Equal(t, "admin_logout", args[0])
	assert.Equal(t, "INFO", args[3])
	assert.Nil(t, args[6].(*string), "empty IP must be NULL")
	assert.JSONEq(t, `{"k":1}`, string(args[9].([]byte)))
	assert.Equal(t, ts, args[10])
}
