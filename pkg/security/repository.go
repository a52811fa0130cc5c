package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SecurityEventRepository handles persistence of security events to database
type SecurityEventRepository struct {
	db *pgxpool.Pool
}

// NewSecurityEventRepository creates a new repository for security events
func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

const insertSecurityEvent = `
	INSERT INTO security_events (
		event_type, service, environment, severity,
		subject_type, subject_value, ip_address, user_agent,
		request_id, details, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// PersistEvent inserts a security event into the database
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event StoredEvent) error {
	args, err := eventArgs(event)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, insertSecurityEvent, args...); err != nil {
		return fmt.Errorf("failed to persist security event: %w", err)
	}
	return nil
}

// eventArgs lines the event up with insertSecurityEvent's placeholders.
// Empty strings become NULL so the inet column accepts a missing IP.
func eventArgs(event StoredEvent) ([]any, error) {
	var details []byte
	if len(event.Details) > 0 {
		var err error
		if details, err = json.Marshal(event.Details); err != nil {
			return nil, fmt.Errorf("encode event details: %w", err)
		}
	}

	return []any{
		string(event.Event),
		event.Service,
		event.Environment,
		string(event.Severity),
		nullable(event.SubjectType),
		nullable(event.SubjectValue),
		nullable(event.IP),
		nullable(event.UserAgent),
		nullable(event.RequestID),
		details,
		event.Timestamp,
	}, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
