package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/screening"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type cvRepo struct {
	db *pgxpool.Pool
}

func NewCVRepository(db *pgxpool.Pool) domain.CVRepository {
	return &cvRepo{db: db}
}

const cvColumns = `id::text, submitted_at, full_name, email, job_title, phone_number,
	file_name, file_extension, mime_type, file_size, storage_key, file_url,
	evaluation, starred, created_at, updated_at`

// segmentClauses select the rows of each segment. Rejected includes records
// that were never evaluated.
var segmentClauses = map[domain.Segment]string{
	domain.SegmentAll:      "TRUE",
	domain.SegmentAccepted: "decision = 'accept'",
	domain.SegmentRejected: "decision IS DISTINCT FROM 'accept'",
	domain.SegmentStarred:  "starred",
	domain.SegmentShopify:  "role_id = '" + screening.ShopifyRoleID + "'",
	domain.SegmentGCMS:     "role_id = '" + screening.GCMSRoleID + "'",
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"score":     "score",
	"fullName":  "LOWER(full_name)",
	"timestamp": "submitted_at",
}

// queryBuilder accumulates WHERE conditions and their positional arguments.
type queryBuilder struct {
	conds []string
	args  []any
}

func (b *queryBuilder) add(cond string, args ...any) {
	for _, a := range args {
		b.args = append(b.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.conds = append(b.conds, cond)
}

func (b *queryBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func segmentClause(s domain.Segment) (string, error) {
	clause, ok := segmentClauses[s]
	if !ok {
		return "", fmt.Errorf("%w: unknown segment %q", domain.ErrValidation, s)
	}
	return clause, nil
}

// buildListWhere renders the filter's segment, search and score conditions.
func buildListWhere(f domain.CVFilter) (string, []any, error) {
	clause, err := segmentClause(f.Segment)
	if err != nil {
		return "", nil, err
	}
	b := &queryBuilder{}
	b.add(clause)
	if f.Search != "" {
		b.add("(full_name ILIKE ? OR email ILIKE ?)", likePattern(f.Search), likePattern(f.Search))
	}
	if f.MinScore != nil {
		b.add("score >= ?", *f.MinScore)
	}
	return b.where(), b.args, nil
}

func orderBy(f domain.CVFilter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id %s", col, dir, dir)
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *cvRepo) Create(ctx context.Context, record *domain.CVRecord) error {
	evaluation, err := marshalEvaluation(record.Evaluation)
	if err != nil {
		return err
	}

	record.ID = uuid.NewString()
	var roleID, decision, rank *string
	var score *int
	matched := []string{}
	if ev := record.Evaluation; ev != nil {
		d := string(ev.Decision)
		roleID, decision, rank, score = &ev.RoleID, &d, &ev.Rank, &ev.Score
		matched = ev.MatchedGroups
	}

	query := `INSERT INTO cvs (id, submitted_at, full_name, email, job_title, phone_number,
		file_name, file_extension, mime_type, file_size, storage_key, file_url,
		role_id, decision, rank, score, matched_groups, evaluation, starred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18::jsonb, $19)
		RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		record.ID, record.Timestamp, record.FullName, record.Email, record.JobTitle, record.PhoneNumber,
		record.File.FileName, record.File.FileExtension, record.File.MimeType, record.File.FileSize,
		record.File.StorageKey, record.File.FileURL,
		roleID, decision, rank, score, pq.Array(matched), evaluation, record.Starred,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
}

func (r *cvRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cvs`).Scan(&total)
	return total, err
}

func (r *cvRepo) GetByID(ctx context.Context, id string) (*domain.CVRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+cvColumns+` FROM cvs WHERE id = $1`, id)
	record, err := scanCV(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return record, err
}

func (r *cvRepo) List(ctx context.Context, filter domain.CVFilter) ([]domain.CVRecord, int64, error) {
	where, args, err := buildListWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cvs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + cvColumns + ` FROM cvs` + where + orderBy(filter)
	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []domain.CVRecord
	for rows.Next() {
		record, err := scanCV(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *cvRepo) UpdateStarred(ctx context.Context, id string, starred bool) (*domain.CVRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		`UPDATE cvs SET starred = $2, updated_at = NOW() WHERE id = $1 RETURNING `+cvColumns,
		id, starred)
	record, err := scanCV(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return record, err
}

func (r *cvRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM cvs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *cvRepo) DeleteBulk(ctx context.Context, ids []string) (*domain.DeletedCVs, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return &domain.DeletedCVs{}, nil
	}
	return r.deleteReturningKeys(ctx,
		`DELETE FROM cvs WHERE id = ANY($1::uuid[]) RETURNING storage_key`, pq.Array(valid))
}

func (r *cvRepo) DeleteRejected(ctx context.Context) (*domain.DeletedCVs, error) {
	return r.deleteReturningKeys(ctx,
		`DELETE FROM cvs WHERE `+segmentClauses[domain.SegmentRejected]+` RETURNING storage_key`)
}

// deleteReturningKeys runs a DELETE ... RETURNING storage_key and collects the
// non-null keys so the caller can clean up object storage.
func (r *cvRepo) deleteReturningKeys(ctx context.Context, query string, args ...any) (*domain.DeletedCVs, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.DeletedCVs{}
	for rows.Next() {
		var key *string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		result.Count++
		if key != nil && *key != "" {
			result.StorageKeys = append(result.StorageKeys, *key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *cvRepo) CountSince(ctx context.Context, segment domain.Segment, since *time.Time) (int64, error) {
	clause, err := segmentClause(segment)
	if err != nil {
		return 0, err
	}
	b := &queryBuilder{}
	b.add(clause)
	if since != nil {
		b.add("created_at >= ?", *since)
	}

	var total int64
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cvs`+b.where(), b.args...).Scan(&total)
	return total, err
}

func (r *cvRepo) RankBreakdown(ctx context.Context, segment domain.Segment) (map[string]int64, float64, error) {
	clause, err := segmentClause(segment)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT rank, COUNT(*) FROM cvs WHERE `+clause+` AND rank IS NOT NULL GROUP BY rank`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	byRank := make(map[string]int64)
	for rows.Next() {
		var rank string
		var n int64
		if err := rows.Scan(&rank, &n); err != nil {
			return nil, 0, err
		}
		byRank[rank] = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var avg float64
	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(AVG(score), 0)::float8 FROM cvs WHERE `+clause+` AND score IS NOT NULL`).Scan(&avg)
	if err != nil {
		return nil, 0, err
	}
	return byRank, avg, nil
}

// marshalEvaluation returns the JSON text for the jsonb column, nil for NULL.
func marshalEvaluation(ev *domain.DecisionRecord) (*string, error) {
	if ev == nil {
		return nil, nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation: %w", err)
	}
	s := string(b)
	return &s, nil
}

func scanCV(row pgx.Row) (*domain.CVRecord, error) {
	var (
		rec        domain.CVRecord
		evaluation []byte
	)
	err := row.Scan(
		&rec.ID, &rec.Timestamp, &rec.FullName, &rec.Email, &rec.JobTitle, &rec.PhoneNumber,
		&rec.File.FileName, &rec.File.FileExtension, &rec.File.MimeType, &rec.File.FileSize,
		&rec.File.StorageKey, &rec.File.FileURL,
		&evaluation, &rec.Starred, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(evaluation) > 0 {
		var ev domain.DecisionRecord
		if err := json.Unmarshal(evaluation, &ev); err != nil {
			return nil, fmt.Errorf("decode evaluation of cv %s: %w", rec.ID, err)
		}
		rec.Evaluation = &ev
	}
	return &rec, nil
}
