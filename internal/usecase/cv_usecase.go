package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/payload"
	"cv-screening-backend/internal/screening"
	"cv-screening-backend/pkg/logger"
	"cv-screening-backend/pkg/security"
	"cv-screening-backend/pkg/security/antivirus"

	"golang.org/x/sync/errgroup"
)

// EvaluatorResolver picks the evaluator for a submitted job title.
type EvaluatorResolver interface {
	ForJobTitle(title string) (*screening.Evaluator, bool)
}

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

var sortFields = map[string]bool{"createdAt": true, "score": true, "fullName": true, "timestamp": true}

type cvUsecase struct {
	repo      domain.CVRepository
	roles     EvaluatorResolver
	store     domain.DocumentStore
	extractor domain.TextExtractor
	notifier  domain.Notifier
	scanner   antivirus.Scanner
	audit     *security.SecurityLogger
	now       func() time.Time
}

// CVOption configures optional pipeline steps.
type CVOption func(*cvUsecase)

// WithScanner drops documents the scanner flags before they are stored or
// read. Rejections are written to audit.
func WithScanner(scanner antivirus.Scanner, audit *security.SecurityLogger) CVOption {
	return func(u *cvUsecase) {
		u.scanner = scanner
		u.audit = audit
	}
}

// NewCVUsecase wires the submission pipeline. store, extractor and notifier
// may be nil; the matching step is then skipped.
func NewCVUsecase(
	repo domain.CVRepository,
	roles EvaluatorResolver,
	store domain.DocumentStore,
	extractor domain.TextExtractor,
	notifier domain.Notifier,
	opts ...CVOption,
) domain.CVUsecase {
	u := &cvUsecase{
		repo:      repo,
		roles:     roles,
		store:     store,
		extractor: extractor,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Submit runs the webhook pipeline. Only missing candidate fields and
// persistence failures are fatal; document, storage, extraction and
// notification problems are logged and the submission continues.
func (u *cvUsecase) Submit(ctx context.Context, body any, upload *domain.Upload) (*domain.CVRecord, error) {
	now := u.now()

	fields, err := payload.ExtractCandidateFields(body, now)
	if err != nil {
		return nil, err
	}

	record := &domain.CVRecord{
		Timestamp:   fields.Timestamp,
		FullName:    fields.FullName,
		Email:       fields.Email,
		JobTitle:    fields.JobTitle,
		PhoneNumber: fields.PhoneNumber,
		File:        domain.NoFileInfo(),
	}
	log := logger.Log.With("email", security.MaskEmail(fields.Email), "job_title", fields.JobTitle)

	doc, err := payload.ExtractDocument(body, upload, now)
	if err != nil {
		log.Warn("Document processing failed, continuing without file", "error", err)
		doc = nil
	}
	if doc != nil && !u.scanClean(ctx, log, doc) {
		doc = nil
	}

	var text string
	if doc != nil {
		record.File = domain.FileInfo{
			FileName:      doc.FileName,
			FileExtension: doc.FileExtension,
			MimeType:      doc.MimeType,
			FileSize:      doc.FileSize,
		}
		stored, extracted := u.processDocument(ctx, log, doc)
		if stored != nil {
			record.File.StorageKey = &stored.Key
			record.File.FileURL = &stored.URL
		}
		text = extracted
	} else {
		log.Info("Submission has no document")
	}

	if ev, ok := u.roles.ForJobTitle(fields.JobTitle); ok {
		decision := ev.Evaluate(text)
		record.Evaluation = &decision
		log.Info("CV evaluated", "role", decision.RoleID, "score", decision.Score, "rank", decision.Rank, "decision", decision.Decision)
	} else {
		log.Warn("No evaluator for job title, storing unevaluated")
	}

	if err := u.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("save cv: %w", err)
	}

	total, err := u.repo.Count(ctx)
	if err != nil {
		log.Warn("Failed to count CVs", "error", err)
	}
	if u.notifier != nil {
		event := domain.NewCVEvent{Success: true, Data: *record, TotalCount: total}
		if err := u.notifier.Publish(ctx, event); err != nil {
			log.Warn("Failed to publish new CV event", "cv_id", record.ID, "error", err)
		}
	}
	return record, nil
}

// scanClean reports whether doc may be processed. Scanner errors count as
// infected.
func (u *cvUsecase) scanClean(ctx context.Context, log *slog.Logger, doc *domain.Document) bool {
	if u.scanner == nil {
		return true
	}
	res := u.scanner.Scan(ctx, doc.FileName, doc.Data)
	if !res.Infected {
		return true
	}

	reason := "malware detected: " + res.ThreatName
	if res.Error != nil {
		reason = "scan failed"
		log.Error("Document scan failed, dropping file", "scanner", res.ScannerName, "error", res.Error)
	} else {
		log.Warn("Document rejected by scanner", "scanner", res.ScannerName, "threat", res.ThreatName)
	}
	if u.audit != nil {
		u.audit.LogUploadRejected(ctx, "", "", doc.FileName, reason)
	}
	return false
}

// processDocument uploads and extracts concurrently. Either side failing
// leaves its result empty.
func (u *cvUsecase) processDocument(ctx context.Context, log *slog.Logger, doc *domain.Document) (*domain.StoredObject, string) {
	var (
		stored *domain.StoredObject
		text   string
		g      errgroup.Group
	)

	if u.store != nil {
		g.Go(func() error {
			obj, err := u.store.Upload(ctx, doc)
			if err != nil {
				log.Warn("Document upload failed", "file", doc.FileName, "error", err)
				return nil
			}
			stored = obj
			return nil
		})
	}

	if u.extractor != nil {
		g.Go(func() error {
			if !security.IsPDF(doc.Data) {
				log.Warn("Document is not a PDF, skipping text extraction", "mime_type", doc.MimeType)
				return nil
			}
			out, err := u.extractor.ExtractText(ctx, doc.Data)
			if err != nil {
				log.Warn("Text extraction failed", "file", doc.FileName, "error", err)
				return nil
			}
			text = out
			return nil
		})
	}

	_ = g.Wait()
	return stored, text
}

func normalizeFilter(f domain.CVFilter) (domain.CVFilter, error) {
	if f.Segment == "" {
		f.Segment = domain.SegmentAll
	}
	if !validSegment(f.Segment) {
		return f, fmt.Errorf("%w: unknown segment %q", domain.ErrValidation, f.Segment)
	}
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit < 1:
		f.Limit = defaultPageLimit
	case f.Limit > maxPageLimit:
		f.Limit = maxPageLimit
	}
	if !sortFields[f.SortBy] {
		f.SortBy = "createdAt"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	return f, nil
}

func validSegment(s domain.Segment) bool {
	for _, v := range domain.ValidSegments {
		if v == s {
			return true
		}
	}
	return false
}

func (u *cvUsecase) List(ctx context.Context, filter domain.CVFilter) (*domain.CVPage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	records, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.CVRecord{}
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	return &domain.CVPage{
		Data: records,
		Pagination: domain.Pagination{
			Total:       total,
			Page:        filter.Page,
			Limit:       filter.Limit,
			TotalPages:  totalPages,
			HasNextPage: filter.Page < totalPages,
			HasPrevPage: filter.Page > 1,
		},
	}, nil
}

func (u *cvUsecase) Get(ctx context.Context, id string) (*domain.CVRecord, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *cvUsecase) UpdateStarred(ctx context.Context, id string, starred bool) (*domain.CVRecord, error) {
	return u.repo.UpdateStarred(ctx, id, starred)
}

// Delete removes the record, then its stored document. A storage failure is
// only logged.
func (u *cvUsecase) Delete(ctx context.Context, id string) error {
	record, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := u.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	u.deleteStored(ctx, record)
	return nil
}

func (u *cvUsecase) deleteStored(ctx context.Context, record *domain.CVRecord) {
	if u.store == nil || record.File.StorageKey == nil {
		return
	}
	if err := u.store.Delete(ctx, *record.File.StorageKey); err != nil {
		logger.Log.Warn("Failed to delete stored document", "cv_id", record.ID, "error", err)
	}
}

func (u *cvUsecase) DeleteBulk(ctx context.Context, ids []string) (int64, error) {
	cleaned := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		cleaned = append(cleaned, id)
	}
	if len(cleaned) == 0 {
		return 0, &domain.ValidationError{Fields: []string{"ids"}}
	}
	deleted, err := u.repo.DeleteBulk(ctx, cleaned)
	if err != nil {
		return 0, err
	}
	u.deleteStoredKeys(ctx, deleted.StorageKeys)
	return deleted.Count, nil
}

func (u *cvUsecase) DeleteRejected(ctx context.Context) (int64, error) {
	deleted, err := u.repo.DeleteRejected(ctx)
	if err != nil {
		return 0, err
	}
	u.deleteStoredKeys(ctx, deleted.StorageKeys)
	return deleted.Count, nil
}

func (u *cvUsecase) deleteStoredKeys(ctx context.Context, keys []string) {
	if u.store == nil {
		return
	}
	for _, key := range keys {
		if err := u.store.Delete(ctx, key); err != nil {
			logger.Log.Warn("Failed to delete stored document", "storage_key", key, "error", err)
		}
	}
}

func (u *cvUsecase) Analytics(ctx context.Context, segment domain.Segment) (*domain.SegmentAnalytics, error) {
	if !validSegment(segment) {
		return nil, fmt.Errorf("%w: unknown segment %q", domain.ErrValidation, segment)
	}

	now := u.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)

	out := &domain.SegmentAnalytics{Segment: segment}
	var err error
	if out.Total, err = u.repo.CountSince(ctx, segment, nil); err != nil {
		return nil, err
	}
	if out.Today, err = u.repo.CountSince(ctx, segment, &startOfDay); err != nil {
		return nil, err
	}
	if out.Last7Days, err = u.repo.CountSince(ctx, segment, &week); err != nil {
		return nil, err
	}
	if out.Last30Days, err = u.repo.CountSince(ctx, segment, &month); err != nil {
		return nil, err
	}
	byRank, avg, err := u.repo.RankBreakdown(ctx, segment)
	if err != nil {
		return nil, err
	}
	if byRank == nil {
		byRank = map[string]int64{}
	}
	out.ByRank = byRank
	out.AverageScore = math.Round(avg*100) / 100
	return out, nil
}
