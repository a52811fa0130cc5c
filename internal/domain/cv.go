package domain

import (
	"context"
	"time"
)

// ============================================================================
// Candidate & Document
// ============================================================================

// CandidateFields is the flat candidate record resolved from a webhook payload.
type CandidateFields struct {
	FullName    string    `json:"fullName" validate:"required"`
	Email       string    `json:"email" validate:"required"`
	JobTitle    string    `json:"jobTitle" validate:"required"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Upload is a document attached to the call as a typed multipart upload.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// DocumentSource tells where a document was found.
type DocumentSource string

const (
	DocumentSourceUpload DocumentSource = "upload"
	DocumentSourceBody   DocumentSource = "body"
)

// Document is a decoded candidate document plus its metadata.
type Document struct {
	FileName      string         `json:"fileName"`
	FileExtension string         `json:"fileExtension"`
	MimeType      string         `json:"mimeType"`
	FileSize      string         `json:"fileSize"`
	Size          int64          `json:"size"`
	Source        DocumentSource `json:"source"`
	Data          []byte         `json:"-"`
}

// FileInfo is the document metadata stored with a CV record.
type FileInfo struct {
	FileName      string  `json:"fileName"`
	FileExtension string  `json:"fileExtension"`
	MimeType      string  `json:"mimeType"`
	FileSize      string  `json:"fileSize"`
	StorageKey    *string `json:"storageKey,omitempty"`
	FileURL       *string `json:"fileUrl,omitempty"`
}

// Reduced metadata recorded when no usable document came with the submission.
const (
	NoFileName      = "no-file.pdf"
	NoFileExtension = "pdf"
	NoFileSize      = "0 kB"
	MimeTypePDF     = "application/pdf"
)

// NoFileInfo returns the placeholder metadata for a submission without a document.
func NoFileInfo() FileInfo {
	return FileInfo{
		FileName:      NoFileName,
		FileExtension: NoFileExtension,
		MimeType:      MimeTypePDF,
		FileSize:      NoFileSize,
	}
}

// ============================================================================
// Evaluation output
// ============================================================================

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Rank codes shared by every role.
const (
	RankReject      = "REJECT"
	RankRejectEmpty = "REJECT_EMPTY"
)

// ExperienceEstimate is the years of experience inferred from resume text.
type ExperienceEstimate struct {
	Years *int   `json:"yearsOfExperience"`
	Level string `json:"experienceLevel"`
	Bonus int    `json:"experienceBonus"`
}

// DecisionRecord is the outcome of evaluating one resume against one role.
type DecisionRecord struct {
	RoleID                    string              `json:"roleId"`
	Score                     int                 `json:"score"`
	Decision                  Decision            `json:"decision"`
	Rank                      string              `json:"rank"`
	PositiveGroupsHit         int                 `json:"positiveGroupsHit"`
	MinPositiveGroupsRequired int                 `json:"minPositiveGroupsRequired"`
	MatchedGroups             []string            `json:"matchedGroups"`
	MatchedKeywords           map[string][]string `json:"matchedKeywords"`
	FamilyMatches             map[string]int      `json:"familyMatches,omitempty"`
	Experience                *ExperienceEstimate `json:"experience,omitempty"`
	Reason                    string              `json:"reason"`
}

// Accepted reports whether the record carries an accept decision.
func (d DecisionRecord) Accepted() bool {
	return d.Decision == DecisionAccept
}

// ============================================================================
// Stored CV record
// ============================================================================

// CVRecord is a candidate submission together with its document metadata and
// evaluation. ID and CreatedAt are assigned by the repository.
type CVRecord struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	JobTitle    string          `json:"jobTitle"`
	PhoneNumber string          `json:"phoneNumber,omitempty"`
	File        FileInfo        `json:"file"`
	Evaluation  *DecisionRecord `json:"evaluation,omitempty"`
	Starred     bool            `json:"starred"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Score returns the evaluation score, or nil when the record was not evaluated.
func (r CVRecord) Score() *int {
	if r.Evaluation == nil {
		return nil
	}
	s := r.Evaluation.Score
	return &s
}

// NewCVEvent is pushed to subscribers after a submission is stored.
type NewCVEvent struct {
	Success    bool     `json:"success"`
	Data       CVRecord `json:"data"`
	TotalCount int64    `json:"totalCount"`
}

// EventNewCVUploaded is the event name used on the push channel.
const EventNewCVUploaded = "newCVUploaded"

// ============================================================================
// Listing & Analytics
// ============================================================================

// Segment selects a subset of stored CVs.
type Segment string

const (
	SegmentAll      Segment = "all"
	SegmentAccepted Segment = "accepted"
	SegmentRejected Segment = "rejected"
	SegmentStarred  Segment = "starred"
	SegmentShopify  Segment = "shopify"
	SegmentGCMS     Segment = "gcms"
)

// ValidSegments lists the segments accepted by listing and analytics endpoints.
var ValidSegments = []Segment{SegmentAll, SegmentAccepted, SegmentRejected, SegmentStarred, SegmentShopify, SegmentGCMS}

// CVFilter holds listing options.
type CVFilter struct {
	Segment   Segment
	Search    string
	MinScore  *int
	SortBy    string // createdAt, score, fullName, timestamp
	SortOrder string // asc, desc
	Page      int
	Limit     int
}

// Pagination describes a page of results.
type Pagination struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// CVPage is a paginated listing result.
type CVPage struct {
	Data       []CVRecord `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// SegmentAnalytics summarises one segment.
type SegmentAnalytics struct {
	Segment      Segment          `json:"segment"`
	Total        int64            `json:"total"`
	Today        int64            `json:"today"`
	Last7Days    int64            `json:"last7Days"`
	Last30Days   int64            `json:"last30Days"`
	AverageScore float64          `json:"averageScore"`
	ByRank       map[string]int64 `json:"byRank"`
}

// CVExportRequest configures an export of stored CVs.
type CVExportRequest struct {
	Filter CVFilter
	Format string // xlsx or csv
}

// ============================================================================
// Collaborators
// ============================================================================

// DeletedCVs reports a multi-row delete. StorageKeys holds the document keys
// of the removed rows that had one.
type DeletedCVs struct {
	Count       int64
	StorageKeys []string
}

// CVRepository persists CV records.
type CVRepository interface {
	Create(ctx context.Context, record *CVRecord) error
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*CVRecord, error)
	List(ctx context.Context, filter CVFilter) ([]CVRecord, int64, error)
	UpdateStarred(ctx context.Context, id string, starred bool) (*CVRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteBulk(ctx context.Context, ids []string) (*DeletedCVs, error)
	DeleteRejected(ctx context.Context) (*DeletedCVs, error)
	CountSince(ctx context.Context, segment Segment, since *time.Time) (int64, error)
	RankBreakdown(ctx context.Context, segment Segment) (map[string]int64, float64, error)
}

// DocumentStore keeps candidate documents in object storage.
type DocumentStore interface {
	Upload(ctx context.Context, doc *Document) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject locates an uploaded document.
type StoredObject struct {
	Key string
	URL string
}

// TextExtractor turns a binary document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Notifier fans out new-submission events.
type Notifier interface {
	Publish(ctx context.Context, event NewCVEvent) error
}

// CVUsecase is the application surface for CV submissions and management.
type CVUsecase interface {
	Submit(ctx context.Context, payload any, upload *Upload) (*CVRecord, error)
	List(ctx context.Context, filter CVFilter) (*CVPage, error)
	Get(ctx context.Context, id string) (*CVRecord, error)
	UpdateStarred(ctx context.Context, id string, starred bool) (*CVRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteBulk(ctx context.Context, ids []string) (int64, error)
	DeleteRejected(ctx context.Context) (int64, error)
	Analytics(ctx context.Context, segment Segment) (*SegmentAnalytics, error)
	Export(ctx context.Context, req CVExportRequest) ([]byte, string, error)
}
