package usecase_test

import (
	"context"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/security/antivirus"

	"github.com/stretchr/testify/mock"
)

type MockCVRepo struct {
	mock.Mock
}

func (m *MockCVRepo) Create(ctx context.Context, record *domain.CVRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockCVRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCVRepo) GetByID(ctx context.Context, id string) (*domain.CVRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVRecord), args.Error(1)
}

func (m *MockCVRepo) List(ctx context.Context, filter domain.CVFilter) ([]domain.CVRecord, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.CVRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockCVRepo) UpdateStarred(ctx context.Context, id string, starred bool) (*domain.CVRecord, error) {
	args := m.Called(ctx, id, starred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVRecord), args.Error(1)
}

func (m *MockCVRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCVRepo) DeleteBulk(ctx context.Context, ids []string) (*domain.DeletedCVs, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletedCVs), args.Error(1)
}

func (m *MockCVRepo) DeleteRejected(ctx context.Context) (*domain.DeletedCVs, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletedCVs), args.Error(1)
}

func (m *MockCVRepo) CountSince(ctx context.Context, segment domain.Segment, since *time.Time) (int64, error) {
	args := m.Called(ctx, segment, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCVRepo) RankBreakdown(ctx context.Context, segment domain.Segment) (map[string]int64, float64, error) {
	args := m.Called(ctx, segment)
	if args.Get(0) == nil {
		return nil, args.Get(1).(float64), args.Error(2)
	}
	return args.Get(0).(map[string]int64), args.Get(1).(float64), args.Error(2)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, doc *domain.Document) (*domain.StoredObject, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredObject), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, event domain.NewCVEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) BlockedFor(ctx context.Context, email, ip string) (time.Duration, error) {
	args := m.Called(ctx, email, ip)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockLoginGuard) RecordFailure(ctx context.Context, email, ip, userAgent, requestID, reason string) (bool, error) {
	args := m.Called(ctx, email, ip, userAgent, requestID, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginGuard) Reset(ctx context.Context, email, ip string) error {
	return m.Called(ctx, email, ip).Error(0)
}

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, filename string, data []byte) antivirus.ScanResult {
	return m.Called(ctx, filename, data).Get(0).(antivirus.ScanResult)
}

func (m *MockScanner) Name() string { return "mock" }

func (m *MockScanner) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
