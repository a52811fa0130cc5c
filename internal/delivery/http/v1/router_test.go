package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"cv-screening-backend/config"
	v1 "cv-screening-backend/internal/delivery/http/v1"
	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/usecase"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCVUsecase struct {
	mock.Mock
}

func (m *MockCVUsecase) Submit(ctx context.Context, payload any, upload *domain.Upload) (*domain.CVRecord, error) {
	args := m.Called(ctx, payload, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVRecord), args.Error(1)
}

func (m *MockCVUsecase) List(ctx context.Context, filter domain.CVFilter) (*domain.CVPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVPage), args.Error(1)
}

func (m *MockCVUsecase) Get(ctx context.Context, id string) (*domain.CVRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVRecord), args.Error(1)
}

func (m *MockCVUsecase) UpdateStarred(ctx context.Context, id string, starred bool) (*domain.CVRecord, error) {
	args := m.Called(ctx, id, starred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVRecord), args.Error(1)
}

func (m *MockCVUsecase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCVUsecase) DeleteBulk(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCVUsecase) DeleteRejected(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCVUsecase) Analytics(ctx context.Context, segment domain.Segment) (*domain.SegmentAnalytics, error) {
	args := m.Called(ctx, segment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SegmentAnalytics), args.Error(1)
}

func (m *MockCVUsecase) Export(ctx context.Context, req domain.CVExportRequest) ([]byte, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthUsecase) Verify(token string) (*domain.AdminClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminClaims), args.Error(1)
}

// closedSource delivers the given events then ends the stream.
type closedSource []domain.NewCVEvent

func (s closedSource) Subscribe() (<-chan domain.NewCVEvent, func()) {
	ch := make(chan domain.NewCVEvent, len(s))
	for _, e := range s {
		ch <- e
	}
	close(ch)
	return ch, func() {}
}

const adminToken = "valid-token"

type fixture struct {
	router *gin.Engine
	cv     *MockCVUsecase
	auth   *MockAuthUsecase
}

func newFixture(t *testing.T, events v1.EventSource, dbErr error) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cv := new(MockCVUsecase)
	auth := new(MockAuthUsecase)
	auth.On("Verify", adminToken).Return(&domain.AdminClaims{Email: "admin@example.com", ExpiresAt: time.Now().Add(time.Hour)}, nil).Maybe()
	auth.On("Verify", mock.Anything).Return(nil, apperror.Unauthorized("Invalid token")).Maybe()

	cfg := &config.Config{
		GinMode:                  gin.TestMode,
		FrontendURL:              "https://dashboard.example.com",
		MaxUploadMB:              1,
		RateLimitWindowSeconds:   60,
		RateLimitGlobalThreshold: 0,
		RateLimitLoginThreshold:  0,
		RateLimitUploadThreshold: 0,
	}
	health := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": func(context.Context) error { return dbErr },
	}, nil)
	if events == nil {
		events = closedSource{}
	}

	router := v1.NewRouter(v1.RouterDeps{
		CVUC:     cv,
		AuthUC:   auth,
		HealthUC: health,
		Events:   events,
		Audit:    security.NewSecurityLogger(nil, "test"),
		Config:   cfg,
	})
	return &fixture{router: router, cv: cv, auth: auth}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Pagination *domain.Pagination `json:"pagination"`
	Error      json.RawMessage    `json:"error"`
	RequestID  string             `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func multipartBody(t *testing.T, fields map[string]string, filename, contentType string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestWebhook(t *testing.T) {
	t.Run("Should accept a JSON payload", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		body := `[{"json":{"fullName":"Jane Doe","email":"jane@example.com","jobTitle":"Shopify Developer"}}]`
		f.cv.On("Submit", mock.Anything, mock.AnythingOfType("[]interface {}"), (*domain.Upload)(nil)).
			Return(&domain.CVRecord{ID: "cv-1", FullName: "Jane Doe"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "CV received successfully", env.Message)
		assert.NotEmpty(t, env.RequestID)
		assert.Contains(t, string(env.Data), `"id":"cv-1"`)
		f.cv.AssertExpectations(t)
	})

	t.Run("Should report missing fields as 400", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &domain.ValidationError{Fields: []string{"email"}})

		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", strings.NewReader(`{"fullName":"Jane"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields: email", decode(t, w).Message)
	})

	t.Run("Should reject malformed JSON", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", strings.NewReader(`{"fullName":`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.cv.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should refuse bodies above the upload limit", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		big := `{"pad":"` + strings.Repeat("a", 2<<20) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", strings.NewReader(big))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("Should pass a multipart PDF as the upload", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		body, ct := multipartBody(t, map[string]string{
			"payload": `{"fullName":"Jane Doe","email":"jane@example.com","jobTitle":"GCMS"}`,
		}, "jane.pdf", "application/pdf", pdfBytes)

		f.cv.On("Submit", mock.Anything,
			mock.MatchedBy(func(p any) bool {
				obj, ok := p.(map[string]any)
				return ok && obj["fullName"] == "Jane Doe"
			}),
			mock.MatchedBy(func(u *domain.Upload) bool {
				return u != nil && u.Filename == "jane.pdf" && bytes.Equal(u.Data, pdfBytes)
			}),
		).Return(&domain.CVRecord{ID: "cv-2"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", body)
		req.Header.Set("Content-Type", ct)
		w := f.do(req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		f.cv.AssertExpectations(t)
	})

	t.Run("Should read plain form fields when no payload field is sent", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		body, ct := multipartBody(t, map[string]string{"fullName": "Jane", "email": "j@example.com", "jobTitle": "GCMS"}, "", "", nil)
		f.cv.On("Submit", mock.Anything,
			map[string]any{"fullName": "Jane", "email": "j@example.com", "jobTitle": "GCMS"},
			(*domain.Upload)(nil),
		).Return(&domain.CVRecord{ID: "cv-3"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", body)
		req.Header.Set("Content-Type", ct)
		w := f.do(req)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		f.cv.AssertExpectations(t)
	})

	t.Run("Should reject a non-PDF upload", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		body, ct := multipartBody(t, map[string]string{"fullName": "Jane"}, "cv.png", "image/png",
			[]byte("\x89PNG\r\n\x1a\n0000000000000000"))

		req := httptest.NewRequest(http.MethodPost, "/v1/cv/n8n-webhook", body)
		req.Header.Set("Content-Type", ct)
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid file type", decode(t, w).Message)
		f.cv.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestManagementRoutes(t *testing.T) {
	t.Run("Should require a token", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/cvs", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject an invalid token", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		req := httptest.NewRequest(http.MethodGet, "/v1/cvs", nil)
		req.Header.Set("Authorization", "Bearer forged")
		w := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", decode(t, w).Message)
	})

	t.Run("Should accept the auth cookie", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Get", mock.Anything, "abc").Return(&domain.CVRecord{ID: "abc"}, nil)
		req := httptest.NewRequest(http.MethodGet, "/v1/cvs/abc", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: adminToken})
		w := f.do(req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should require the CSRF header on cookie-authenticated mutations", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		req := httptest.NewRequest(http.MethodDelete, "/v1/cvs/abc", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: adminToken})
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "known"})
		w := f.do(req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Missing CSRF token", decode(t, w).Message)
		f.cv.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a mismatched CSRF header", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		req := httptest.NewRequest(http.MethodDelete, "/v1/cvs/abc", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: adminToken})
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "known"})
		req.Header.Set("X-CSRF-Token", "guessed")
		w := f.do(req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Invalid CSRF token", decode(t, w).Message)
	})

	t.Run("Should accept a matching CSRF header", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Delete", mock.Anything, "abc").Return(nil)
		req := httptest.NewRequest(http.MethodDelete, "/v1/cvs/abc", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: adminToken})
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "known"})
		req.Header.Set("X-CSRF-Token", "known")
		w := f.do(req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "known", w.Header().Get("X-CSRF-Token"))
	})

	t.Run("Should issue a CSRF token on cookie-authenticated reads", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Get", mock.Anything, "abc").Return(&domain.CVRecord{ID: "abc"}, nil)
		req := httptest.NewRequest(http.MethodGet, "/v1/cvs/abc", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: adminToken})
		w := f.do(req)

		token := w.Header().Get("X-CSRF-Token")
		assert.Len(t, token, 64)
		var issued *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == "csrf_token" {
				issued = c
			}
		}
		require.NotNil(t, issued)
		assert.Equal(t, token, issued.Value)
		assert.False(t, issued.HttpOnly)
	})

	t.Run("Should list a segment with query options", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		minScore := 60
		f.cv.On("List", mock.Anything, domain.CVFilter{
			Segment: domain.SegmentAccepted, Search: "jane", MinScore: &minScore,
			SortBy: "score", SortOrder: "asc", Page: 2, Limit: 5,
		}).Return(&domain.CVPage{
			Data:       []domain.CVRecord{{ID: "a"}},
			Pagination: domain.Pagination{Total: 6, Page: 2, Limit: 5, TotalPages: 2, HasPrevPage: true},
		}, nil)

		w := f.do(authed(httptest.NewRequest(http.MethodGet,
			"/v1/cvs/accepted?search=jane&minScore=60&sortBy=score&sortOrder=ASC&page=2&limit=5", nil)))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env := decode(t, w)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, int64(6), env.Pagination.Total)
		assert.True(t, env.Pagination.HasPrevPage)
		f.cv.AssertExpectations(t)
	})

	t.Run("Should reject a non-numeric page", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		w := f.do(authed(httptest.NewRequest(http.MethodGet, "/v1/cvs?page=two", nil)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should map a missing CV to 404", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
		w := f.do(authed(httptest.NewRequest(http.MethodGet, "/v1/cvs/missing", nil)))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "CV not found", decode(t, w).Message)
	})

	t.Run("Should require a boolean starred flag", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		req := authed(httptest.NewRequest(http.MethodPatch, "/v1/cvs/abc/starred", strings.NewReader(`{"starred":"yes"}`)))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		f.cv.On("UpdateStarred", mock.Anything, "abc", false).Return(&domain.CVRecord{ID: "abc"}, nil)
		req = authed(httptest.NewRequest(http.MethodPatch, "/v1/cvs/abc/starred", strings.NewReader(`{"starred":false}`)))
		req.Header.Set("Content-Type", "application/json")
		w = f.do(req)
		assert.Equal(t, http.StatusOK, w.Code)
		f.cv.AssertExpectations(t)
	})

	t.Run("Should bulk delete and report the count", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("DeleteBulk", mock.Anything, []string{"a", "b"}).Return(int64(2), nil)
		req := authed(httptest.NewRequest(http.MethodPost, "/v1/cvs/bulk-delete", strings.NewReader(`{"ids":["a","b"]}`)))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"deletedCount":2}`, string(decode(t, w).Data))
	})

	t.Run("Should route DELETE /cvs/rejected to the rejected purge", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("DeleteRejected", mock.Anything).Return(int64(4), nil)
		w := f.do(authed(httptest.NewRequest(http.MethodDelete, "/v1/cvs/rejected", nil)))
		assert.Equal(t, http.StatusOK, w.Code)
		f.cv.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should return segment analytics", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Analytics", mock.Anything, domain.SegmentGCMS).
			Return(&domain.SegmentAnalytics{Segment: domain.SegmentGCMS, Total: 3}, nil)
		w := f.do(authed(httptest.NewRequest(http.MethodGet, "/v1/cvs/analytics/gcms", nil)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), `"total":3`)
	})

	t.Run("Should stream an export as an attachment", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("Export", mock.Anything, mock.MatchedBy(func(r domain.CVExportRequest) bool {
			return r.Format == "csv" && r.Filter.Segment == domain.SegmentStarred
		})).Return([]byte("SUBMITTED AT\n"), "cvs_starred.csv", nil)

		w := f.do(authed(httptest.NewRequest(http.MethodGet, "/v1/cvs/export?segment=starred&format=csv", nil)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="cvs_starred.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "SUBMITTED AT\n", w.Body.String())
	})

	t.Run("Should hide internal errors", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.cv.On("DeleteRejected", mock.Anything).Return(int64(0), errors.New("pq: connection refused"))
		w := f.do(authed(httptest.NewRequest(http.MethodDelete, "/v1/cvs/rejected", nil)))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestAuthRoutes(t *testing.T) {
	t.Run("Should set the auth cookie on login", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		expires := time.Now().Add(time.Hour)
		f.auth.On("Login", mock.Anything, mock.MatchedBy(func(r domain.LoginRequest) bool {
			return r.Email == "admin@example.com" && r.Password == "pw" && r.IP != ""
		})).Return(&domain.AuthResult{Token: "tok", Email: "admin@example.com", ExpiresAt: expires}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "auth_token", cookies[0].Name)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("Should validate the login body", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "Validation failed", env.Message)
		assert.Contains(t, string(env.Error), "Password: Required")
		f.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("Should pass login failures through", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.auth.On("Login", mock.Anything, mock.Anything).Return(nil, apperror.Unauthorized("Invalid credentials"))
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"bad"}`))
		req.Header.Set("Content-Type", "application/json")
		w := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decode(t, w).Message)
	})

	t.Run("Should clear the cookie on logout", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		w := f.do(authed(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)))

		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
		assert.True(t, cookies[0].MaxAge < 0)
	})

	t.Run("Should verify the session", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		w := f.do(authed(httptest.NewRequest(http.MethodGet, "/v1/auth/verify", nil)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), "admin@example.com")
	})
}

func TestHealth(t *testing.T) {
	t.Run("Should report ok", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), `"status":"ok"`)
	})

	t.Run("Should report 503 when the database is down", func(t *testing.T) {
		f := newFixture(t, nil, errors.New("timeout"))
		w := f.do(httptest.NewRequest(http.MethodGet, "/v1/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, string(decode(t, w).Data), `"database":"down"`)
	})
}

func TestStream(t *testing.T) {
	f := newFixture(t, closedSource{{Success: true, Data: domain.CVRecord{ID: "cv-9"}, TotalCount: 9}}, nil)

	w := f.do(authed(httptest.NewRequest(http.MethodGet, "/v1/cvs/stream", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, "event: newCVUploaded\n")
	assert.Contains(t, body, `"totalCount":9`)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/cvs", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	w := f.do(req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/cvs", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = f.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
