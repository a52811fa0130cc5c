package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/usecase"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/security"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func authConfig() usecase.AuthConfig {
	return usecase.AuthConfig{Email: "Admin@Example.com", Password: "s3cret", JWTSecret: testSecret, TokenTTL: time.Hour}
}

func quietAudit() *security.SecurityLogger {
	return security.NewSecurityLogger(nil, "test")
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T", err)
	return appErr.Code
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Should issue a verifiable token", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(authConfig(), nil, quietAudit())

		res, err := uc.Login(ctx, domain.LoginRequest{Email: " admin@example.com ", Password: "s3cret"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "Admin@Example.com", res.Email)

		claims, err := uc.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "Admin@Example.com", claims.Email)
		assert.WithinDuration(t, res.ExpiresAt, claims.ExpiresAt, time.Second)
	})

	t.Run("Should accept a bcrypt hash", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("hashed-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		cfg := authConfig()
		cfg.Password = ""
		cfg.PasswordHash = string(hash)
		uc := usecase.NewAuthUsecase(cfg, nil, quietAudit())

		_, err = uc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "hashed-pass"})
		assert.NoError(t, err)
		_, err = uc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("Should fail with 500 when credentials are not configured", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(usecase.AuthConfig{JWTSecret: testSecret}, nil, quietAudit())
		_, err := uc.Login(ctx, domain.LoginRequest{Email: "a@b.c", Password: "x"})
		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
		assert.Equal(t, "Admin credentials not configured", err.Error())
	})

	t.Run("Should reject a wrong password and record the failure", func(t *testing.T) {
		guard := new(MockLoginGuard)
		guard.On("BlockedFor", mock.Anything, "admin@example.com", "10.0.0.1").Return(time.Duration(0), nil)
		guard.On("RecordFailure", mock.Anything, "admin@example.com", "10.0.0.1", "", "", "invalid_credentials").Return(false, nil)
		uc := usecase.NewAuthUsecase(authConfig(), guard, quietAudit())

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "nope", IP: "10.0.0.1"})
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		guard.AssertExpectations(t)
	})

	t.Run("Should refuse a blocked subject before checking credentials", func(t *testing.T) {
		guard := new(MockLoginGuard)
		guard.On("BlockedFor", mock.Anything, "admin@example.com", "").Return(5*time.Minute, nil)
		uc := usecase.NewAuthUsecase(authConfig(), guard, quietAudit())

		_, err := uc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
		assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))
		guard.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should lock out after repeated failures", func(t *testing.T) {
		tracker := security.NewInMemoryLoginTracker(security.LoginTrackerConfig{
			MaxAttempts: 3, AttemptWindow: time.Minute, BlockDuration: time.Minute,
		}, quietAudit(), nil)
		uc := usecase.NewAuthUsecase(authConfig(), tracker, quietAudit())
		bad := domain.LoginRequest{Email: "admin@example.com", Password: "nope", IP: "10.0.0.2"}

		for i := 0; i < 2; i++ {
			_, err := uc.Login(ctx, bad)
			assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		}
		_, err := uc.Login(ctx, bad)
		assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))

		_, err = uc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "s3cret", IP: "10.0.0.2"})
		assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))
	})
}

func TestVerify(t *testing.T) {
	uc := usecase.NewAuthUsecase(authConfig(), nil, quietAudit())

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    "cv-screening-backend",
			Subject:   "Admin@Example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	t.Run("Should reject an expired token", func(t *testing.T) {
		c := base()
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := uc.Verify(sign(c, jwt.SigningMethodHS256, []byte(testSecret)))
		require.Error(t, err)
		assert.Equal(t, "Token expired", err.Error())
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		_, err := uc.Verify(sign(base(), jwt.SigningMethodHS256, []byte("other")))
		assert.Equal(t, "Invalid token", err.Error())
	})

	t.Run("Should reject another subject", func(t *testing.T) {
		c := base()
		c.Subject = "intruder@example.com"
		_, err := uc.Verify(sign(c, jwt.SigningMethodHS256, []byte(testSecret)))
		assert.Equal(t, "Invalid token", err.Error())
	})

	t.Run("Should reject another algorithm", func(t *testing.T) {
		_, err := uc.Verify(sign(base(), jwt.SigningMethodHS512, []byte(testSecret)))
		assert.Error(t, err)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := uc.Verify("not.a.token")
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})
}
