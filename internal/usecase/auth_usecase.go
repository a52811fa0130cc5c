package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/logger"
	"cv-screening-backend/pkg/security"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "cv-screening-backend"

// AuthConfig holds the single admin account and token settings.
type AuthConfig struct {
	Email        string
	Password     string
	PasswordHash string // bcrypt, wins over Password
	JWTSecret    string
	TokenTTL     time.Duration
}

func (c AuthConfig) configured() bool {
	return c.Email != "" && (c.Password != "" || c.PasswordHash != "") && c.JWTSecret != ""
}

// LoginGuard enforces lockout after repeated failures.
type LoginGuard interface {
	BlockedFor(ctx context.Context, email, ip string) (time.Duration, error)
	RecordFailure(ctx context.Context, email, ip, userAgent, requestID, reason string) (bool, error)
	Reset(ctx context.Context, email, ip string) error
}

type authUsecase struct {
	cfg   AuthConfig
	guard LoginGuard
	audit *security.SecurityLogger
	now   func() time.Time
}

func NewAuthUsecase(cfg AuthConfig, guard LoginGuard, audit *security.SecurityLogger) domain.AuthUsecase {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if audit == nil {
		audit = security.DefaultLogger()
	}
	return &authUsecase{cfg: cfg, guard: guard, audit: audit, now: time.Now}
}

var errTooManyAttempts = apperror.New(http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil)

func (u *authUsecase) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	if !u.cfg.configured() {
		return nil, apperror.New(http.StatusInternalServerError, "Admin credentials not configured", nil)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if u.guard != nil {
		blocked, err := u.guard.BlockedFor(ctx, email, req.IP)
		if err != nil {
			logger.Log.Warn("Login guard unavailable", "error", err)
		} else if blocked > 0 {
			u.audit.LogLoginBlocked(ctx, email, req.IP, req.UserAgent, req.RequestID, blocked)
			return nil, errTooManyAttempts
		}
	}

	if !u.credentialsMatch(email, req.Password) {
		if u.guard != nil {
			nowBlocked, err := u.guard.RecordFailure(ctx, email, req.IP, req.UserAgent, req.RequestID, "invalid_credentials")
			if err != nil {
				logger.Log.Warn("Failed to record login failure", "error", err)
			}
			if nowBlocked {
				return nil, errTooManyAttempts
			}
		} else {
			u.audit.LogLoginFailed(ctx, email, req.IP, req.UserAgent, req.RequestID, "invalid_credentials")
		}
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if u.guard != nil {
		if err := u.guard.Reset(ctx, email, req.IP); err != nil {
			logger.Log.Warn("Failed to reset login attempts", "error", err)
		}
	}

	issued := u.now()
	expires := issued.Add(u.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   u.cfg.Email,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sign token: %w", err))
	}

	u.audit.LogLoginSuccess(ctx, email, req.IP, req.UserAgent, req.RequestID)
	return &domain.AuthResult{Token: signed, Email: u.cfg.Email, ExpiresAt: expires.UTC()}, nil
}

func (u *authUsecase) credentialsMatch(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(u.cfg.Email))) == 1

	var passwordOK bool
	if u.cfg.PasswordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(u.cfg.PasswordHash), []byte(password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(u.cfg.Password)) == 1
	}
	return emailOK && passwordOK
}

func (u *authUsecase) Verify(tokenString string) (*domain.AdminClaims, error) {
	if u.cfg.JWTSecret == "" {
		return nil, apperror.Unauthorized("Invalid token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(u.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.New(http.StatusUnauthorized, "Token expired", err)
		}
		return nil, apperror.New(http.StatusUnauthorized, "Invalid token", err)
	}
	if !strings.EqualFold(claims.Subject, u.cfg.Email) {
		return nil, apperror.Unauthorized("Invalid token")
	}

	out := &domain.AdminClaims{Email: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
