package v1

import (
	"time"

	"cv-screening-backend/config"
	"cv-screening-backend/internal/delivery/http/middleware"
	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/usecase"
	"cv-screening-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CVUC     domain.CVUsecase
	AuthUC   domain.AuthUsecase
	HealthUC usecase.HealthUsecase
	Events   EventSource
	Audit    *security.SecurityLogger
	Config   *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	limits := middleware.RateLimitSettings{
		Window:          time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		GlobalThreshold: cfg.RateLimitGlobalThreshold,
		LoginThreshold:  cfg.RateLimitLoginThreshold,
		UploadThreshold: cfg.RateLimitUploadThreshold,
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.GinMode)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The webhook carries its own, looser limit so bursts from the automation
	// platform do not eat into the dashboard budget.
	public := v1.Group("")
	protected := v1.Group("")
	protected.Use(middleware.AdminAuth(deps.AuthUC, deps.Audit))
	protected.Use(middleware.CSRFMiddleware(cfg.CookieSecure))
	protected.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(limits)))
	{
		NewAuthHandler(public, protected, deps.AuthUC, deps.Audit, cfg.CookieSecure,
			middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(limits)))
		NewStreamHandler(protected, deps.Events, 0)
		NewCVHandler(public, protected, deps.CVUC, deps.Audit, cfg.MaxUploadBytes(),
			middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(limits)))
	}

	return r
}
