package v1

import (
	"net/http"
	"time"

	"cv-screening-backend/internal/delivery/http/middleware"
	"cv-screening-backend/internal/delivery/http/response"
	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/security"
	"cv-screening-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	audit        *security.SecurityLogger
	validate     *validator.Validate
	cookieSecure bool
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, audit *security.SecurityLogger, cookieSecure bool, loginMW ...gin.HandlerFunc) *AuthHandler {
	handler := &AuthHandler{
		authUC:       authUC,
		audit:        audit,
		validate:     validation.New(),
		cookieSecure: cookieSecure,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", append(loginMW, handler.Login)...)
		publicAuth.POST("/logout", handler.Logout)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/verify", handler.Verify)
	}
	return handler
}

// Login godoc
// @Summary      Admin login
// @Description  Checks the configured admin credentials and issues a JWT, also set as the auth_token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=domain.AuthResult}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid JSON payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", validation.FormatValidationErrors(err))
		return
	}

	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	req.RequestID = c.GetString(string(domain.KeyRequestID))

	result, err := h.authUC.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setAuthCookie(c, result.Token, int(time.Until(result.ExpiresAt).Seconds()))
	response.Success(c, http.StatusOK, "Login successful", result)
}

// Logout godoc
// @Summary      Admin logout
// @Description  Clears the auth_token cookie. Tokens are stateless and stay valid until they expire.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c); token != "" {
		if claims, err := h.authUC.Verify(token); err == nil {
			h.audit.LogLogout(c.Request.Context(), claims.Email, c.ClientIP(), c.GetString(string(domain.KeyRequestID)))
		}
	}
	h.setAuthCookie(c, "", -1)
	response.Success(c, http.StatusOK, "Logout successful", nil)
}

// Verify godoc
// @Summary      Verify the admin session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.AdminClaims}
// @Failure      401  {object}  response.Response
// @Security     BearerAuth
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	expiresAt, _ := c.Get(string(domain.KeyTokenExp))
	exp, _ := expiresAt.(time.Time)
	response.Success(c, http.StatusOK, "Token valid", domain.AdminClaims{
		Email:     c.GetString(string(domain.KeyAdminEmail)),
		ExpiresAt: exp,
	})
}

// setAuthCookie writes the session cookie. Cross-site dashboards need
// SameSite=None, which browsers only accept on secure cookies.
func (h *AuthHandler) setAuthCookie(c *gin.Context, value string, maxAge int) {
	if h.cookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.AuthCookieName, value, maxAge, "/", "", h.cookieSecure, true)
}
