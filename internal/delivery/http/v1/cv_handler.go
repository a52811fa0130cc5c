package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"cv-screening-backend/internal/delivery/http/response"
	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type CVHandler struct {
	cvUC           domain.CVUsecase
	audit          *security.SecurityLogger
	maxUploadBytes int64
}

// NewCVHandler mounts the public webhook on public and the management routes
// on protected.
func NewCVHandler(public, protected *gin.RouterGroup, cvUC domain.CVUsecase, audit *security.SecurityLogger, maxUploadBytes int64, webhookMW ...gin.HandlerFunc) *CVHandler {
	h := &CVHandler{cvUC: cvUC, audit: audit, maxUploadBytes: maxUploadBytes}

	public.POST("/cv/n8n-webhook", append(webhookMW, h.Webhook)...)

	cvs := protected.Group("/cvs")
	{
		cvs.GET("", h.listSegment(domain.SegmentAll))
		cvs.GET("/accepted", h.listSegment(domain.SegmentAccepted))
		cvs.GET("/rejected", h.listSegment(domain.SegmentRejected))
		cvs.GET("/starred", h.listSegment(domain.SegmentStarred))
		cvs.GET("/shopify", h.listSegment(domain.SegmentShopify))
		cvs.GET("/gcms", h.listSegment(domain.SegmentGCMS))
		cvs.GET("/analytics/:segment", h.Analytics)
		cvs.GET("/export", h.Export)
		cvs.POST("/bulk-delete", h.BulkDelete)
		cvs.DELETE("/rejected", h.DeleteRejected)
		cvs.GET("/:id", h.Get)
		cvs.PATCH("/:id/starred", h.UpdateStarred)
		cvs.DELETE("/:id", h.Delete)
	}
	return h
}

// Webhook godoc
// @Summary      Receive a CV from the automation platform
// @Description  Accepts JSON (object or array, possibly wrapped in data/json envelopes) or multipart with a PDF "file" part and either form fields or a "payload" JSON field.
// @Tags         cv
// @Accept       json,mpfd
// @Produce      json
// @Success      201  {object}  response.Response{data=domain.CVRecord}
// @Failure      400  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Router       /cv/n8n-webhook [post]
func (h *CVHandler) Webhook(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var (
		body   any
		upload *domain.Upload
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		body, upload, err = h.readMultipart(c)
	} else {
		body, err = readJSON(c.Request.Body)
	}
	if err != nil {
		c.Error(err)
		return
	}

	record, err := h.cvUC.Submit(c.Request.Context(), body, upload)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "CV received successfully", record)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func readJSON(r io.Reader) (any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		if tooLarge(err) {
			return nil, apperror.TooLarge("Payload too large")
		}
		return nil, apperror.BadRequest("Could not read request body")
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperror.BadRequest("Invalid JSON payload")
	}
	return body, nil
}

// readMultipart builds the payload from a "payload" JSON field when present,
// otherwise from the plain form fields. The "file" part becomes the upload.
func (h *CVHandler) readMultipart(c *gin.Context) (any, *domain.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if tooLarge(err) {
			return nil, nil, apperror.TooLarge("File too large")
		}
		return nil, nil, apperror.BadRequest("Invalid multipart form")
	}

	var body any
	if raw := form.Value["payload"]; len(raw) > 0 && strings.TrimSpace(raw[0]) != "" {
		if err := json.Unmarshal([]byte(raw[0]), &body); err != nil {
			return nil, nil, apperror.BadRequest("Invalid JSON in payload field")
		}
	} else {
		fields := make(map[string]any, len(form.Value))
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		body = fields
	}

	files := form.File["file"]
	if len(files) == 0 {
		return body, nil, nil
	}
	upload, err := h.readUpload(c, files[0])
	if err != nil {
		return nil, nil, err
	}
	return body, upload, nil
}

func (h *CVHandler) readUpload(c *gin.Context, fh *multipart.FileHeader) (*domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.BadRequest("Could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperror.BadRequest("Could not read uploaded file")
	}

	declared := fh.Header.Get("Content-Type")
	if result := security.ValidatePDF(fh.Filename, declared, data); !result.Valid {
		h.audit.LogUploadRejected(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), fh.Filename, result.Error)
		return nil, apperror.BadRequest("Invalid file type")
	}

	return &domain.Upload{
		Filename: fh.Filename,
		MimeType: "application/pdf",
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

// ListCVs godoc
// @Summary      List CVs of a segment
// @Tags         cvs
// @Produce      json
// @Param        search     query  string  false  "Name or email contains"
// @Param        minScore   query  int     false  "Minimum score"
// @Param        sortBy     query  string  false  "createdAt, score, fullName or timestamp"
// @Param        sortOrder  query  string  false  "asc or desc"
// @Param        page       query  int     false  "Page, from 1"
// @Param        limit      query  int     false  "Page size, max 100"
// @Success      200  {object}  response.Response{data=[]domain.CVRecord}
// @Security     BearerAuth
// @Router       /cvs [get]
func (h *CVHandler) listSegment(segment domain.Segment) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := filterFromQuery(c, segment)
		if err != nil {
			c.Error(err)
			return
		}
		page, err := h.cvUC.List(c.Request.Context(), filter)
		if err != nil {
			c.Error(err)
			return
		}
		response.Paginated(c, "CVs retrieved successfully", page)
	}
}

func filterFromQuery(c *gin.Context, segment domain.Segment) (domain.CVFilter, error) {
	filter := domain.CVFilter{
		Segment:   segment,
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sortBy"),
		SortOrder: strings.ToLower(c.Query("sortOrder")),
	}
	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		return filter, err
	}
	if raw := c.Query("minScore"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperror.BadRequest("minScore must be an integer")
		}
		filter.MinScore = &n
	}
	return filter, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.BadRequest(fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

// Get godoc
// @Summary      Get one CV
// @Tags         cvs
// @Produce      json
// @Param        id   path      string  true  "CV ID"
// @Success      200  {object}  response.Response{data=domain.CVRecord}
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /cvs/{id} [get]
func (h *CVHandler) Get(c *gin.Context) {
	record, err := h.cvUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV retrieved successfully", record)
}

type starredRequest struct {
	Starred *bool `json:"starred" binding:"required"`
}

// UpdateStarred godoc
// @Summary      Star or unstar a CV
// @Tags         cvs
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "CV ID"
// @Param        request  body  starredRequest  true  "Starred flag"
// @Success      200  {object}  response.Response{data=domain.CVRecord}
// @Failure      400  {object}  response.Response
// @Security     BearerAuth
// @Router       /cvs/{id}/starred [patch]
func (h *CVHandler) UpdateStarred(c *gin.Context) {
	var req starredRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Starred == nil {
		c.Error(apperror.BadRequest("starred must be a boolean"))
		return
	}
	record, err := h.cvUC.UpdateStarred(c.Request.Context(), c.Param("id"), *req.Starred)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV updated successfully", record)
}

// Delete godoc
// @Summary      Delete one CV
// @Tags         cvs
// @Param        id   path      string  true  "CV ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /cvs/{id} [delete]
func (h *CVHandler) Delete(c *gin.Context) {
	if err := h.cvUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV deleted successfully", nil)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDelete godoc
// @Summary      Delete several CVs
// @Tags         cvs
// @Accept       json
// @Param        request  body  bulkDeleteRequest  true  "IDs to delete"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Security     BearerAuth
// @Router       /cvs/bulk-delete [post]
func (h *CVHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("ids must be an array of strings"))
		return
	}
	deleted, err := h.cvUC.DeleteBulk(c.Request.Context(), req.IDs)
	if err != nil {
		c.Error(err)
		return
	}
	h.audit.LogBulkDelete(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), "ids", deleted)
	response.Success(c, http.StatusOK, fmt.Sprintf("%d CVs deleted successfully", deleted), gin.H{"deletedCount": deleted})
}

// DeleteRejected godoc
// @Summary      Delete every rejected CV
// @Tags         cvs
// @Success      200  {object}  response.Response
// @Security     BearerAuth
// @Router       /cvs/rejected [delete]
func (h *CVHandler) DeleteRejected(c *gin.Context) {
	deleted, err := h.cvUC.DeleteRejected(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	h.audit.LogBulkDelete(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), string(domain.SegmentRejected), deleted)
	response.Success(c, http.StatusOK, fmt.Sprintf("%d rejected CVs deleted successfully", deleted), gin.H{"deletedCount": deleted})
}

// Analytics godoc
// @Summary      Segment analytics
// @Tags         cvs
// @Produce      json
// @Param        segment  path  string  true  "all, accepted, rejected, starred, shopify or gcms"
// @Success      200  {object}  response.Response{data=domain.SegmentAnalytics}
// @Security     BearerAuth
// @Router       /cvs/analytics/{segment} [get]
func (h *CVHandler) Analytics(c *gin.Context) {
	stats, err := h.cvUC.Analytics(c.Request.Context(), domain.Segment(c.Param("segment")))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Analytics retrieved successfully", stats)
}

// Export godoc
// @Summary      Export CVs
// @Tags         cvs
// @Produce      application/octet-stream
// @Param        segment  query  string  false  "Segment, default all"
// @Param        format   query  string  false  "xlsx (default) or csv"
// @Success      200
// @Security     BearerAuth
// @Router       /cvs/export [get]
func (h *CVHandler) Export(c *gin.Context) {
	segment := domain.Segment(c.DefaultQuery("segment", string(domain.SegmentAll)))
	filter, err := filterFromQuery(c, segment)
	if err != nil {
		c.Error(err)
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))

	data, filename, err := h.cvUC.Export(c.Request.Context(), domain.CVExportRequest{Filter: filter, Format: format})
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
