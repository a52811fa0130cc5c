package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cv-screening-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// EventSource hands out subscriptions to new-submission events.
type EventSource interface {
	Subscribe() (<-chan domain.NewCVEvent, func())
}

type StreamHandler struct {
	source    EventSource
	heartbeat time.Duration
}

func NewStreamHandler(protected *gin.RouterGroup, source EventSource, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	h := &StreamHandler{source: source, heartbeat: heartbeat}
	protected.GET("/cvs/stream", h.Stream)
	return h
}

// Stream godoc
// @Summary      Live feed of new CVs
// @Description  Server-Sent Events stream. Each stored submission is sent as a "newCVUploaded" event.
// @Tags         cvs
// @Produce      text/event-stream
// @Success      200
// @Security     BearerAuth
// @Router       /cvs/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	events, unsubscribe := h.source.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if err := writeSSE(c.Writer, "connected", gin.H{"success": true}); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(c.Writer, domain.EventNewCVUploaded, event); err != nil {
				return
			}
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func writeSSE(w io.Writer, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
