package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tabsync/internal/middleware"
	"tabsync/internal/models"
	"tabsync/internal/repos"
	"tabsync/internal/services"
)

type SyncHandler struct {
	svc          *services.SyncService
	maxBatchSize int
}

func NewSyncHandler(svc *services.SyncService, maxBatchSize int) *SyncHandler {
	return &SyncHandler{svc: svc, maxBatchSize: maxBatchSize}
}

type eventBatchBody struct {
	Events       []models.Event              `json:"events"`
	Restorations []services.RestorationInput `json:"restorations,omitempty"`
}

func (h *SyncHandler) GetMarker(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	instanceID, ok := instanceIDParam(c)
	if !ok {
		return
	}
	status, err := h.svc.GetMarker(userID, instanceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SyncHandler) ProcessEvents(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	instanceID, ok := instanceIDParam(c)
	if !ok {
		return
	}
	var body eventBatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if len(body.Events) > h.maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}
	result, err := h.svc.ProcessEvents(userID, instanceID, body.Events, body.Restorations)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) ListEvents(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	instanceID, ok := instanceIDParam(c)
	if !ok {
		return
	}
	filter := repos.EventFilter{
		Since:     parseInt64Default(c.Query("since"), 0),
		EventType: strings.TrimSpace(c.Query("type")),
		Limit:     int(parseInt64Default(c.Query("limit"), 100)),
	}
	events, err := h.svc.QueryEvents(userID, instanceID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (h *SyncHandler) GetStats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	instanceID, ok := instanceIDParam(c)
	if !ok {
		return
	}
	stats, err := h.svc.GetSyncStats(userID, instanceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// instanceIDParam validates the :instanceId path segment as a UUID before it
// reaches the service layer. Writes the 400 itself when malformed.
func instanceIDParam(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.Param("instanceId"))
	if _, err := uuid.Parse(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "instance id must be a uuid"})
		return "", false
	}
	return raw, true
}

func parseInt64Default(v string, fallback int64) int64 {
	if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return i
	}
	return fallback
}

func writeError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.Is(err, repos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
