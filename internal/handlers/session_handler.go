package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tabsync/internal/middleware"
	"tabsync/internal/services"
)

type SessionHandler struct {
	svc *services.SessionService
}

func NewSessionHandler(svc *services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionBody struct {
	services.CreateSessionInput
	InstanceID string `json:"instanceId,omitempty"`
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var body createSessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	session, err := h.svc.CreateSession(userID, strings.TrimSpace(body.InstanceID), body.CreateSessionInput)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	session, err := h.svc.GetSession(userID, c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sessions, err := h.svc.ListSessions(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (h *SessionHandler) UpdateSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var body services.UpdateSessionInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	session, err := h.svc.UpdateSession(userID, c.Param("sessionId"), body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.svc.DeleteSession(userID, c.Param("sessionId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type batchCreateBody struct {
	InstanceID string                        `json:"instanceId,omitempty"`
	Sessions   []services.CreateSessionInput `json:"sessions"`
}

func (h *SessionHandler) BatchCreateSessions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	var body batchCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if len(body.Sessions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessions are required"})
		return
	}
	result := h.svc.BatchCreateSessions(userID, strings.TrimSpace(body.InstanceID), body.Sessions)
	c.JSON(http.StatusOK, result)
}
