package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"sinara-backend/internal/notification/domain"
	"sinara-backend/internal/notification/repository"
	"sinara-backend/internal/notification/usecase"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the in-app inbox surface plus the admin send
// and broadcast endpoints.
type NotificationHandler struct {
	repo        repository.NotificationRepository
	dispatcher  usecase.Sender
	broadcaster *usecase.BroadcastCoordinator
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(repo repository.NotificationRepository, dispatcher usecase.Sender, broadcaster *usecase.BroadcastCoordinator) *NotificationHandler {
	return &NotificationHandler{
		repo:        repo,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
	}
}

// List returns the caller's active notifications, newest first
// GET /api/notifications?limit=50&unread_only=true
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	unreadOnly := c.Query("unread_only") == "true"

	notifications, err := h.repo.ListForUser(userID, repository.ListOptions{
		Limit:      limit,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// UnreadCount returns the caller's number of unread active notifications
// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.repo.CountUnread(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkReadRequest carries the ids to mark read
type MarkReadRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// MarkRead marks the given notifications read, scoped to the caller
// PATCH /api/notifications/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.repo.MarkRead(req.IDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// MarkAllRead marks all of the caller's unread notifications read
// PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.repo.MarkAllRead(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// Delete removes one of the caller's notifications
// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.repo.Delete(id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// DeleteAll clears the caller's inbox
// DELETE /api/notifications
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.repo.DeleteAll(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

// SendRequest targets a single user
type SendRequest struct {
	UserID       string                   `json:"user_id" binding:"required"`
	Notification domain.NotificationInput `json:"notification" binding:"required"`
}

// Send delivers a notification to one user (admin only)
// POST /api/notifications/send
func (h *NotificationHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.dispatcher.SendToUser(c.Request.Context(), req.UserID, req.Notification)
	if err != nil {
		if errors.Is(err, usecase.ErrProviderUnavailable) {
			c.JSON(http.StatusServiceUnavailable, result)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// BroadcastRequest targets a role set; empty roles default to {admin, pic}
type BroadcastRequest struct {
	Roles        []string                 `json:"roles"`
	Notification domain.NotificationInput `json:"notification" binding:"required"`
}

// Broadcast delivers a notification to every active user in a role set
// (admin only)
// POST /api/notifications/broadcast
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.broadcaster.BroadcastToRoles(c.Request.Context(), req.Roles, req.Notification)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
