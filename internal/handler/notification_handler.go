package handler

import (
	"net/http"
	"strconv"

	"scholarly/internal/middleware"
	"scholarly/internal/repository"
	"scholarly/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	repo *repository.NotificationRepository
	svc  *service.NotificationService
}

func NewNotificationHandler(repo *repository.NotificationRepository, svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{repo: repo, svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	list, err := h.repo.ListByUserID(sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// UnreadCount feeds the badge in the client tab bar.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	sess := middleware.GetSession(c)
	n, err := h.repo.CountUnread(sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	sess := middleware.GetSession(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.repo.MarkRead(uint(id), sess.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Create is the admin-only direct enqueue endpoint; fire-and-forget from
// the caller's point of view.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		Title       string `json:"title"`
		Message     string `json:"message"`
		Type        string `json:"type"`
		ReferenceID uint   `json:"reference_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Enqueue(req.UserID, req.Title, req.Message, req.Type, req.ReferenceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}
