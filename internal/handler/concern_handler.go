package handler

import (
	"net/http"
	"strconv"
	"strings"

	"scholarly/internal/domain"
	"scholarly/internal/middleware"
	"scholarly/internal/repository"
	"scholarly/internal/service"

	"github.com/gin-gonic/gin"
)

type ConcernHandler struct {
	svc *service.ConcernService
}

func NewConcernHandler(svc *service.ConcernService) *ConcernHandler {
	return &ConcernHandler{svc: svc}
}

func listOptions(c *gin.Context) repository.ListOptions {
	return repository.ListOptions{
		Status:    c.Query("status"),
		Search:    c.Query("q"),
		SortBy:    c.DefaultQuery("sort", "date"),
		Ascending: c.Query("order") == "asc",
	}
}

// List returns the caller's own concerns.
func (h *ConcernHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	list, err := h.svc.ListForOwner(sess, listOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concerns": list, "total": len(list)})
}

// AdminList returns every concern; the admin gate runs in middleware but
// the service re-checks the role so the rule holds without the router.
func (h *ConcernHandler) AdminList(c *gin.Context) {
	sess := middleware.GetSession(c)
	list, err := h.svc.ListAll(sess, listOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concerns": list, "total": len(list)})
}

func (h *ConcernHandler) Create(c *gin.Context) {
	var req struct {
		Title    string `json:"title"`
		Message  string `json:"message"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess := middleware.GetSession(c)
	concern, err := h.svc.Create(sess, req.Title, req.Message, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, concern)
}

// Update serves both status-only updates and response+status updates.
// A non-empty admin_response routes through Respond, which resolves the
// concern and notifies the owner; otherwise only the status moves.
func (h *ConcernHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status        string  `json:"status"`
		AdminResponse *string `json:"admin_response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess := middleware.GetSession(c)

	hasResponse := req.AdminResponse != nil && strings.TrimSpace(*req.AdminResponse) != ""
	if hasResponse && (req.Status == "" || req.Status == domain.StatusResolved) {
		concern, err := h.svc.Respond(sess, uint(id), *req.AdminResponse)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, concern)
		return
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status: must not be empty"})
		return
	}
	concern, err := h.svc.SetStatus(sess, uint(id), req.Status, req.AdminResponse)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, concern)
}

// MarkRead flips the owner-scoped read flag once an admin response
// exists. Repeated calls are harmless.
func (h *ConcernHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	sess := middleware.GetSession(c)
	if err := h.svc.MarkRead(sess, uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
