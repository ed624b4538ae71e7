package service

import (
	"strings"

	"scholarly/internal/domain"
	"scholarly/internal/models"
	"scholarly/internal/repository"

	"github.com/rs/zerolog"
)

// ConcernService owns the concern business rules. It is the sole writer
// of concern and notification rows; handlers and the poller only go
// through it.
type ConcernService struct {
	concerns *repository.ConcernRepository
	notifier *NotificationService
	log      zerolog.Logger
}

func NewConcernService(concerns *repository.ConcernRepository, notifier *NotificationService, log zerolog.Logger) *ConcernService {
	return &ConcernService{concerns: concerns, notifier: notifier, log: log}
}

// Create files a new concern for the session owner. New concerns start
// pending and read: there is no response yet to be unread about.
func (s *ConcernService) Create(sess domain.Session, title, message, category string) (*models.Concern, error) {
	if !sess.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return nil, domain.Validation("title", "must not be empty")
	}
	if message == "" {
		return nil, domain.Validation("message", "must not be empty")
	}
	if !domain.ValidCategory(category) {
		return nil, domain.Validation("category", "unknown category")
	}
	c := &models.Concern{
		UserID:   sess.UserID,
		Title:    title,
		Message:  message,
		Category: category,
		Status:   domain.StatusPending,
		IsRead:   true,
	}
	if err := s.concerns.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ConcernService) ListForOwner(sess domain.Session, opts repository.ListOptions) ([]models.Concern, error) {
	if !sess.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	return s.concerns.ListByOwner(sess.UserID, opts)
}

func (s *ConcernService) ListAll(sess domain.Session, opts repository.ListOptions) ([]models.Concern, error) {
	if !sess.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.concerns.ListAll(opts)
}

// SetStatus moves a concern between states. Every transition among the
// three states is permitted, including reverting a resolved concern; the
// service checks only enum membership. AdminResponse is touched only when
// the caller supplies one, so resolved-without-response stays possible.
func (s *ConcernService) SetStatus(sess domain.Session, id uint, status string, response *string) (*models.Concern, error) {
	if !sess.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidStatus(status) {
		return nil, domain.Validation("status", "must be pending, in_progress or resolved")
	}
	c, err := s.concerns.GetByID(id)
	if err != nil {
		return nil, err
	}
	c.Status = status
	if response != nil {
		c.AdminResponse = *response
		if strings.TrimSpace(*response) != "" {
			c.IsRead = false
		}
	}
	if err := s.concerns.Update(c); err != nil {
		return nil, err
	}
	return s.concerns.GetByID(id)
}

// Respond attaches an admin reply, resolves the concern and enqueues an
// info notification for the owner. The text arrives already decorated by
// the client (see pkg/richtext) and is stored verbatim. A failed enqueue
// does not fail the response.
func (s *ConcernService) Respond(sess domain.Session, id uint, text string) (*models.Concern, error) {
	if !sess.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.Validation("admin_response", "must not be empty")
	}
	c, err := s.concerns.GetByID(id)
	if err != nil {
		return nil, err
	}
	c.Status = domain.StatusResolved
	c.AdminResponse = text
	c.IsRead = false
	if err := s.concerns.Update(c); err != nil {
		return nil, err
	}
	s.notifier.NotifyAdminResponse(c.UserID, c.ID, c.Title)
	return s.concerns.GetByID(id)
}

// MarkRead records that the owner has seen the admin response. Calling it
// on a concern without a response, or twice, is a no-op; is_read never
// reverts to false here.
func (s *ConcernService) MarkRead(sess domain.Session, id uint) error {
	if !sess.Valid() {
		return domain.ErrUnauthenticated
	}
	c, err := s.concerns.GetByID(id)
	if err != nil {
		return err
	}
	if c.UserID != sess.UserID {
		return domain.ErrForbidden
	}
	if c.AdminResponse == "" || c.IsRead {
		return nil
	}
	c.IsRead = true
	return s.concerns.Update(c)
}
