package service

import (
	"fmt"

	"scholarly/internal/domain"
	"scholarly/internal/models"
	"scholarly/internal/repository"

	"github.com/rs/zerolog"
)

type NotificationService struct {
	repo *repository.NotificationRepository
	log  zerolog.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// Enqueue stores a notification addressed to a user. Unknown types are
// coerced to info rather than rejected; delivery is fire-and-forget from
// the caller's perspective.
func (s *NotificationService) Enqueue(userID uint, title, message, notifType string, referenceID uint) error {
	if !domain.ValidNotificationType(notifType) {
		notifType = domain.NotificationInfo
	}
	return s.repo.Create(&models.Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        notifType,
		ReferenceID: referenceID,
	})
}

// NotifyAdminResponse tells a concern owner that an admin replied. The
// title is interpolated literally, not Go-quoted, so quotes inside it
// pass through unescaped. Failures are logged, never surfaced: the
// response update must not be rolled back over a missing notice.
func (s *NotificationService) NotifyAdminResponse(ownerID, concernID uint, concernTitle string) {
	msg := fmt.Sprintf("An admin has responded to your concern: \"%s\"", concernTitle)
	if err := s.Enqueue(ownerID, "Admin response", msg, domain.NotificationInfo, concernID); err != nil {
		s.log.Error().Err(err).Uint("concern_id", concernID).Msg("notification enqueue failed")
	}
}
