package domain

const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

const (
	CategoryScholarship = "scholarship"
	CategoryApplication = "application"
	CategoryTechnical   = "technical"
	CategoryOther       = "other"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// CategoryLabels maps category values to display labels. Free-text search
// matches against the label so "Technical" finds technical concerns.
var CategoryLabels = map[string]string{
	CategoryScholarship: "Scholarship",
	CategoryApplication: "Application",
	CategoryTechnical:   "Technical",
	CategoryOther:       "Other",
}

func ValidCategory(c string) bool {
	_, ok := CategoryLabels[c]
	return ok
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationError:
		return true
	}
	return false
}
