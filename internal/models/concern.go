package models

import "time"

// Concern is a user-filed support ticket. Title, message, category and
// owner are fixed at creation; only admins move status and attach a
// response. AdminResponse stores the client-decorated string verbatim.
type Concern struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Category      string    `gorm:"size:32;not null;index" json:"category"`
	Status        string    `gorm:"size:32;not null;index;default:pending" json:"status"`
	AdminResponse string    `gorm:"type:text" json:"admin_response"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// OwnerName is joined from users on list queries; not a column.
	OwnerName string `gorm:"->;-:migration" json:"owner_name,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Concern) TableName() string { return "concerns" }
