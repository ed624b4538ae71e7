package models

import "time"

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255" json:"title"`
	Message     string    `gorm:"type:text" json:"message"`
	Type        string    `gorm:"size:20;not null" json:"type"` // info | success | error
	ReferenceID uint      `gorm:"index" json:"reference_id"`    // concern the notice points back to
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
