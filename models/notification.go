package models

import (
	"time"
)

// NotificationKind is the closed set of notification types.
type NotificationKind string

const (
	NotifyOverdue        NotificationKind = "Overdue"
	NotifyReturnReminder NotificationKind = "Return Reminder"
)

// Notification is a message addressed to one user. Created by the
// dispatcher; the only mutation afterwards is setting ReadAt.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"column:type;type:varchar(50);not null;index" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	SentAt    time.Time        `gorm:"not null;index" json:"sent_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName sets the table name.
func (Notification) TableName() string {
	return "notifications"
}
