package models

import (
	"time"
)

// BorrowRecord is the immutable archival row written once per completed
// loan. BookTitle is denormalized at return time because the live Book
// row may change or disappear afterwards; CopyID is a plain reference
// for the same reason, so archive rows survive copy and book deletion.
// Rows are never updated.
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CopyID     uint       `gorm:"not null;index" json:"copy_id"`
	StudentID  string     `gorm:"type:varchar(36);not null;index" json:"student_id"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	ReturnedAt time.Time  `gorm:"not null" json:"returned_at"`
	Duration   int        `gorm:"not null" json:"duration"` // whole days, floor
	BookTitle  string     `gorm:"type:varchar(255);not null" json:"book_name"`
	CreatedAt  time.Time  `json:"created_at"`

	Student *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName sets the table name.
func (BorrowRecord) TableName() string {
	return "borrow_history"
}

// BorrowDuration computes a loan's length in whole days, truncating any
// partial day. A return within the first 24 hours yields 0.
func BorrowDuration(borrowedAt, returnedAt time.Time) int {
	if returnedAt.Before(borrowedAt) {
		return 0
	}
	return int(returnedAt.Sub(borrowedAt).Hours() / 24)
}
