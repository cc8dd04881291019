package models

import (
	"time"
)

// CopyStatus is the lifecycle state of one physical copy.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "Available"
	CopyBorrowed  CopyStatus = "Borrowed"
	CopyReserved  CopyStatus = "Reserved"
)

// BookCopy is one physical, independently-lendable unit of a Book.
//
// Invariant: Status == CopyBorrowed exactly when StudentID and
// BorrowedAt are set; Status == CopyAvailable means StudentID,
// BorrowedAt and DueDate are all cleared.
type BookCopy struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"not null;index" json:"book_id"`
	StudentID  *string    `gorm:"type:varchar(36);index" json:"student_id,omitempty"`
	Status     CopyStatus `gorm:"type:varchar(20);not null;default:'Available';index" json:"status"`
	BorrowedAt *time.Time `json:"borrowed_at,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Book    *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Student *User `gorm:"foreignKey:StudentID;constraint:OnDelete:SET NULL" json:"student,omitempty"`
}

// TableName sets the table name.
func (BookCopy) TableName() string {
	return "book_copies"
}

// Overdue reports whether the copy is borrowed and past its due date.
func (c *BookCopy) Overdue(now time.Time) bool {
	return c.Status == CopyBorrowed && c.DueDate != nil && c.DueDate.Before(now)
}
