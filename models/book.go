package models

import (
	"time"
)

// BookStatus mirrors the catalog-level availability flag. It is
// informational only; per-copy CopyStatus is the authoritative state.
type BookStatus string

const (
	BookAvailable BookStatus = "Available"
	BookBorrowed  BookStatus = "Borrowed"
	BookReserved  BookStatus = "Reserved"
)

// Book is one catalog entry. Physical units live in BookCopy rows;
// Quantity records how many copies were materialized at creation time.
type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"type:varchar(255);not null;index" json:"title"`
	Author          string     `gorm:"type:varchar(255);not null;index" json:"author"`
	ISBN            string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"isbn"`
	Publisher       string     `gorm:"type:varchar(255);not null" json:"publisher"`
	PublicationDate time.Time  `gorm:"not null" json:"publication_date"`
	Genre           string     `gorm:"type:varchar(100);not null;index" json:"genre"`
	Language        string     `gorm:"type:varchar(50);not null" json:"language"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	CoverImageURL   string     `gorm:"type:varchar(255)" json:"cover_image_url,omitempty"`
	Edition         string     `gorm:"type:varchar(50);not null" json:"edition"`
	PageCount       int        `gorm:"not null" json:"page_count"`
	Quantity        int        `gorm:"not null;default:1" json:"quantity"`
	Status          BookStatus `gorm:"type:varchar(20);not null;default:'Available'" json:"availability_status"`
	Rating          *float64   `gorm:"type:decimal(2,1)" json:"rating,omitempty"`
	Tags            string     `gorm:"type:text" json:"tags,omitempty"` // JSON array string
	Price           *float64   `gorm:"type:decimal(8,2)" json:"price,omitempty"`
	Location        string     `gorm:"type:varchar(255);not null" json:"location"`
	Format          string     `gorm:"type:varchar(50);not null" json:"book_format"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Copies []BookCopy `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"copies,omitempty"`
}

// TableName sets the table name.
func (Book) TableName() string {
	return "books"
}
