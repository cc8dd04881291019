package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libretrack/models"
)

// CopyRepo persists physical copies.
type CopyRepo interface {
	CreateBatch(ctx context.Context, copies []models.BookCopy) error
	FindByID(ctx context.Context, id uint) (*models.BookCopy, error)

	// FindByIDForUpdate locks the copy row for the rest of the enclosing
	// transaction. Only meaningful inside Store.Tx.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.BookCopy, error)

	// FirstAvailableForUpdate picks one Available copy of the book and
	// locks it so concurrent borrowers cannot take the same unit.
	FirstAvailableForUpdate(ctx context.Context, bookID uint) (*models.BookCopy, error)

	Save(ctx context.Context, copy *models.BookCopy) error

	ListAll(ctx context.Context) ([]models.BookCopy, error)
	ListAvailableByBook(ctx context.Context, bookID uint) ([]models.BookCopy, error)
	ListBorrowed(ctx context.Context) ([]models.BookCopy, error)
	ListBorrowedByUser(ctx context.Context, userID string) ([]models.BookCopy, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.BookCopy, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]models.BookCopy, error)
	CountByBookAndStatus(ctx context.Context, bookID uint, status models.CopyStatus) (int64, error)
}

type copyRepo struct {
	db *gorm.DB
}

func (r *copyRepo) CreateBatch(ctx context.Context, copies []models.BookCopy) error {
	if len(copies) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&copies).Error
}

func (r *copyRepo) FindByID(ctx context.Context, id uint) (*models.BookCopy, error) {
	var copy models.BookCopy
	if err := r.db.WithContext(ctx).Preload("Book").First(&copy, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &copy, nil
}

func (r *copyRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.BookCopy, error) {
	var copy models.BookCopy
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&copy, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &copy, nil
}

func (r *copyRepo) FirstAvailableForUpdate(ctx context.Context, bookID uint) (*models.BookCopy, error) {
	var copy models.BookCopy
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("book_id = ? AND status = ?", bookID, models.CopyAvailable).
		Order("id").
		First(&copy).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &copy, nil
}

func (r *copyRepo) Save(ctx context.Context, copy *models.BookCopy) error {
	// Save writes every column so cleared borrower fields persist as NULL.
	return r.db.WithContext(ctx).Save(copy).Error
}

func (r *copyRepo) ListAll(ctx context.Context) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.db.WithContext(ctx).Preload("Book").Preload("Student").Find(&copies).Error
	return copies, err
}

func (r *copyRepo) ListAvailableByBook(ctx context.Context, bookID uint) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, models.CopyAvailable).
		Find(&copies).Error
	return copies, err
}

func (r *copyRepo) ListBorrowed(ctx context.Context) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.db.WithContext(ctx).Preload("Book").Preload("Student").
		Where("status = ?", models.CopyBorrowed).
		Find(&copies).Error
	return copies, err
}

func (r *copyRepo) ListBorrowedByUser(ctx context.Context, userID string) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.db.WithContext(ctx).Preload("Book").
		Where("status = ? AND student_id = ?", models.CopyBorrowed, userID).
		Find(&copies).Error
	return copies, err
}

func (r *copyRepo) ListOverdue(ctx context.Context, now time.Time) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.db.WithContext(ctx).Preload("Book").Preload("Student").
		Where("status = ? AND due_date < ?", models.CopyBorrowed, now).
		Find(&copies).Error
	return copies, err
}

func (r *copyRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.db.WithContext(ctx).Preload("Book").Preload("Student").
		Where("status = ? AND due_date > ? AND due_date < ?", models.CopyBorrowed, from, to).
		Find(&copies).Error
	return copies, err
}

func (r *copyRepo) CountByBookAndStatus(ctx context.Context, bookID uint, status models.CopyStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.BookCopy{}).
		Where("book_id = ? AND status = ?", bookID, status).
		Count(&n).Error
	return n, err
}
