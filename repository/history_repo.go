package repository

import (
	"context"

	"gorm.io/gorm"

	"libretrack/models"
)

// HistoryRepo persists completed-loan archive rows. Records are append
// only; there is deliberately no update or delete method.
type HistoryRepo interface {
	Create(ctx context.Context, record *models.BorrowRecord) error
	ListAll(ctx context.Context) ([]models.BorrowRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error)
}

type historyRepo struct {
	db *gorm.DB
}

func (r *historyRepo) Create(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *historyRepo) ListAll(ctx context.Context) ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	err := r.db.WithContext(ctx).Preload("Student").
		Order("returned_at DESC").
		Find(&records).Error
	return records, err
}

func (r *historyRepo) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	var records []models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", userID).
		Order("returned_at DESC").
		Find(&records).Error
	return records, err
}
