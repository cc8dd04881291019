package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"libretrack/models"
)

// NotificationRepo persists dispatcher notifications.
type NotificationRepo interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	Save(ctx context.Context, n *models.Notification) error

	// HasRecent reports whether the user already received a notification
	// of the given kind with sent_at after the since instant.
	HasRecent(ctx context.Context, userID string, kind models.NotificationKind, since time.Time) (bool, error)

	// ListByUser returns a user's notifications, newest first. An empty
	// kind matches every kind.
	ListByUser(ctx context.Context, userID string, kind models.NotificationKind) ([]models.Notification, error)
	ListAll(ctx context.Context) ([]models.Notification, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *notificationRepo) Save(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notificationRepo) HasRecent(ctx context.Context, userID string, kind models.NotificationKind, since time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND sent_at > ?", userID, kind, since).
		Count(&n).Error
	return n > 0, err
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, kind models.NotificationKind) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("type = ?", kind)
	}
	var list []models.Notification
	err := q.Order("sent_at DESC").Find(&list).Error
	return list, err
}

func (r *notificationRepo) ListAll(ctx context.Context) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).Order("sent_at DESC").Find(&list).Error
	return list, err
}
