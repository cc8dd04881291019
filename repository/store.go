package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Find* methods when no row matches.
// Implementations translate their driver's not-found error so that
// callers never depend on gorm directly.
var ErrNotFound = errors.New("record not found")

// Store aggregates the per-entity repositories and scopes transactions.
// Services receive a Store instead of reaching for a global connection.
type Store interface {
	Books() BookRepo
	Copies() CopyRepo
	History() HistoryRepo
	Notifications() NotificationRepo
	Users() UserRepo

	// Tx runs fn inside a single database transaction. The Store passed
	// to fn is bound to that transaction; a non-nil error rolls back,
	// nil commits.
	Tx(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Books() BookRepo                 { return &bookRepo{db: s.db} }
func (s *gormStore) Copies() CopyRepo                { return &copyRepo{db: s.db} }
func (s *gormStore) History() HistoryRepo            { return &historyRepo{db: s.db} }
func (s *gormStore) Notifications() NotificationRepo { return &notificationRepo{db: s.db} }
func (s *gormStore) Users() UserRepo                 { return &userRepo{db: s.db} }

func (s *gormStore) Tx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// notFound maps gorm's sentinel onto the repository one.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
