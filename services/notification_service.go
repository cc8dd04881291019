package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"libretrack/models"
	"libretrack/repository"
)

// dedupWindow is the rolling interval within which a user receives at
// most one notification of a given kind.
const dedupWindow = 24 * time.Hour

// DefaultReminderWindowDays is how far ahead return reminders look.
const DefaultReminderWindowDays = 3

// Notifier delivers a freshly created notification to a connected user.
// The websocket hub implements it; a nil Notifier disables push.
type Notifier interface {
	Push(userID string, n *models.Notification)
}

// NotificationService scans the loan ledger for overdue and soon-due
// copies and emits deduplicated notifications.
type NotificationService struct {
	store    repository.Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewNotificationService creates a dispatcher. notifier may be nil.
func NewNotificationService(store repository.Store, notifier Notifier, log *zap.Logger) *NotificationService {
	return &NotificationService{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// NotifyOverdue sends one Overdue notification to each borrower holding
// at least one copy past its due date, unless that borrower already got
// one inside the dedup window. Returns the number created.
func (s *NotificationService) NotifyOverdue(ctx context.Context) (int, error) {
	now := s.now()
	copies, err := s.store.Copies().ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue copies: %w", err)
	}
	return s.dispatch(ctx, copies, models.NotifyOverdue, now)
}

// NotifyDueSoon sends one Return Reminder to each borrower with a copy
// due within the next windowDays days. windowDays <= 0 falls back to
// DefaultReminderWindowDays.
func (s *NotificationService) NotifyDueSoon(ctx context.Context, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = DefaultReminderWindowDays
	}
	now := s.now()
	copies, err := s.store.Copies().ListDueBetween(ctx, now, now.Add(time.Duration(windowDays)*24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("list soon-due copies: %w", err)
	}
	return s.dispatch(ctx, copies, models.NotifyReturnReminder, now)
}

// dispatch groups candidate copies by borrower first and applies the
// dedup gate once per borrower, so a student with three overdue books
// still receives a single notification per scan.
func (s *NotificationService) dispatch(ctx context.Context, copies []models.BookCopy, kind models.NotificationKind, now time.Time) (int, error) {
	byUser := make(map[string][]*models.BookCopy)
	var order []string
	for i := range copies {
		c := &copies[i]
		if c.StudentID == nil {
			continue
		}
		if _, seen := byUser[*c.StudentID]; !seen {
			order = append(order, *c.StudentID)
		}
		byUser[*c.StudentID] = append(byUser[*c.StudentID], c)
	}
	sort.Strings(order)

	created := 0
	for _, userID := range order {
		recent, err := s.store.Notifications().HasRecent(ctx, userID, kind, now.Add(-dedupWindow))
		if err != nil {
			return created, fmt.Errorf("check recent notifications: %w", err)
		}
		if recent {
			continue
		}

		n := &models.Notification{
			UserID:  userID,
			Kind:    kind,
			Message: s.message(kind, byUser[userID]),
			SentAt:  now,
		}
		if err := s.store.Notifications().Create(ctx, n); err != nil {
			return created, fmt.Errorf("create notification: %w", err)
		}
		created++

		if s.notifier != nil {
			s.notifier.Push(userID, n)
		}
	}

	s.log.Info("notification scan finished",
		zap.String("kind", string(kind)),
		zap.Int("candidates", len(copies)),
		zap.Int("created", created),
	)
	return created, nil
}

// message builds the user-facing text from the triggering copies.
func (s *NotificationService) message(kind models.NotificationKind, copies []*models.BookCopy) string {
	first := copies[0]
	title := "your borrowed book"
	if first.Book != nil {
		title = fmt.Sprintf("'%s'", first.Book.Title)
	}

	switch kind {
	case models.NotifyReturnReminder:
		due := ""
		if first.DueDate != nil {
			due = first.DueDate.Format("2006-01-02")
		}
		if len(copies) > 1 {
			return fmt.Sprintf("%s and %d other borrowed book(s) are due for return soon. Please return %s by %s.",
				title, len(copies)-1, title, due)
		}
		return fmt.Sprintf("%s is due for return soon. Please return it by %s.", title, due)
	default:
		if len(copies) > 1 {
			return fmt.Sprintf("%s and %d other borrowed book(s) are overdue.", title, len(copies)-1)
		}
		return fmt.Sprintf("%s is overdue.", title)
	}
}

// MarkRead stamps the notification's read time. Marking an already-read
// notification is not an error; the timestamp moves to the latest call.
func (s *NotificationService) MarkRead(ctx context.Context, id uint) (*models.Notification, error) {
	n, err := s.store.Notifications().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	now := s.now()
	n.ReadAt = &now
	if err := s.store.Notifications().Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save read receipt: %w", err)
	}
	return n, nil
}

// ListForUser returns the user's notifications, optionally filtered by
// kind, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, kind models.NotificationKind) ([]models.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID, kind)
}

// ListAll returns every notification, newest first.
func (s *NotificationService) ListAll(ctx context.Context) ([]models.Notification, error) {
	return s.store.Notifications().ListAll(ctx)
}
