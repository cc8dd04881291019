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

// BorrowService owns the loan lifecycle: assigning copies to students,
// reclaiming them, and the read views built on top of copy state.
type BorrowService struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewBorrowService creates a borrow service backed by the given store.
func NewBorrowService(store repository.Store, log *zap.Logger) *BorrowService {
	return &BorrowService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// AssignCopy hands one Available copy of the book to the student and
// stamps it with the caller-supplied due date. The pick and the status
// flip happen in one transaction with the chosen row locked, so two
// concurrent callers can never receive the same copy.
func (s *BorrowService) AssignCopy(ctx context.Context, bookID uint, studentID string, dueDate time.Time) (*models.BookCopy, error) {
	if _, err := s.store.Users().FindByID(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("look up student: %w", err)
	}

	var assigned *models.BookCopy
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		if _, err := tx.Books().FindByID(ctx, bookID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("look up book: %w", err)
		}

		copy, err := tx.Copies().FirstAvailableForUpdate(ctx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoAvailableCopy
			}
			return fmt.Errorf("pick available copy: %w", err)
		}

		now := s.now()
		copy.Status = models.CopyBorrowed
		copy.StudentID = &studentID
		copy.BorrowedAt = &now
		copy.DueDate = &dueDate

		if err := tx.Copies().Save(ctx, copy); err != nil {
			return fmt.Errorf("save borrowed copy: %w", err)
		}
		assigned = copy
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("copy assigned",
		zap.Uint("copy_id", assigned.ID),
		zap.Uint("book_id", bookID),
		zap.String("student_id", studentID),
		zap.Time("due_date", dueDate),
	)
	return assigned, nil
}

// ReturnCopy completes a loan: it archives one BorrowRecord and resets
// the copy to Available in the same transaction, so the history row and
// the reset can never be observed apart.
func (s *BorrowService) ReturnCopy(ctx context.Context, copyID uint) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		copy, err := tx.Copies().FindByIDForUpdate(ctx, copyID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCopyNotFound
			}
			return fmt.Errorf("look up copy: %w", err)
		}
		if copy.Status != models.CopyBorrowed || copy.StudentID == nil || copy.BorrowedAt == nil {
			return ErrNotBorrowed
		}

		book, err := tx.Books().FindByID(ctx, copy.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("look up book: %w", err)
		}

		returnedAt := s.now()
		record = &models.BorrowRecord{
			CopyID:     copy.ID,
			StudentID:  *copy.StudentID,
			BorrowedAt: *copy.BorrowedAt,
			DueDate:    copy.DueDate,
			ReturnedAt: returnedAt,
			Duration:   models.BorrowDuration(*copy.BorrowedAt, returnedAt),
			BookTitle:  book.Title,
		}
		if err := tx.History().Create(ctx, record); err != nil {
			return fmt.Errorf("archive borrow record: %w", err)
		}

		copy.Status = models.CopyAvailable
		copy.StudentID = nil
		copy.BorrowedAt = nil
		copy.DueDate = nil
		if err := tx.Copies().Save(ctx, copy); err != nil {
			return fmt.Errorf("reset copy: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("copy returned",
		zap.Uint("copy_id", copyID),
		zap.Int("duration_days", record.Duration),
	)
	return record, nil
}

// SetDueDate overwrites the due date of a borrowed copy. No other field
// changes.
func (s *BorrowService) SetDueDate(ctx context.Context, copyID uint, dueDate time.Time) (*models.BookCopy, error) {
	var updated *models.BookCopy
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		copy, err := tx.Copies().FindByIDForUpdate(ctx, copyID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCopyNotFound
			}
			return fmt.Errorf("look up copy: %w", err)
		}
		if copy.Status != models.CopyBorrowed {
			return ErrNotBorrowed
		}
		copy.DueDate = &dueDate
		if err := tx.Copies().Save(ctx, copy); err != nil {
			return fmt.Errorf("save due date: %w", err)
		}
		updated = copy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListOverdue returns the borrowed copies whose due date has passed.
func (s *BorrowService) ListOverdue(ctx context.Context) ([]models.BookCopy, error) {
	return s.store.Copies().ListOverdue(ctx, s.now())
}

// ListBorrowed returns every copy currently out on loan.
func (s *BorrowService) ListBorrowed(ctx context.Context) ([]models.BookCopy, error) {
	return s.store.Copies().ListBorrowed(ctx)
}

// ListBorrowedByUser returns the copies the given student holds.
func (s *BorrowService) ListBorrowedByUser(ctx context.Context, userID string) ([]models.BookCopy, error) {
	return s.store.Copies().ListBorrowedByUser(ctx, userID)
}

// History returns the full borrow archive, newest return first.
func (s *BorrowService) History(ctx context.Context) ([]models.BorrowRecord, error) {
	return s.store.History().ListAll(ctx)
}

// HistoryByUser returns one student's borrow archive.
func (s *BorrowService) HistoryByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.store.History().ListByUser(ctx, userID)
}

// BookBorrowCount is one row of the popular-books report.
type BookBorrowCount struct {
	BookID      uint   `json:"book_id"`
	Title       string `json:"title"`
	BorrowCount int    `json:"borrow_count"`
}

// PopularBooks ranks books by how many of their copies are currently
// out on loan.
func (s *BorrowService) PopularBooks(ctx context.Context) ([]BookBorrowCount, error) {
	copies, err := s.store.Copies().ListBorrowed(ctx)
	if err != nil {
		return nil, err
	}
	byBook := make(map[uint]*BookBorrowCount)
	for i := range copies {
		c := &copies[i]
		row, ok := byBook[c.BookID]
		if !ok {
			row = &BookBorrowCount{BookID: c.BookID}
			if c.Book != nil {
				row.Title = c.Book.Title
			}
			byBook[c.BookID] = row
		}
		row.BorrowCount++
	}
	out := make([]BookBorrowCount, 0, len(byBook))
	for _, row := range byBook {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BorrowCount != out[j].BorrowCount {
			return out[i].BorrowCount > out[j].BorrowCount
		}
		return out[i].BookID < out[j].BookID
	})
	return out, nil
}

// StudentActivityRow is one row of the student-activity report.
type StudentActivityRow struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	BooksBorrowed int    `json:"books_borrowed"`
}

// StudentActivity ranks students by the number of copies they hold.
func (s *BorrowService) StudentActivity(ctx context.Context) ([]StudentActivityRow, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	copies, err := s.store.Copies().ListBorrowed(ctx)
	if err != nil {
		return nil, err
	}
	held := make(map[string]int)
	for i := range copies {
		if copies[i].StudentID != nil {
			held[*copies[i].StudentID]++
		}
	}
	out := make([]StudentActivityRow, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, StudentActivityRow{
			UserID:        u.ID,
			Name:          u.Name,
			Email:         u.Email,
			BooksBorrowed: held[u.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BooksBorrowed != out[j].BooksBorrowed {
			return out[i].BooksBorrowed > out[j].BooksBorrowed
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
