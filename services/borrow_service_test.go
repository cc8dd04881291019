package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libretrack/models"
)

func newBorrowService(store *fakeStore) *BorrowService {
	return NewBorrowService(store, zap.NewNop())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAssignCopy(t *testing.T) {
	ctx := context.Background()
	borrowedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dueDate := borrowedAt.AddDate(0, 0, 14)

	t.Run("assigns first available copy and stamps loan fields", func(t *testing.T) {
		store := newFakeStore()
		student := store.seedUser(models.RoleStudent)
		book := store.seedBook("The Go Programming Language", 2)

		svc := newBorrowService(store)
		svc.now = fixedClock(borrowedAt)

		copy, err := svc.AssignCopy(ctx, book.ID, student.ID, dueDate)
		require.NoError(t, err)

		assert.Equal(t, models.CopyBorrowed, copy.Status)
		require.NotNil(t, copy.StudentID)
		assert.Equal(t, student.ID, *copy.StudentID)
		require.NotNil(t, copy.BorrowedAt)
		assert.Equal(t, borrowedAt, *copy.BorrowedAt)
		require.NotNil(t, copy.DueDate)
		assert.Equal(t, dueDate, *copy.DueDate)

		// Only one of the two copies changed.
		copies := store.copiesOf(book.ID)
		assert.Equal(t, models.CopyBorrowed, copies[0].Status)
		assert.Equal(t, models.CopyAvailable, copies[1].Status)
	})

	t.Run("two students never receive the same copy", func(t *testing.T) {
		store := newFakeStore()
		first := store.seedUser(models.RoleStudent)
		second := store.seedUser(models.RoleStudent)
		book := store.seedBook("Clean Architecture", 2)

		svc := newBorrowService(store)
		c1, err := svc.AssignCopy(ctx, book.ID, first.ID, dueDate)
		require.NoError(t, err)
		c2, err := svc.AssignCopy(ctx, book.ID, second.ID, dueDate)
		require.NoError(t, err)

		assert.NotEqual(t, c1.ID, c2.ID)
	})

	t.Run("no available copy", func(t *testing.T) {
		store := newFakeStore()
		student := store.seedUser(models.RoleStudent)
		book := store.seedBook("Rarity", 1)

		svc := newBorrowService(store)
		_, err := svc.AssignCopy(ctx, book.ID, student.ID, dueDate)
		require.NoError(t, err)

		_, err = svc.AssignCopy(ctx, book.ID, student.ID, dueDate)
		assert.ErrorIs(t, err, ErrNoAvailableCopy)
	})

	t.Run("zero-quantity book has nothing to lend", func(t *testing.T) {
		store := newFakeStore()
		student := store.seedUser(models.RoleStudent)
		book := store.seedBook("Catalog Only", 0)

		svc := newBorrowService(store)
		_, err := svc.AssignCopy(ctx, book.ID, student.ID, dueDate)
		assert.ErrorIs(t, err, ErrNoAvailableCopy)
	})

	t.Run("unknown student", func(t *testing.T) {
		store := newFakeStore()
		book := store.seedBook("Ghost Borrower", 1)

		svc := newBorrowService(store)
		_, err := svc.AssignCopy(ctx, book.ID, "no-such-user", dueDate)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown book", func(t *testing.T) {
		store := newFakeStore()
		student := store.seedUser(models.RoleStudent)

		svc := newBorrowService(store)
		_, err := svc.AssignCopy(ctx, 999, student.ID, dueDate)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestReturnCopy(t *testing.T) {
	ctx := context.Background()
	borrowedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*fakeStore, *BorrowService, *models.BookCopy) {
		store := newFakeStore()
		student := store.seedUser(models.RoleStudent)
		book := store.seedBook("Returned Tales", 1)

		svc := newBorrowService(store)
		svc.now = fixedClock(borrowedAt)
		copy, err := svc.AssignCopy(ctx, book.ID, student.ID, borrowedAt.AddDate(0, 0, 7))
		require.NoError(t, err)
		return store, svc, copy
	}

	t.Run("archives one record and resets the copy", func(t *testing.T) {
		store, svc, copy := setup(t)
		returnedAt := borrowedAt.AddDate(0, 0, 5)
		svc.now = fixedClock(returnedAt)

		record, err := svc.ReturnCopy(ctx, copy.ID)
		require.NoError(t, err)

		assert.Equal(t, copy.ID, record.CopyID)
		assert.Equal(t, "Returned Tales", record.BookTitle)
		assert.Equal(t, borrowedAt, record.BorrowedAt)
		assert.Equal(t, returnedAt, record.ReturnedAt)
		assert.Equal(t, 5, record.Duration)

		history, err := svc.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 1)

		reset := store.copiesOf(copy.BookID)[0]
		assert.Equal(t, models.CopyAvailable, reset.Status)
		assert.Nil(t, reset.StudentID)
		assert.Nil(t, reset.BorrowedAt)
		assert.Nil(t, reset.DueDate)
	})

	t.Run("duration rounds down to whole days", func(t *testing.T) {
		_, svc, copy := setup(t)
		svc.now = fixedClock(borrowedAt.Add(36 * time.Hour))

		record, err := svc.ReturnCopy(ctx, copy.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, record.Duration)
	})

	t.Run("same-day return has duration zero", func(t *testing.T) {
		_, svc, copy := setup(t)
		svc.now = fixedClock(borrowedAt.Add(3 * time.Hour))

		record, err := svc.ReturnCopy(ctx, copy.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, record.Duration)
	})

	t.Run("returning an available copy fails", func(t *testing.T) {
		store, svc, copy := setup(t)
		_, err := svc.ReturnCopy(ctx, copy.ID)
		require.NoError(t, err)

		_, err = svc.ReturnCopy(ctx, copy.ID)
		assert.ErrorIs(t, err, ErrNotBorrowed)

		// The failed call added nothing to the archive.
		history, err := store.History().ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("unknown copy", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.ReturnCopy(ctx, 999)
		assert.ErrorIs(t, err, ErrCopyNotFound)
	})
}

func TestSetDueDate(t *testing.T) {
	ctx := context.Background()
	borrowedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	store := newFakeStore()
	student := store.seedUser(models.RoleStudent)
	book := store.seedBook("Extended Loan", 2)

	svc := newBorrowService(store)
	svc.now = fixedClock(borrowedAt)
	copy, err := svc.AssignCopy(ctx, book.ID, student.ID, borrowedAt.AddDate(0, 0, 7))
	require.NoError(t, err)

	t.Run("moves the due date on a borrowed copy", func(t *testing.T) {
		extended := borrowedAt.AddDate(0, 0, 21)
		updated, err := svc.SetDueDate(ctx, copy.ID, extended)
		require.NoError(t, err)
		require.NotNil(t, updated.DueDate)
		assert.Equal(t, extended, *updated.DueDate)
		assert.Equal(t, models.CopyBorrowed, updated.Status)
	})

	t.Run("rejects copies that are not borrowed", func(t *testing.T) {
		available := store.copiesOf(book.ID)[1]
		_, err := svc.SetDueDate(ctx, available.ID, borrowedAt.AddDate(0, 0, 21))
		assert.ErrorIs(t, err, ErrNotBorrowed)
	})

	t.Run("unknown copy", func(t *testing.T) {
		_, err := svc.SetDueDate(ctx, 999, borrowedAt)
		assert.ErrorIs(t, err, ErrCopyNotFound)
	})
}

func TestListOverdue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	student := store.seedUser(models.RoleStudent)
	book := store.seedBook("Deadlines", 3)

	svc := newBorrowService(store)
	svc.now = fixedClock(now.AddDate(0, 0, -10))

	// One loan already past due, one still running, one copy on the shelf.
	_, err := svc.AssignCopy(ctx, book.ID, student.ID, now.AddDate(0, 0, -2))
	require.NoError(t, err)
	_, err = svc.AssignCopy(ctx, book.ID, student.ID, now.AddDate(0, 0, 5))
	require.NoError(t, err)

	svc.now = fixedClock(now)
	overdue, err := svc.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.True(t, overdue[0].DueDate.Before(now))
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	store := newFakeStore()
	busy := store.seedUser(models.RoleStudent)
	quiet := store.seedUser(models.RoleStudent)
	popular := store.seedBook("Everyone Reads This", 3)
	niche := store.seedBook("Nobody Reads This", 2)

	svc := newBorrowService(store)
	svc.now = fixedClock(now)

	due := now.AddDate(0, 0, 14)
	for i := 0; i < 2; i++ {
		_, err := svc.AssignCopy(ctx, popular.ID, busy.ID, due)
		require.NoError(t, err)
	}
	_, err := svc.AssignCopy(ctx, niche.ID, quiet.ID, due)
	require.NoError(t, err)

	t.Run("popular books sorted by borrow count", func(t *testing.T) {
		rows, err := svc.PopularBooks(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, popular.ID, rows[0].BookID)
		assert.Equal(t, 2, rows[0].BorrowCount)
		assert.Equal(t, niche.ID, rows[1].BookID)
		assert.Equal(t, 1, rows[1].BorrowCount)
	})

	t.Run("student activity counts held copies", func(t *testing.T) {
		rows, err := svc.StudentActivity(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, busy.ID, rows[0].UserID)
		assert.Equal(t, 2, rows[0].BooksBorrowed)
		assert.Equal(t, quiet.ID, rows[1].UserID)
		assert.Equal(t, 1, rows[1].BooksBorrowed)
	})

	t.Run("history by unknown user fails", func(t *testing.T) {
		_, err := svc.HistoryByUser(ctx, "no-such-user")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
