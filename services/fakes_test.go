package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"libretrack/models"
	"libretrack/repository"
)

// fakeStore is an in-memory repository.Store used to test the services
// without a database. Tx runs the callback against the same store; the
// tests only exercise paths where atomicity is observable as "both
// writes present" or "error returned before any write".
type fakeStore struct {
	mu sync.Mutex

	books         map[uint]*models.Book
	copies        map[uint]*models.BookCopy
	history       []models.BorrowRecord
	notifications []models.Notification
	users         map[string]*models.User

	nextBookID  uint
	nextCopyID  uint
	nextNotifID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:  make(map[uint]*models.Book),
		copies: make(map[uint]*models.BookCopy),
		users:  make(map[string]*models.User),
	}
}

func (s *fakeStore) Books() repository.BookRepo                 { return &fakeBookRepo{s} }
func (s *fakeStore) Copies() repository.CopyRepo                { return &fakeCopyRepo{s} }
func (s *fakeStore) History() repository.HistoryRepo            { return &fakeHistoryRepo{s} }
func (s *fakeStore) Notifications() repository.NotificationRepo { return &fakeNotificationRepo{s} }
func (s *fakeStore) Users() repository.UserRepo                 { return &fakeUserRepo{s} }

func (s *fakeStore) Tx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// ----- seeding helpers -----

func (s *fakeStore) seedUser(role models.Role) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := string(rune('a'+len(s.users))) + "-user-id"
	u := &models.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role}
	s.users[id] = u
	return u
}

func (s *fakeStore) seedBook(title string, quantity int) *models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBookID++
	b := &models.Book{ID: s.nextBookID, Title: title, ISBN: title + "-isbn", Quantity: quantity}
	s.books[b.ID] = b
	for i := 0; i < quantity; i++ {
		s.nextCopyID++
		s.copies[s.nextCopyID] = &models.BookCopy{
			ID:     s.nextCopyID,
			BookID: b.ID,
			Status: models.CopyAvailable,
		}
	}
	return b
}

func (s *fakeStore) copiesOf(bookID uint) []*models.BookCopy {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.BookCopy
	for _, c := range s.copies {
		if c.BookID == bookID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ----- BookRepo -----

type fakeBookRepo struct{ s *fakeStore }

func (r *fakeBookRepo) Create(ctx context.Context, book *models.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextBookID++
	book.ID = r.s.nextBookID
	cp := *book
	r.s.books[book.ID] = &cp
	return nil
}

func (r *fakeBookRepo) Update(ctx context.Context, book *models.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *book
	r.s.books[book.ID] = &cp
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for cid, c := range r.s.copies {
		if c.BookID == id {
			delete(r.s.copies, cid)
		}
	}
	delete(r.s.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, page, limit int) ([]models.Book, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Book
	for _, b := range r.s.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeBookRepo) Search(ctx context.Context, query string, page, limit int) ([]models.Book, int64, error) {
	return r.List(ctx, page, limit)
}

// ----- CopyRepo -----

type fakeCopyRepo struct{ s *fakeStore }

func (r *fakeCopyRepo) CreateBatch(ctx context.Context, copies []models.BookCopy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range copies {
		r.s.nextCopyID++
		copies[i].ID = r.s.nextCopyID
		cp := copies[i]
		r.s.copies[cp.ID] = &cp
	}
	return nil
}

func (r *fakeCopyRepo) FindByID(ctx context.Context, id uint) (*models.BookCopy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.copies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	if b, ok := r.s.books[c.BookID]; ok {
		bc := *b
		cp.Book = &bc
	}
	return &cp, nil
}

func (r *fakeCopyRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.BookCopy, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeCopyRepo) FirstAvailableForUpdate(ctx context.Context, bookID uint) (*models.BookCopy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for id, c := range r.s.copies {
		if c.BookID == bookID && c.Status == models.CopyAvailable {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cp := *r.s.copies[ids[0]]
	return &cp, nil
}

func (r *fakeCopyRepo) Save(ctx context.Context, copy *models.BookCopy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *copy
	cp.Book = nil
	cp.Student = nil
	r.s.copies[cp.ID] = &cp
	return nil
}

func (r *fakeCopyRepo) list(match func(*models.BookCopy) bool) []models.BookCopy {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.BookCopy
	for _, c := range r.s.copies {
		if match(c) {
			cp := *c
			if b, ok := r.s.books[c.BookID]; ok {
				bc := *b
				cp.Book = &bc
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeCopyRepo) ListAll(ctx context.Context) ([]models.BookCopy, error) {
	return r.list(func(*models.BookCopy) bool { return true }), nil
}

func (r *fakeCopyRepo) ListAvailableByBook(ctx context.Context, bookID uint) ([]models.BookCopy, error) {
	return r.list(func(c *models.BookCopy) bool {
		return c.BookID == bookID && c.Status == models.CopyAvailable
	}), nil
}

func (r *fakeCopyRepo) ListBorrowed(ctx context.Context) ([]models.BookCopy, error) {
	return r.list(func(c *models.BookCopy) bool { return c.Status == models.CopyBorrowed }), nil
}

func (r *fakeCopyRepo) ListBorrowedByUser(ctx context.Context, userID string) ([]models.BookCopy, error) {
	return r.list(func(c *models.BookCopy) bool {
		return c.Status == models.CopyBorrowed && c.StudentID != nil && *c.StudentID == userID
	}), nil
}

func (r *fakeCopyRepo) ListOverdue(ctx context.Context, now time.Time) ([]models.BookCopy, error) {
	return r.list(func(c *models.BookCopy) bool {
		return c.Status == models.CopyBorrowed && c.DueDate != nil && c.DueDate.Before(now)
	}), nil
}

func (r *fakeCopyRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]models.BookCopy, error) {
	return r.list(func(c *models.BookCopy) bool {
		return c.Status == models.CopyBorrowed && c.DueDate != nil &&
			c.DueDate.After(from) && c.DueDate.Before(to)
	}), nil
}

func (r *fakeCopyRepo) CountByBookAndStatus(ctx context.Context, bookID uint, status models.CopyStatus) (int64, error) {
	return int64(len(r.list(func(c *models.BookCopy) bool {
		return c.BookID == bookID && c.Status == status
	}))), nil
}

// ----- HistoryRepo -----

type fakeHistoryRepo struct{ s *fakeStore }

func (r *fakeHistoryRepo) Create(ctx context.Context, record *models.BorrowRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record.ID = uint(len(r.s.history) + 1)
	r.s.history = append(r.s.history, *record)
	return nil
}

func (r *fakeHistoryRepo) ListAll(ctx context.Context) ([]models.BorrowRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.BorrowRecord(nil), r.s.history...), nil
}

func (r *fakeHistoryRepo) ListByUser(ctx context.Context, userID string) ([]models.BorrowRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.BorrowRecord
	for _, rec := range r.s.history {
		if rec.StudentID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ----- NotificationRepo -----

type fakeNotificationRepo struct{ s *fakeStore }

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextNotifID++
	n.ID = r.s.nextNotifID
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id {
			cp := r.s.notifications[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeNotificationRepo) Save(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == n.ID {
			r.s.notifications[i] = *n
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) HasRecent(ctx context.Context, userID string, kind models.NotificationKind, since time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		n := &r.s.notifications[i]
		if n.UserID == userID && n.Kind == kind && n.SentAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, kind models.NotificationKind) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID && (kind == "" || n.Kind == kind) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ListAll(ctx context.Context) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Notification(nil), r.s.notifications...), nil
}

// ----- UserRepo -----

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == "" {
		user.ID = string(rune('a'+len(r.s.users))) + "-user-id"
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
