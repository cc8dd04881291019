package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"libretrack/models"
	"libretrack/repository"
)

// CatalogService owns books and the copy pool attached to them.
type CatalogService struct {
	store repository.Store
	log   *zap.Logger
}

// NewCatalogService creates a catalog service backed by the given store.
func NewCatalogService(store repository.Store, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, log: log}
}

// BookInput carries the validated fields of a create or update request.
type BookInput struct {
	Title           string
	Author          string
	ISBN            string
	Publisher       string
	PublicationDate time.Time
	Genre           string
	Language        string
	Description     string
	CoverImageURL   string
	Edition         string
	PageCount       int
	Quantity        int
	Status          models.BookStatus
	Rating          *float64
	Tags            []string
	Price           *float64
	Location        string
	Format          string
}

func (in *BookInput) apply(book *models.Book) {
	book.Title = in.Title
	book.Author = in.Author
	book.ISBN = in.ISBN
	book.Publisher = in.Publisher
	book.PublicationDate = in.PublicationDate
	book.Genre = in.Genre
	book.Language = in.Language
	book.Description = in.Description
	book.CoverImageURL = in.CoverImageURL
	book.Edition = in.Edition
	book.PageCount = in.PageCount
	book.Quantity = in.Quantity
	book.Status = in.Status
	book.Rating = in.Rating
	book.Price = in.Price
	book.Location = in.Location
	book.Format = in.Format
	if in.Tags != nil {
		tagsJSON, _ := json.Marshal(in.Tags)
		book.Tags = string(tagsJSON)
	}
}

// CreateBook persists the book and materializes Quantity copies, all
// Available, in one transaction. Quantity 0 is a legal catalog-only
// entry with nothing to lend.
func (s *CatalogService) CreateBook(ctx context.Context, in *BookInput) (*models.Book, error) {
	if _, err := s.store.Books().FindByISBN(ctx, in.ISBN); err == nil {
		return nil, ErrDuplicateISBN
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check ISBN: %w", err)
	}

	book := &models.Book{}
	in.apply(book)
	if book.Status == "" {
		book.Status = models.BookAvailable
	}

	err := s.store.Tx(ctx, func(tx repository.Store) error {
		if err := tx.Books().Create(ctx, book); err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		copies := make([]models.BookCopy, in.Quantity)
		for i := range copies {
			copies[i] = models.BookCopy{BookID: book.ID, Status: models.CopyAvailable}
		}
		if err := tx.Copies().CreateBatch(ctx, copies); err != nil {
			return fmt.Errorf("materialize copies: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("book created",
		zap.Uint("book_id", book.ID),
		zap.String("isbn", book.ISBN),
		zap.Int("copies", in.Quantity),
	)
	return book, nil
}

// UpdateBook overwrites a book's catalog fields. The copy pool is not
// touched; quantity edits do not create or destroy copies.
func (s *CatalogService) UpdateBook(ctx context.Context, id uint, in *BookInput) (*models.Book, error) {
	book, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if in.ISBN != book.ISBN {
		if _, err := s.store.Books().FindByISBN(ctx, in.ISBN); err == nil {
			return nil, ErrDuplicateISBN
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check ISBN: %w", err)
		}
	}

	in.apply(book)
	if err := s.store.Books().Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes the book and all of its copies. A book with any
// copy out on loan cannot be deleted; return the copies first.
func (s *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	return s.store.Tx(ctx, func(tx repository.Store) error {
		if _, err := tx.Books().FindByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return err
		}
		borrowed, err := tx.Copies().CountByBookAndStatus(ctx, id, models.CopyBorrowed)
		if err != nil {
			return fmt.Errorf("count borrowed copies: %w", err)
		}
		if borrowed > 0 {
			return ErrBookHasActiveLoans
		}
		if err := tx.Books().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		s.log.Info("book deleted", zap.Uint("book_id", id))
		return nil
	})
}

// GetBook fetches one book.
func (s *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// ListBooks returns one page of the catalog plus the total count.
func (s *CatalogService) ListBooks(ctx context.Context, page, limit int) ([]models.Book, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.store.Books().List(ctx, page, limit)
}

// SearchBooks matches title, author, genre or ISBN against the query.
func (s *CatalogService) SearchBooks(ctx context.Context, query string, page, limit int) ([]models.Book, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.store.Books().Search(ctx, query, page, limit)
}

// AvailableCopies lists the lendable copies of one book.
func (s *CatalogService) AvailableCopies(ctx context.Context, bookID uint) ([]models.BookCopy, error) {
	if _, err := s.store.Books().FindByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return s.store.Copies().ListAvailableByBook(ctx, bookID)
}

// ListCopies returns every copy with its book and current borrower.
func (s *CatalogService) ListCopies(ctx context.Context) ([]models.BookCopy, error) {
	return s.store.Copies().ListAll(ctx)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
