package repository

import (
	"context"

	"gorm.io/gorm"

	"libretrack/models"
)

// BookRepo persists catalog entries.
type BookRepo interface {
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, id uint) (*models.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) ([]models.Book, int64, error)
	Search(ctx context.Context, query string, page, limit int) ([]models.Book, int64, error)
}

type bookRepo struct {
	db *gorm.DB
}

func (r *bookRepo) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepo) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

func (r *bookRepo) FindByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &book, nil
}

func (r *bookRepo) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, notFound(err)
	}
	return &book, nil
}

func (r *bookRepo) Delete(ctx context.Context, id uint) error {
	// Copies go first; the FK constraint cascades on MySQL, but the
	// explicit delete keeps the behavior identical on stores without
	// foreign key enforcement.
	if err := r.db.WithContext(ctx).Where("book_id = ?", id).Delete(&models.BookCopy{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

func (r *bookRepo) List(ctx context.Context, page, limit int) ([]models.Book, int64, error) {
	var (
		books []models.Book
		total int64
	)
	q := r.db.WithContext(ctx).Model(&models.Book{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("title").Offset((page - 1) * limit).Limit(limit).Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepo) Search(ctx context.Context, query string, page, limit int) ([]models.Book, int64, error) {
	var (
		books []models.Book
		total int64
	)
	like := "%" + query + "%"
	q := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("title LIKE ? OR author LIKE ? OR genre LIKE ? OR isbn LIKE ?", like, like, like, like)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("title").Offset((page - 1) * limit).Limit(limit).Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}
