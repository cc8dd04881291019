package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"libretrack/models"
	"libretrack/services"
	"libretrack/utils"
)

// BookController exposes catalog CRUD, search and copy listings.
type BookController struct {
	catalogService *services.CatalogService
}

// NewBookController creates the controller.
func NewBookController(catalogService *services.CatalogService) *BookController {
	return &BookController{catalogService: catalogService}
}

// BookRequest is the create/update payload.
type BookRequest struct {
	Title           string   `json:"title" binding:"required,max=255"`
	Author          string   `json:"author" binding:"required,max=255"`
	ISBN            string   `json:"isbn" binding:"required,isbn"`
	Publisher       string   `json:"publisher" binding:"required,max=255"`
	PublicationDate string   `json:"publication_date" binding:"required"`
	Genre           string   `json:"genre" binding:"required"`
	Language        string   `json:"language" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	CoverImageURL   string   `json:"cover_image_url" binding:"omitempty,url"`
	Edition         string   `json:"edition" binding:"required"`
	PageCount       int      `json:"page_count" binding:"required,gt=0"`
	Quantity        *int     `json:"quantity" binding:"required,gte=0"`
	Status          string   `json:"availability_status" binding:"required,oneof=Available Borrowed Reserved"`
	Rating          *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Tags            []string `json:"tags"`
	Price           *float64 `json:"price" binding:"omitempty,gte=0"`
	Location        string   `json:"location" binding:"required,max=255"`
	Format          string   `json:"book_format" binding:"required"`
}

func (r *BookRequest) toInput() (*services.BookInput, error) {
	pubDate, err := time.Parse("2006-01-02", r.PublicationDate)
	if err != nil {
		return nil, err
	}
	return &services.BookInput{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		Publisher:       r.Publisher,
		PublicationDate: pubDate,
		Genre:           r.Genre,
		Language:        r.Language,
		Description:     r.Description,
		CoverImageURL:   r.CoverImageURL,
		Edition:         r.Edition,
		PageCount:       r.PageCount,
		Quantity:        *r.Quantity,
		Status:          models.BookStatus(r.Status),
		Rating:          r.Rating,
		Tags:            r.Tags,
		Price:           r.Price,
		Location:        r.Location,
		Format:          r.Format,
	}, nil
}

// CreateBook adds a catalog entry and materializes its copies.
func (bc *BookController) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		utils.ValidationError(c, err)
		return
	}

	book, err := bc.catalogService.CreateBook(c.Request.Context(), in)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.Created(c, book)
}

// UpdateBook overwrites a book's catalog fields.
func (bc *BookController) UpdateBook(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		utils.ValidationError(c, err)
		return
	}

	book, err := bc.catalogService.UpdateBook(c.Request.Context(), id, in)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.Success(c, book)
}

// DeleteBook removes a book and its copies.
func (bc *BookController) DeleteBook(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := bc.catalogService.DeleteBook(c.Request.Context(), id); err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "book deleted successfully", nil)
}

// GetBooks lists the catalog, paginated.
func (bc *BookController) GetBooks(c *gin.Context) {
	page, limit := pageParams(c)
	books, total, err := bc.catalogService.ListBooks(c.Request.Context(), page, limit)
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Paginate(c, books, total, page, limit)
}

// GetBook returns one book.
func (bc *BookController) GetBook(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalogService.GetBook(c.Request.Context(), id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.Success(c, book)
}

// SearchBooks matches title, author, genre or ISBN.
func (bc *BookController) SearchBooks(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		utils.BadRequest(c, "query parameter is required")
		return
	}
	page, limit := pageParams(c)
	books, total, err := bc.catalogService.SearchBooks(c.Request.Context(), query, page, limit)
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Paginate(c, books, total, page, limit)
}

// GetAvailableCopies lists the lendable copies of one book.
func (bc *BookController) GetAvailableCopies(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	copies, err := bc.catalogService.AvailableCopies(c.Request.Context(), id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"available_copies": copies})
}

// GetAllCopies lists every copy with book and borrower details.
func (bc *BookController) GetAllCopies(c *gin.Context) {
	copies, err := bc.catalogService.ListCopies(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, copies)
}

// uintParam parses a numeric path parameter, writing a 400 on failure.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.BadRequest(c, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
