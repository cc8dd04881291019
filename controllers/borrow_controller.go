package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"libretrack/services"
	"libretrack/utils"
)

// BorrowController exposes the loan lifecycle and ledger reports.
type BorrowController struct {
	borrowService *services.BorrowService
}

// NewBorrowController creates the controller.
func NewBorrowController(borrowService *services.BorrowService) *BorrowController {
	return &BorrowController{borrowService: borrowService}
}

// AssignRequest is the assign-copy payload.
type AssignRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	DueDate   string `json:"due_date" binding:"required"`
}

// DueDateRequest is the set-due-date payload.
type DueDateRequest struct {
	DueDate string `json:"due_date" binding:"required"`
}

// parseDueDate accepts RFC 3339 or a plain date.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// AssignCopy lends one available copy of the book to a student.
func (bc *BorrowController) AssignCopy(c *gin.Context) {
	bookID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		utils.ValidationError(c, err)
		return
	}

	copy, err := bc.borrowService.AssignCopy(c.Request.Context(), bookID, req.StudentID, dueDate)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "book assigned to student successfully", copy)
}

// ReturnCopy completes a loan and archives its history row.
func (bc *BorrowController) ReturnCopy(c *gin.Context) {
	copyID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	record, err := bc.borrowService.ReturnCopy(c.Request.Context(), copyID)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "book marked as returned successfully", record)
}

// SetDueDate overwrites the due date of a borrowed copy.
func (bc *BorrowController) SetDueDate(c *gin.Context) {
	copyID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req DueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(c, err)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		utils.ValidationError(c, err)
		return
	}

	copy, err := bc.borrowService.SetDueDate(c.Request.Context(), copyID, dueDate)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "return deadline updated successfully", copy)
}

// GetBorrowed lists every copy currently out on loan.
func (bc *BorrowController) GetBorrowed(c *gin.Context) {
	copies, err := bc.borrowService.ListBorrowed(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, copies)
}

// GetBorrowedByUser lists the copies one student holds.
func (bc *BorrowController) GetBorrowedByUser(c *gin.Context) {
	copies, err := bc.borrowService.ListBorrowedByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, copies)
}

// GetOverdue lists borrowed copies past their due date.
func (bc *BorrowController) GetOverdue(c *gin.Context) {
	copies, err := bc.borrowService.ListOverdue(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, copies)
}

// GetHistory returns the full borrow archive.
func (bc *BorrowController) GetHistory(c *gin.Context) {
	records, err := bc.borrowService.History(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, records)
}

// GetPopularBooks ranks books by active loans.
func (bc *BorrowController) GetPopularBooks(c *gin.Context) {
	report, err := bc.borrowService.PopularBooks(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, report)
}

// GetStudentActivity ranks students by copies held.
func (bc *BorrowController) GetStudentActivity(c *gin.Context) {
	report, err := bc.borrowService.StudentActivity(c.Request.Context())
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	utils.Success(c, report)
}

// GetStudentActivityByUser returns one student's loans and archive.
func (bc *BorrowController) GetStudentActivityByUser(c *gin.Context) {
	userID := c.Param("userId")
	current, err := bc.borrowService.ListBorrowedByUser(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "")
		return
	}
	history, err := bc.borrowService.HistoryByUser(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"borrowed_copies":       current,
		"borrowed_books_history": history,
	})
}
