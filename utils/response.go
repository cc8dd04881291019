package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"libretrack/services"
)

// Response is the uniform JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PageResponse wraps paginated list payloads.
type PageResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Business status codes carried alongside the HTTP status.
const (
	CodeSuccess             = 20000
	CodeError               = 40000
	CodeUnauthorized        = 40100
	CodeForbidden           = 40300
	CodeNotFound            = 40400
	CodeValidationError     = 42200
	CodeInternalServerError = 50000
)

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage writes a 200 with a custom message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "created",
		Data:    data,
	})
}

// Paginate writes a 200 page envelope.
func Paginate(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PageResponse{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeError, Message: message})
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: message})
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{Code: CodeForbidden, Message: message})
}

// NotFound writes a 404.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: message})
}

// ValidationError writes a 422 with field details.
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Code:    CodeValidationError,
		Message: "validation failed",
		Error:   err.Error(),
	})
}

// InternalError writes a 500.
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternalServerError, Message: message})
}

// ServiceError maps a service-layer error kind onto the matching HTTP
// status: not-found 404, conflicts 400, auth failures 401/403,
// everything unexpected 500.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrCopyNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, services.ErrNoAvailableCopy),
		errors.Is(err, services.ErrNotBorrowed),
		errors.Is(err, services.ErrDuplicateISBN),
		errors.Is(err, services.ErrBookHasActiveLoans),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidRole):
		BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, "")
	}
}
