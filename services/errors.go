package services

import "errors"

// Service error kinds. Controllers map these onto HTTP statuses with
// errors.Is; nothing below ever wraps a transport concern.
var (
	// Not-found family.
	ErrBookNotFound         = errors.New("book not found")
	ErrCopyNotFound         = errors.New("book copy not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// Conflict family.
	ErrNoAvailableCopy    = errors.New("no available copies for this book")
	ErrNotBorrowed        = errors.New("this copy is not currently borrowed")
	ErrDuplicateISBN      = errors.New("a book with this ISBN already exists")
	ErrBookHasActiveLoans = errors.New("book has copies out on loan")
	ErrEmailTaken         = errors.New("email is already registered")

	// Auth family.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("role must be admin or student")
)
