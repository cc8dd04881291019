package utils

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	isbn10Regex = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Regex = regexp.MustCompile(`^\d{13}$`)
)

// RegisterValidators installs the custom binding rules used by request
// structs. Call once at startup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("isbn", validateISBN)
	}
}

// validateISBN accepts ISBN-10 or ISBN-13, with or without dashes.
func validateISBN(fl validator.FieldLevel) bool {
	return ValidateISBN(fl.Field().String())
}

// ValidateISBN reports whether s looks like an ISBN-10 or ISBN-13.
func ValidateISBN(s string) bool {
	s = strings.ReplaceAll(s, "-", "")
	if s == "" {
		return false
	}
	return isbn10Regex.MatchString(s) || isbn13Regex.MatchString(s)
}
