package db

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors surfaced to the API layer
var (
	// ErrForbidden is returned when a caller attempts an operation
	// reserved for another user (e.g. accepting an answer on someone
	// else's question)
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrValidation is returned when input fails a domain rule before
	// any write happens
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation requires a row that
	// does not exist
	ErrNotFound = errors.New("record not found")
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}
