package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common application errors
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrDatabaseError = errors.New("database error")
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Is lets callers match any ValidationError with ErrInvalidInput
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// OrganizationNotFoundError is returned when an organisation ID has no row
type OrganizationNotFoundError struct {
	ID uuid.UUID
}

func (e OrganizationNotFoundError) Error() string {
	return fmt.Sprintf("organization %s not found", e.ID)
}

// Is allows error comparison using errors.Is
func (e OrganizationNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
