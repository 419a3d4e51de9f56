package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrRepositoryUnavailable indicates the record store could not be reached
// or returned a non-recoverable failure.
type ErrRepositoryUnavailable struct {
	Store string
	Err   error
}

func (e *ErrRepositoryUnavailable) Error() string {
	return fmt.Sprintf("record store unavailable [%s]: %v", e.Store, e.Err)
}

func (e *ErrRepositoryUnavailable) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidAmount indicates a monetary value that could not be parsed.
type ErrInvalidAmount struct {
	Input string
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount: %q", e.Input)
}

// ErrInvalidCategoryRelation indicates a self-referencing, cross-user, or
// too-deep category parent reference.
type ErrInvalidCategoryRelation struct {
	CategoryID string
	Reason     string
}

func (e *ErrInvalidCategoryRelation) Error() string {
	return fmt.Sprintf("invalid category relation: %s", e.Reason)
}

// ErrCategoryHasChildren indicates a delete was blocked because the
// category still has child categories.
type ErrCategoryHasChildren struct {
	CategoryID string
	Children   int
}

func (e *ErrCategoryHasChildren) Error() string {
	return fmt.Sprintf("category %s has %d child categories: reassign or delete them first", e.CategoryID, e.Children)
}

// ErrAccountUnresolved indicates a CSV import batch halted because the
// account derived from the file name does not exist for the user.
type ErrAccountUnresolved struct {
	AccountName string
}

func (e *ErrAccountUnresolved) Error() string {
	return fmt.Sprintf("no account named %q: create it and re-run the import", e.AccountName)
}

// ErrInvalidParticipant indicates a shared transaction references a user
// that does not exist.
type ErrInvalidParticipant struct {
	UserID string
}

func (e *ErrInvalidParticipant) Error() string {
	return fmt.Sprintf("shared participant is not a known user: %s", e.UserID)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a resource cannot be changed in its current state
// (e.g. deleting an account that transactions still reference).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}
