package testpool

import "fmt"

// Per-item rejection reasons, machine-readable.
const (
	ReasonQuotaExceeded   = "quota exceeded"
	ReasonNameOwned       = "name owned by another author"
	ReasonNameRequired    = "name required"
	ReasonUnknownTest     = "unknown test name"
	ReasonAlreadyLiked    = "already liked"
	ReasonAlreadyDisliked = "already disliked"
	ReasonStoreFailure    = "store failure"
)

// ValidationError: missing required parameter or malformed batch. Maps to 400.
type ValidationError struct{ Msg string }

func (e ValidationError) Error() string { return e.Msg }

// AuthorizationError: wrong author or insufficient privilege. Maps to 403.
type AuthorizationError struct{ Msg string }

func (e AuthorizationError) Error() string { return e.Msg }

// NotFoundError: unknown test or pool. Maps to 404.
type NotFoundError struct{ Msg string }

func (e NotFoundError) Error() string { return e.Msg }

// ConflictError: duplicate reaction, claimed name, exceeded quota. Maps to 400
// with the reason string surfaced per offending item.
type ConflictError struct{ Reason string }

func (e ConflictError) Error() string { return e.Reason }

// StoreError: the backing store is unreachable or a write failed. Maps to 500.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e StoreError) Unwrap() error { return e.Err }
