package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")

	// ErrFetchFailure marks snapshot fetch errors, including cycle deadline expiry.
	ErrFetchFailure = crerr.New("snapshot fetch failed")
	// ErrStoreFailure marks state store get/put errors.
	ErrStoreFailure = crerr.New("state store failed")
	// ErrCycleInProgress is returned when a poll cycle is already running.
	ErrCycleInProgress = crerr.New("poll cycle already in progress")
)
