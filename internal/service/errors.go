package service

import (
	"errors"

	"github.com/brehash/kscinventory-sub002/internal/repository"
)

// Sentinel errors returned by services. Handlers map them to HTTP statuses
// with errors.Is; the wrapped message is safe to show to the caller.
var (
	ErrNotFound          = repository.ErrNotFound
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = repository.ErrNegativeStock
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrWooNotConfigured  = errors.New("woocommerce is not configured")
	ErrWooNotLinked      = errors.New("product is not linked to woocommerce")
	ErrSyncInProgress    = errors.New("a woocommerce sync is already running")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
)
