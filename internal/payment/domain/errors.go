package domain

import "errors"

var (
	ErrInvalidOrderID   = errors.New("order id is required")
	ErrInvalidProof     = errors.New("invalid payment proof")
	ErrInvalidProvider  = errors.New("invalid payment provider")
	ErrProviderNotFound = errors.New("payment provider not found")
	ErrInvalidConfig    = errors.New("invalid provider config")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrEventIgnored     = errors.New("webhook event ignored")
	// ErrRunInFlight suppresses a re-entrant reconcile for an order whose
	// run is still active.
	ErrRunInFlight = errors.New("reconciliation already in flight for order")
)
