package service

import "errors"

var (
	// ErrNotAuthenticated gates every mutation. Handlers translate it into
	// an authentication prompt, never a generic failure.
	ErrNotAuthenticated = errors.New("authentication required")

	ErrSignalNotFound = errors.New("signal not found")

	// ErrSignalNotLocked: unlocking an already-open signal is meaningless.
	ErrSignalNotLocked = errors.New("signal is not locked")

	// ErrPriceChanged: the quoted unlock price no longer matches the
	// signal's current price at submit time.
	ErrPriceChanged = errors.New("unlock price has changed")

	// ErrUnlockInFlight: a submit for the same (principal, signal) pair is
	// already running.
	ErrUnlockInFlight = errors.New("unlock already in progress")

	// ErrFlowNotConfirmable: Confirm was called on a flow that never
	// produced a quote.
	ErrFlowNotConfirmable = errors.New("unlock flow has no pending quote")

	ErrInvalidInput = errors.New("invalid input")
)
