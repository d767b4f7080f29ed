package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidTransition  = errors.New("transition not allowed from current screen")
	ErrNoPlanSelected     = errors.New("no plan selected")
	ErrNoTransaction      = errors.New("no transaction result")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrSubmitInFlight     = errors.New("a subscription submit is already in flight")
	ErrBillingUnavailable = errors.New("billing api unavailable")
)
