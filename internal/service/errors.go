package service

import "errors"

var (
	ErrNotFound           = errors.New("not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidAmount      = errors.New("amount_ml must be greater than 0")
	ErrInvalidTarget      = errors.New("daily target must be greater than 0")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrConflict marks a referential-integrity failure during account
	// deletion, so callers can tell a data dependency conflict apart from
	// a generic storage error.
	ErrConflict = errors.New("data_conflict")
)
