package domain

import "errors"

// Error taxonomy shared by every module. Module-level errors wrap one of these
// so handlers can pick a status code with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream failure")
)
