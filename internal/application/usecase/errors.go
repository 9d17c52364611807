package usecase

import "errors"

// ErrInvalidInput is returned when a request fails validation before any
// repository is touched.
var ErrInvalidInput = errors.New("invalid input")

// maxSaveAttempts bounds the reload-and-retry loop on version conflicts.
const maxSaveAttempts = 3
