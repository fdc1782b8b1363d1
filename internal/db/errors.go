package db

import "errors"

// ErrNotFound is returned when a record or document does not exist.
var ErrNotFound = errors.New("record not found")
