package repositories

import "errors"

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")
