package services

import (
	"errors"
	"fmt"
)

// ErrInvalidWallet indicates a malformed wallet address, rejected before any
// network call.
var ErrInvalidWallet = errors.New("invalid wallet address")

// UpstreamError indicates the mandatory positions source was unreachable or
// returned a non-success status.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
