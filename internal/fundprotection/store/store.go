// Package store persists transactions and their fulfillment steps.
//
// Steps are created once per transaction and only ever flip from PENDING to
// COMPLETED. Both implementations enforce that with a compare-and-swap: a
// step completes only while it is pending and every lower-numbered step is
// already completed.
package store

import (
	"propex/pkg/platform/sentinel"
)

// Errors are the shared persistence sentinels, re-exported for callers that
// only import this package.
var (
	ErrNotFound     = sentinel.ErrNotFound
	ErrConflict     = sentinel.ErrConflict
	ErrInvalidState = sentinel.ErrInvalidState
)
