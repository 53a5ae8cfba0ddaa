// Package store persists accounts, wallets and digital IBANs.
package store

import "propex/pkg/platform/sentinel"

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)
