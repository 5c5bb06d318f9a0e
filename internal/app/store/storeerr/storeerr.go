// internal/app/store/storeerr/storeerr.go
//
// Package storeerr holds the sentinel errors shared by every group and
// directory backend so the lifecycle engine can branch on them without
// knowing which backend is wired.
package storeerr

import "errors"

var (
	// ErrNotFound is returned when the requested group or student does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStale is returned when a write was based on an outdated version.
	ErrStale = errors.New("stale version")

	// ErrDuplicate is returned when a unique key is already taken, such as a
	// proposal that was converted into a group before.
	ErrDuplicate = errors.New("duplicate key")
)
