// Package models defines the persisted data models of the user store.
package models

import "time"

// User is a single record in the users table.
type User struct {
	// ID is assigned by the storage engine on insert. It is strictly
	// increasing within a store's lifetime, never reused, and immutable
	// once assigned.
	ID int64

	// Email is required and unique across all records. The uniqueness
	// constraint lives in the storage engine, not in application code.
	Email string

	// Name is optional; nil means absent.
	Name *string

	// CreatedAt is assigned by the storage engine on insert, in UTC.
	CreatedAt time.Time
}
