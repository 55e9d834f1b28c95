// Package storage binds a database connection to the user store: it
// provisions the schema and hands out repositories bound to that connection.
package storage

import (
	"context"
	"database/sql"

	"github.com/dkharitonov/userstore/internal/repositories/users"
)

// Manager owns a store connection.
//
// Provision ensures the users table exists with the declared constraints.
// It is idempotent: re-invoking it against an already-provisioned store is a
// no-op and never alters existing data. If a table named users already
// exists with an incompatible shape, Provision fails with
// common.ErrConstraintConflict and leaves the table untouched.
type Manager interface {
	Provision(ctx context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Close() error
}
