package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dkharitonov/userstore/internal/common"
	migrations "github.com/dkharitonov/userstore/internal/migrations/postgres"
	"github.com/dkharitonov/userstore/internal/repositories/users"
)

type PostgresManager struct {
	db    *sql.DB
	users users.Repository
}

func NewPostgresManager(dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return &PostgresManager{
		db:    db,
		users: users.NewPostgresRepository(db),
	}, nil
}

func (m *PostgresManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresManager) Users() users.Repository {
	return m.users
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}

// Provision applies the embedded migrations and verifies the resulting
// catalog shape. The migration uses CREATE TABLE IF NOT EXISTS, so invoking
// Provision against an already-provisioned store changes nothing; a
// pre-existing incompatible table is reported, never altered.
func (m *PostgresManager) Provision(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return m.verifySchema(ctx)
}

// verifySchema checks the users table against the declared definition:
// id and email non-nullable, name nullable, email covered by a unique
// constraint. Any divergence yields common.ErrConstraintConflict.
func (m *PostgresManager) verifySchema(ctx context.Context) error {
	query :=
		`SELECT column_name, is_nullable FROM information_schema.columns
		 WHERE table_name = 'users'
		 `

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("schema check error: %w", err)
	}
	defer rows.Close()

	nullable := map[string]bool{}
	for rows.Next() {
		var name, isNullable string
		if err := rows.Scan(&name, &isNullable); err != nil {
			return fmt.Errorf("schema check error: %w", err)
		}
		nullable[name] = isNullable == "YES"
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("schema check error: %w", err)
	}

	for col, wantNullable := range map[string]bool{"id": false, "email": false, "name": true} {
		got, ok := nullable[col]
		if !ok {
			return fmt.Errorf("%w: users table is missing column %q", common.ErrConstraintConflict, col)
		}
		if got != wantNullable {
			return fmt.Errorf("%w: column %q nullable=%v, want %v", common.ErrConstraintConflict, col, got, wantNullable)
		}
	}

	uniqueQuery :=
		`SELECT COUNT(*) FROM information_schema.table_constraints tc
		 JOIN information_schema.constraint_column_usage ccu
		   ON tc.constraint_name = ccu.constraint_name
		  AND tc.table_schema = ccu.table_schema
		 WHERE tc.table_name = 'users'
		   AND tc.constraint_type = 'UNIQUE'
		   AND ccu.column_name = 'email'
		 `

	var n int
	if err := m.db.QueryRowContext(ctx, uniqueQuery).Scan(&n); err != nil {
		return fmt.Errorf("schema check error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: email column lacks a unique constraint", common.ErrConstraintConflict)
	}

	return nil
}
