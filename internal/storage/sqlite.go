package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dkharitonov/userstore/internal/common"
	migrations "github.com/dkharitonov/userstore/internal/migrations/sqlite"
	"github.com/dkharitonov/userstore/internal/repositories/users"
)

type SQLiteManager struct {
	db    *sql.DB
	users users.Repository
}

func NewSQLiteManager(dsn string) (*SQLiteManager, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return &SQLiteManager{
		db:    db,
		users: users.NewSQLiteRepository(db),
	}, nil
}

func (m *SQLiteManager) Conn() *sql.DB {
	return m.db
}

func (m *SQLiteManager) Users() users.Repository {
	return m.users
}

func (m *SQLiteManager) Close() error {
	return m.db.Close()
}

// Provision applies the embedded migrations and verifies the resulting
// table shape. See PostgresManager.Provision for the contract.
func (m *SQLiteManager) Provision(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return m.verifySchema(ctx)
}

// verifySchema inspects the users table via PRAGMA: id and email must be
// non-nullable, name nullable, and email must be covered by a unique index
// (the one SQLite creates for the UNIQUE column constraint).
func (m *SQLiteManager) verifySchema(ctx context.Context) error {
	rows, err := m.db.QueryContext(ctx, `PRAGMA table_info(users)`)
	if err != nil {
		return fmt.Errorf("schema check error: %w", err)
	}
	defer rows.Close()

	type column struct {
		notNull bool
		pk      bool
	}
	cols := map[string]column{}
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("schema check error: %w", err)
		}
		cols[name] = column{notNull: notNull != 0, pk: pk != 0}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("schema check error: %w", err)
	}

	id, ok := cols["id"]
	if !ok || !id.pk {
		return fmt.Errorf("%w: users table lacks an id primary key", common.ErrConstraintConflict)
	}
	email, ok := cols["email"]
	if !ok || !email.notNull {
		return fmt.Errorf("%w: email column missing or nullable", common.ErrConstraintConflict)
	}
	name, ok := cols["name"]
	if !ok || name.notNull {
		return fmt.Errorf("%w: name column missing or unexpectedly required", common.ErrConstraintConflict)
	}

	unique, err := m.emailHasUniqueIndex(ctx)
	if err != nil {
		return err
	}
	if !unique {
		return fmt.Errorf("%w: email column lacks a unique index", common.ErrConstraintConflict)
	}

	return nil
}

func (m *SQLiteManager) emailHasUniqueIndex(ctx context.Context) (bool, error) {
	rows, err := m.db.QueryContext(ctx, `PRAGMA index_list(users)`)
	if err != nil {
		return false, fmt.Errorf("schema check error: %w", err)
	}
	defer rows.Close()

	var uniqueIndexes []string
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return false, fmt.Errorf("schema check error: %w", err)
		}
		if unique != 0 {
			uniqueIndexes = append(uniqueIndexes, name)
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("schema check error: %w", err)
	}

	for _, idx := range uniqueIndexes {
		cols, err := m.indexColumns(ctx, idx)
		if err != nil {
			return false, err
		}
		if len(cols) == 1 && cols[0] == "email" {
			return true, nil
		}
	}
	return false, nil
}

func (m *SQLiteManager) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_info(%q)`, index))
	if err != nil {
		return nil, fmt.Errorf("schema check error: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno int
			cid   int
			name  string
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("schema check error: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema check error: %w", err)
	}
	return cols, nil
}
