// Package sqlite stores projects in SQLite through database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/serialization"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Store implements project.Store for SQLite.
type Store struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
	now        func() time.Time
}

// Open opens the database at dsn and creates the schema.
func Open(ctx context.Context, dsn string, serializer *serialization.Serializer) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	s := NewStore(db, serializer)
	if err := s.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an open database. A nil serializer uses the default.
func NewStore(db *sql.DB, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &Store{
		db:         db,
		serializer: serializer,
		tableName:  "projects",
		now:        time.Now,
	}
}

// WithTableName overrides the table name. Names other than letters, digits
// and underscores are ignored.
func (s *Store) WithTableName(name string) *Store {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

// WithClock overrides the time source used for record timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// CreateTables creates the projects table and its indexes.
func (s *Store) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			revision INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			document BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s (name);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_updated_at ON %[1]s (updated_at);
	`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sqlite: create tables: %w", err)
	}
	return nil
}

// Save upserts r. The stored revision is incremented on every save.
func (s *Store) Save(ctx context.Context, r *project.Record) error {
	if r == nil {
		return project.ErrInvalidProjectID
	}
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := s.serializer.Marshal(r.Document)
	if err != nil {
		return fmt.Errorf("%w: %v", project.ErrSaveFailed, err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (id, name, description, revision, created_at, updated_at, document)
		VALUES (?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			revision = %[1]s.revision + 1,
			updated_at = excluded.updated_at,
			document = excluded.document
		RETURNING revision, created_at
	`, s.tableName)

	var created int64
	err = s.db.QueryRowContext(ctx, query,
		r.ID, r.Name, r.Description, now.UnixMilli(), now.UnixMilli(), data,
	).Scan(&r.Revision, &created)
	if err != nil {
		return fmt.Errorf("%w: %v", project.ErrSaveFailed, err)
	}
	r.CreatedAt = fromMillis(created)
	r.UpdatedAt = now
	return nil
}

// Load returns the record stored under id.
func (s *Store) Load(ctx context.Context, id string) (*project.Record, error) {
	if id == "" {
		return nil, project.ErrInvalidProjectID
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, columns, s.tableName)
	r, err := s.scan(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, project.ErrProjectNotFound
	}
	return r, err
}

// List returns matching records, most recently updated first.
func (s *Store) List(ctx context.Context, filter project.Filter) ([]*project.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	query, args := s.buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", project.ErrLoadFailed, err)
	}
	defer rows.Close()

	out := []*project.Record{}
	for rows.Next() {
		r, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", project.ErrLoadFailed, err)
	}
	return out, nil
}

// Delete removes the record stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return project.ErrInvalidProjectID
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: %v", project.ErrDeleteFailed, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", project.ErrDeleteFailed, err)
	}
	if n == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const columns = "id, name, description, revision, created_at, updated_at, document"

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (*project.Record, error) {
	var (
		r                project.Record
		created, updated int64
		data             []byte
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Revision, &created, &updated, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", project.ErrLoadFailed, err)
	}
	r.CreatedAt = fromMillis(created)
	r.UpdatedAt = fromMillis(updated)

	var doc project.Document
	if err := s.serializer.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", project.ErrLoadFailed, r.ID, err)
	}
	r.Document = &doc
	return &r, nil
}

func (s *Store) buildListQuery(filter project.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Name != "" {
		where = append(where, "name = ?")
		args = append(args, filter.Name)
	}
	if filter.Since != nil {
		where = append(where, "updated_at >= ?")
		args = append(args, filter.Since.UnixMilli())
	}
	if filter.Before != nil {
		where = append(where, "updated_at < ?")
		args = append(args, filter.Before.UnixMilli())
	}

	query := fmt.Sprintf("SELECT %s FROM %s", columns, s.tableName)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id ASC"

	// SQLite only accepts OFFSET after LIMIT; -1 means unbounded
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit == 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}
	return query, args
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
