// Package postgres stores projects in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/serialization"
)

// Store implements project.Store for PostgreSQL.
type Store struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
	now        func() time.Time
}

// NewStore wraps a pool. A nil serializer uses the default.
func NewStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &Store{
		pool:       pool,
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
	for _, c := range s {
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
			id VARCHAR(255) PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			revision INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			document BYTEA NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_name ON %[1]s (name);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_updated_at ON %[1]s (updated_at);
	`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("postgres: create tables: %w", err)
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

	// timestamptz keeps microseconds
	now := s.now().UTC().Truncate(time.Microsecond)
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (id, name, description, revision, created_at, updated_at, document)
		VALUES ($1, $2, $3, 1, $4, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			revision = %[1]s.revision + 1,
			updated_at = EXCLUDED.updated_at,
			document = EXCLUDED.document
		RETURNING revision, created_at
	`, s.tableName)

	var created time.Time
	if err := s.pool.QueryRow(ctx, query, r.ID, r.Name, r.Description, now, data).Scan(&r.Revision, &created); err != nil {
		return fmt.Errorf("%w: %v", project.ErrSaveFailed, err)
	}
	r.CreatedAt = created.UTC()
	r.UpdatedAt = now
	return nil
}

// Load returns the record stored under id.
func (s *Store) Load(ctx context.Context, id string) (*project.Record, error) {
	if id == "" {
		return nil, project.ErrInvalidProjectID
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columns, s.tableName)
	r, err := s.scan(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
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
	rows, err := s.pool.Query(ctx, query, args...)
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
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: %v", project.ErrDeleteFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

const columns = "id, name, description, revision, created_at, updated_at, document"

func (s *Store) scan(row pgx.Row) (*project.Record, error) {
	var (
		r    project.Record
		data []byte
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Revision, &r.CreatedAt, &r.UpdatedAt, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", project.ErrLoadFailed, err)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()

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
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Name != "" {
		where = append(where, "name = "+arg(filter.Name))
	}
	if filter.Since != nil {
		where = append(where, "updated_at >= "+arg(*filter.Since))
	}
	if filter.Before != nil {
		where = append(where, "updated_at < "+arg(*filter.Before))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", columns, s.tableName)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}
	return query, args
}
