package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/groblegark/loom/internal/compiler"
)

// Postgres is an Executor backed by a PostgreSQL connection. A Postgres
// session is bound to a single database, so relations are addressed by
// schema and name; the database part of a relation only resolves when it
// names the connected database.
type Postgres struct {
	db *sql.DB
}

// Compile-time check that Postgres implements Executor.
var _ Executor = (*Postgres)(nil)

// Open connects to the PostgreSQL database at the given URL and configures
// the connection pool.
func Open(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection, used by tests.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) EnsureSchema(ctx context.Context, schema string) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", schema))
	return err
}

// CreateView drops and recreates the view. CREATE OR REPLACE cannot change
// a view's column set, and fixture reruns may do exactly that.
func (p *Postgres) CreateView(ctx context.Context, rel compiler.Relation, query string) error {
	target := rel.SchemaQualified()
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf("DROP VIEW IF EXISTS %s CASCADE", target)); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, fmt.Sprintf("CREATE VIEW %s AS %s", target, query))
	return err
}

func (p *Postgres) CreateTable(ctx context.Context, rel compiler.Relation, query string) error {
	target := rel.SchemaQualified()
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", target)); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s AS %s", target, query))
	return err
}

func (p *Postgres) RowCount(ctx context.Context, rel compiler.Relation) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", rel.SchemaQualified())).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}
