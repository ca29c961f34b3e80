package storage

import "context"

// Provider encapsulates the operations the generator issues against an
// artifact backend. Operations are addressed by name (for example
// "generator.write") with positional arguments.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}

// Operation names understood by artifact providers. Write takes the
// positional arguments (path, io.Reader, size, category, content type,
// checksum, metadata); the others take a single path.
const (
	OpEnsureDir = "generator.ensure_dir"
	OpWrite     = "generator.write"
	OpRead      = "generator.read"
	OpRemove    = "generator.remove"
)
