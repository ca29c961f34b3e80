package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
	"github.com/goliatone/go-tagfeed/pkg/storage"
)

// ErrPathEscapesRoot is returned when an operation targets a path outside the
// storage root.
var ErrPathEscapesRoot = errors.New("filesystem storage: path escapes root")

// NewStorage returns an interfaces.StorageProvider that writes generator
// artifacts below root. Files are replaced atomically so readers never see
// a partially written feed.
func NewStorage(root string) interfaces.StorageProvider {
	return &Storage{root: filepath.Clean(root)}
}

// Storage implements the generator artifact protocol on the local disk.
type Storage struct {
	root string
}

// Root returns the directory artifacts are written under.
func (s *Storage) Root() string {
	return s.root
}

func (s *Storage) Query(_ context.Context, query string, args ...any) (interfaces.Rows, error) {
	if query != storage.OpRead || len(args) == 0 {
		return nil, nil
	}
	full, err := s.resolve(args[0])
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data}, nil
}

func (s *Storage) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return emptyResult{}, err
	}
	switch query {
	case storage.OpEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("ensure_dir requires path")
		}
		full, err := s.resolve(args[0])
		if err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, os.MkdirAll(full, 0o755)
	case storage.OpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("write requires path and reader")
		}
		full, err := s.resolve(args[0])
		if err != nil {
			return emptyResult{}, err
		}
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("write expects io.Reader content")
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		if err := atomic.WriteFile(full, reader); err != nil {
			return emptyResult{}, fmt.Errorf("write %s: %w", full, err)
		}
		return emptyResult{rows: 1}, nil
	case storage.OpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("remove requires path")
		}
		full, err := s.resolve(args[0])
		if err != nil {
			return emptyResult{}, err
		}
		if full == s.root {
			return emptyResult{}, s.clearRoot()
		}
		if err := os.RemoveAll(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	default:
		return emptyResult{}, nil
	}
}

func (s *Storage) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&storageTx{storage: s})
}

// clearRoot empties the root directory but keeps the directory itself.
func (s *Storage) clearRoot() error {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) resolve(arg any) (string, error) {
	rel, _ := arg.(string)
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return s.root, nil
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(s.root, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}
	return full, nil
}

type storageTx struct {
	storage *Storage
}

func (tx *storageTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return tx.storage.Query(ctx, query, args...)
}

func (tx *storageTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return tx.storage.Exec(ctx, query, args...)
}

func (tx *storageTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("filesystem storage: nested transactions not supported")
}

func (tx *storageTx) Commit() error   { return nil }
func (tx *storageTx) Rollback() error { return nil }

type emptyResult struct {
	rows int64
}

func (r emptyResult) RowsAffected() (int64, error) { return r.rows, nil }
func (emptyResult) LastInsertId() (int64, error)   { return 0, nil }

type fileRows struct {
	data []byte
	read bool
}

func (r *fileRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("scan requires destination")
	}
	bytesDest, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("unsupported scan destination %T", dest[0])
	}
	*bytesDest = append((*bytesDest)[:0], r.data...)
	return nil
}

func (r *fileRows) Close() error {
	return nil
}
