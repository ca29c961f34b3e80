package noop

import (
	"context"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// Storage returns a storage provider that accepts every operation and
// persists nothing. Dry-run builds write through it.
func Storage() interfaces.StorageProvider {
	return storageAdapter{}
}

type storageAdapter struct{}

func (storageAdapter) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return nil, nil
}

func (storageAdapter) Exec(context.Context, string, ...any) (interfaces.Result, error) {
	return result{}, nil
}

func (storageAdapter) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(tx{})
}

type tx struct{ storageAdapter }

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }

type result struct{}

func (result) RowsAffected() (int64, error) { return 0, nil }
func (result) LastInsertId() (int64, error) { return 0, nil }
