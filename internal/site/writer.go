package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/goliatone/go-tagfeed/pkg/interfaces"
	"github.com/goliatone/go-tagfeed/pkg/storage"
)

// Category labels an artifact for storage providers and build reports.
type Category string

const (
	CategoryPage    Category = "page"
	CategoryPost    Category = "post"
	CategoryFeed    Category = "feed"
	CategoryAsset   Category = "asset"
	CategorySitemap Category = "sitemap"
)

// WriteRequest describes a file write routed through a Writer.
type WriteRequest struct {
	Path        string
	Content     []byte
	Category    Category
	ContentType string
	Metadata    map[string]string
}

// Writer persists build artifacts relative to the destination root.
type Writer interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
}

// NewWriter adapts a storage provider to the Writer contract. A nil provider
// yields a writer that discards everything.
func NewWriter(provider interfaces.StorageProvider) Writer {
	if provider == nil {
		return noopWriter{}
	}
	return &storageWriter{storage: provider}
}

type storageWriter struct {
	storage interfaces.StorageProvider
}

func (w *storageWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	_, err := w.storage.Exec(ctx, storage.OpEnsureDir, path)
	return err
}

func (w *storageWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if strings.TrimSpace(req.Path) == "" {
		return errWritePath
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	args := []any{
		req.Path,
		strings.NewReader(string(req.Content)),
		int64(len(req.Content)),
		string(req.Category),
		req.ContentType,
		checksum(req.Content),
		req.Metadata,
	}
	_, err := w.storage.Exec(ctx, storage.OpWrite, args...)
	return err
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, WriteRequest) error { return nil }

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
