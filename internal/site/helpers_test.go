package site_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-tagfeed/internal/markdown"
	"github.com/goliatone/go-tagfeed/internal/site"
	"github.com/goliatone/go-tagfeed/internal/templates"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
	"github.com/goliatone/go-tagfeed/pkg/storage"
)

var fixedNow = time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)

type recordingStorage struct {
	mu    sync.Mutex
	files map[string]string
	ops   []string
	args  map[string][]any
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{files: map[string]string{}, args: map[string][]any{}}
}

func (r *recordingStorage) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return nil, nil
}

func (r *recordingStorage) Exec(_ context.Context, query string, args ...any) (interfaces.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, query)
	if query == storage.OpWrite {
		path := args[0].(string)
		data, err := io.ReadAll(args[1].(io.Reader))
		if err != nil {
			return nil, err
		}
		r.files[path] = string(data)
		r.args[path] = args
	}
	return recordingResult{}, nil
}

func (r *recordingStorage) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return nil
}

func (r *recordingStorage) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.files))
	for path := range r.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

type recordingResult struct{}

func (recordingResult) RowsAffected() (int64, error) { return 1, nil }
func (recordingResult) LastInsertId() (int64, error) { return 0, nil }

func newTestSite(t *testing.T, source fstest.MapFS, cfg site.Config, opts ...site.Option) (*site.Site, *recordingStorage) {
	t.Helper()
	store := newRecordingStorage()
	opts = append([]site.Option{site.WithClock(func() time.Time { return fixedNow })}, opts...)
	s := site.New(cfg, site.Dependencies{
		Source:   source,
		Renderer: templates.NewRenderer(source, ""),
		Storage:  store,
		Parser:   markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
	}, opts...)
	return s, store
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content), ModTime: fixedNow}
}
