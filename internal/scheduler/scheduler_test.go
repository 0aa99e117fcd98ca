package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/FeedHub/internal/cache"
	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/route"
)

type fakeAdapter struct {
	meta  route.Metadata
	items int
	err   error
	runs  atomic.Int32
	got   route.Params
}

func (f *fakeAdapter) Meta() route.Metadata {
	return f.meta
}

func (f *fakeAdapter) Run(_ context.Context, params route.Params) (*feed.Document, error) {
	f.runs.Add(1)
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	items := make([]*feed.Item, f.items)
	for i := range items {
		items[i] = &feed.Item{Title: f.meta.Name}
	}
	return feed.Assemble(feed.Channel{Title: f.meta.Name}, items), nil
}

type purgingStore struct {
	*cache.Memory
	purged atomic.Int32
}

func (p *purgingStore) Purge(context.Context) (int64, error) {
	p.purged.Add(1)
	return 3, nil
}

func TestRunOnceWarmsEveryExample(t *testing.T) {
	ok := &fakeAdapter{
		meta:  route.Metadata{Namespace: "demo", Path: "/:id", Example: "/demo/42"},
		items: 2,
	}
	bad := &fakeAdapter{
		meta: route.Metadata{Namespace: "broken", Path: "/list", Example: "/broken/list"},
		err:  errors.New("boom"),
	}
	store := &purgingStore{Memory: cache.NewMemory(time.Minute)}

	s, err := New("@every 1h", route.NewRegistry(ok, bad), store)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	results := s.RunOnce(context.Background())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Route != "/demo/42" || results[0].Err != nil || results[0].Items != 2 {
		t.Fatalf("unexpected result %+v", results[0])
	}
	if ok.got["id"] != "42" {
		t.Fatalf("params=%v, want id=42", ok.got)
	}
	if results[1].Err == nil {
		t.Fatalf("failing route should report its error")
	}
	if ok.runs.Load() != 1 || bad.runs.Load() != 1 {
		t.Fatalf("each route should run once, got %d/%d", ok.runs.Load(), bad.runs.Load())
	}
	if store.purged.Load() != 1 {
		t.Fatalf("expected one purge, got %d", store.purged.Load())
	}
}

func TestRunOnceReportsUnmatchedExample(t *testing.T) {
	a := &fakeAdapter{meta: route.Metadata{Namespace: "demo", Path: "/:id", Example: "/other/1"}}
	s, err := New("@every 1h", route.NewRegistry(a), nil)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	results := s.RunOnce(context.Background())
	if !errors.Is(results[0].Err, route.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", results[0].Err)
	}
	if a.runs.Load() != 0 {
		t.Fatalf("unmatched route should not run")
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", route.NewRegistry(), nil); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}
