package resource_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/resource-lab/internal/resource"
	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
	"github.com/JaimeStill/resource-lab/pkg/store/memstore"
)

const missingID = "000000000000000000000000"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// spyCollection counts every store call except the pure id-format check.
type spyCollection struct {
	store.Collection
	calls atomic.Int32
}

func (s *spyCollection) Find(ctx context.Context, f query.Filter, opts store.FindOptions) ([]store.Entity, error) {
	s.calls.Add(1)
	return s.Collection.Find(ctx, f, opts)
}

func (s *spyCollection) Count(ctx context.Context, f query.Filter) (int, error) {
	s.calls.Add(1)
	return s.Collection.Count(ctx, f)
}

func (s *spyCollection) FindByID(ctx context.Context, id string) (store.Entity, error) {
	s.calls.Add(1)
	return s.Collection.FindByID(ctx, id)
}

func (s *spyCollection) Create(ctx context.Context, payload store.Entity) (store.Entity, error) {
	s.calls.Add(1)
	return s.Collection.Create(ctx, payload)
}

func (s *spyCollection) FindByIDAndUpdate(ctx context.Context, id string, payload store.Entity) (store.Entity, error) {
	s.calls.Add(1)
	return s.Collection.FindByIDAndUpdate(ctx, id, payload)
}

func (s *spyCollection) FindByIDAndDelete(ctx context.Context, id string) (store.Entity, error) {
	s.calls.Add(1)
	return s.Collection.FindByIDAndDelete(ctx, id)
}

// fixture holds a controller over a spied in-memory collection.
type fixture struct {
	cfg  *resource.Config
	coll *spyCollection
	ctrl *resource.Controller
}

func newFixture(t *testing.T, cfg resource.Config) *fixture {
	t.Helper()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	sys := memstore.NewWithClock(testLogger(), tickingClock())
	coll := &spyCollection{Collection: sys.Collection(cfg.Collection, cfg.Schema())}

	return &fixture{
		cfg:  &cfg,
		coll: coll,
		ctrl: resource.NewController(&cfg, coll, testLogger()),
	}
}

func (f *fixture) seed(t *testing.T, entities ...store.Entity) []store.Entity {
	t.Helper()
	out := make([]store.Entity, 0, len(entities))
	for _, e := range entities {
		created, err := f.coll.Collection.Create(context.Background(), e)
		if err != nil {
			t.Fatalf("seed Create() failed: %v", err)
		}
		out = append(out, created)
	}
	return out
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	n, err := f.coll.Collection.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	return n
}

func errorKey(t *testing.T, resp resource.Response) string {
	t.Helper()
	e, ok := resp.Body.(*resource.Error)
	if !ok {
		t.Fatalf("Body = %T (%v), want *resource.Error", resp.Body, resp.Body)
	}
	return e.Key()
}
