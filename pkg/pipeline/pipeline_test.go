package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	mio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/observability"
)

func gridConfig() masonry.Config {
	cfg := masonry.DefaultConfig()
	cfg.Width = 1200
	cfg.ColumnWidth = 240
	cfg.MinColumns = 3
	return cfg
}

// feedBatches returns ten items of heights 200..209 followed by five of
// 210..214, the fourth of which spans two columns.
func feedBatches() []mio.Batch {
	var first, second mio.Batch
	for i := 0; i < 10; i++ {
		first.Items = append(first.Items, mio.Item{ID: fmt.Sprintf("p%d", i), Height: float64(200 + i)})
	}
	for i := 10; i < 15; i++ {
		it := mio.Item{ID: fmt.Sprintf("p%d", i), Height: float64(200 + i)}
		if i == 13 {
			it.Span = 2
		}
		second.Items = append(second.Items, it)
	}
	return []mio.Batch{first, second}
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(io.Discard))
	t.Cleanup(func() { r.Close() })
	return r
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set int
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestLayoutDocument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newRunner(t)
	doc := &mio.Document{Grid: gridConfig(), Batches: feedBatches()}

	res, err := r.Layout(ctx, doc)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if res.CacheHit {
		t.Error("first run should miss the cache")
	}
	if res.Stats.Items != 15 || res.Stats.Placed != 15 || res.Stats.Columns != 4 {
		t.Errorf("stats = %+v", res.Stats)
	}

	module := res.Layout.Positions[13]
	if want := (masonry.Position{Top: 660, Left: 353, Width: 494, Height: 213}); module.ID != "p13" || module.Position != want {
		t.Errorf("module = %+v, want p13 at %+v", module, want)
	}
	if res.Stats.Height != 891 {
		t.Errorf("height = %v, want 891", res.Stats.Height)
	}

	again, err := r.Layout(ctx, doc)
	if err != nil {
		t.Fatalf("second Layout error: %v", err)
	}
	if !again.CacheHit {
		t.Error("second run should hit the cache")
	}
	if again.Layout.Positions[13] != module {
		t.Errorf("cached module = %+v, want %+v", again.Layout.Positions[13], module)
	}

	if hooks.misses != 1 || hooks.hits != 1 || hooks.set != 1 {
		t.Errorf("hooks = %d misses, %d hits, %d sets", hooks.misses, hooks.hits, hooks.set)
	}
}

func TestLayoutWithoutCache(t *testing.T) {
	r := NewRunner(nil, nil, log.New(io.Discard))
	doc := &mio.Document{Grid: gridConfig(), Batches: feedBatches()}

	for i := 0; i < 2; i++ {
		res, err := r.Layout(context.Background(), doc)
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheHit {
			t.Errorf("run %d hit a null cache", i)
		}
	}
}

func TestLayoutBatchesErrors(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	bad := gridConfig()
	bad.MinColumns = 0
	if _, err := r.LayoutBatches(ctx, bad, feedBatches()); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("bad config err = %v", err)
	}

	batches := []mio.Batch{{Items: []mio.Item{{ID: "a", Height: -5}}}}
	if _, err := r.LayoutBatches(ctx, gridConfig(), batches); !errors.Is(err, errors.ErrCodeInvalidItem) {
		t.Errorf("bad item err = %v", err)
	}
}

func TestSessionRerunWithMoreBatches(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	batch := func(id string) mio.Batch {
		return mio.Batch{Items: []mio.Item{{ID: id, Height: 100}}}
	}

	sess, err := r.CreateSession(ctx, gridConfig())
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	first, err := r.LayoutSession(ctx, sess.ID, []mio.Batch{batch("a"), batch("b")})
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if first.Stats.Placed != 2 {
		t.Errorf("first run placed %d, want 2", first.Stats.Placed)
	}

	second, err := r.LayoutSession(ctx, sess.ID, []mio.Batch{batch("a"), batch("b"), batch("c")})
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if second.Stats.Placed != 1 {
		t.Errorf("second run placed %d, want 1", second.Stats.Placed)
	}
	if len(second.Layout.Positions) != 3 {
		t.Fatalf("second run returned %d positions, want 3", len(second.Layout.Positions))
	}
	for i, p := range first.Layout.Positions {
		if second.Layout.Positions[i] != p {
			t.Errorf("item %s moved between runs", p.ID)
		}
	}

	// Re-running the same batches places nothing.
	third, err := r.LayoutSession(ctx, sess.ID, []mio.Batch{batch("a"), batch("b"), batch("c")})
	if err != nil {
		t.Fatalf("third run error: %v", err)
	}
	if third.Stats.Placed != 0 {
		t.Errorf("third run placed %d, want 0", third.Stats.Placed)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	batches := feedBatches()

	sess, err := r.CreateSession(ctx, gridConfig())
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	first, err := r.LayoutSession(ctx, sess.ID, batches[:1])
	if err != nil {
		t.Fatalf("LayoutSession error: %v", err)
	}
	if first.Stats.Placed != 10 || first.SessionID != sess.ID {
		t.Errorf("first run = %+v", first.Stats)
	}

	second, err := r.LayoutSession(ctx, sess.ID, batches)
	if err != nil {
		t.Fatalf("LayoutSession error: %v", err)
	}
	if second.Stats.Placed != 5 {
		t.Errorf("second run placed %d, want 5", second.Stats.Placed)
	}
	for i, p := range first.Layout.Positions {
		if second.Layout.Positions[i] != p {
			t.Fatalf("item %s moved between calls", p.ID)
		}
	}
	if want := (masonry.Position{Top: 660, Left: 353, Width: 494, Height: 213}); second.Layout.Positions[13].Position != want {
		t.Errorf("module = %+v, want %+v", second.Layout.Positions[13], want)
	}

	// Dropping the first batch shrinks the sequence.
	if _, err := r.LayoutSession(ctx, sess.ID, batches[1:]); !errors.Is(err, errors.ErrCodeCacheInconsistency) {
		t.Errorf("shrunk sequence err = %v", err)
	}
	stored, err := r.Session(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Placed) != 15 {
		t.Errorf("failed run changed the session: %d placed", len(stored.Placed))
	}
	if stored.Placed[14].ID != "p14" {
		t.Errorf("placement order ends with %s, want p14", stored.Placed[14].ID)
	}

	reset, err := r.ResetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ResetSession error: %v", err)
	}
	if len(reset.Placed) != 0 {
		t.Error("reset session still has items")
	}

	if err := r.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession error: %v", err)
	}
	if _, err := r.Session(ctx, sess.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("deleted session err = %v", err)
	}
}

func TestSessionSpanChangeLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	sess, _ := r.CreateSession(ctx, gridConfig())

	if _, err := r.LayoutSession(ctx, sess.ID, feedBatches()[:1]); err != nil {
		t.Fatal(err)
	}

	// Changing the span of a placed item no longer matches its cached width.
	batches := feedBatches()
	batches[0].Items[0].Span = 2
	if _, err := r.LayoutSession(ctx, sess.ID, batches); !errors.Is(err, errors.ErrCodeCacheInconsistency) {
		t.Errorf("err = %v", err)
	}
	stored, _ := r.Session(ctx, sess.ID)
	if len(stored.Placed) != 10 {
		t.Errorf("placed = %d, want 10", len(stored.Placed))
	}
}
