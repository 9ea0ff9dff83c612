package session

import (
	"context"
	stderrors "errors"
	"reflect"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/masonry"
)

func testConfig() masonry.Config {
	cfg := masonry.DefaultConfig()
	cfg.Width = 736
	return cfg
}

func newFileStore(t *testing.T) *Store {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(c, nil, DefaultTTL)
}

func TestNew(t *testing.T) {
	sess, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q is not a uuid", sess.ID)
	}
	if len(sess.Placed) != 0 || len(sess.Heights) != 0 {
		t.Error("new session should be empty")
	}

	bad := testConfig()
	bad.ColumnWidth = 0
	if _, err := New(bad); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("New(bad) err = %v", err)
	}
}

func TestCaptureAndState(t *testing.T) {
	sess, _ := New(testConfig())
	e, err := masonry.New[string](sess.Grid)
	if err != nil {
		t.Fatal(err)
	}

	st := sess.State()
	st.Measurements.Set("a", 100)
	st.Measurements.Set("b", 120)
	first, err := e.Layout(st, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	sess.Capture(st)

	if got := []string{sess.Placed[0].ID, sess.Placed[1].ID}; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("placed = %v", got)
	}
	if sess.Height() != 134 {
		t.Errorf("Height() = %v, want 134", sess.Height())
	}

	// A restored state accepts the grown sequence and keeps earlier positions.
	restored := sess.State()
	restored.Measurements.Set("c", 80)
	all, err := e.Layout(restored, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Layout on restored state: %v", err)
	}
	if all[0] != first[0] || all[1] != first[1] {
		t.Error("restored state moved cached items")
	}
	if all[2].Left != 500 {
		t.Errorf("new item left = %v, want 500", all[2].Left)
	}

	sess.Reset()
	if len(sess.State().Positions.Keys()) != 0 || sess.State().Heights.Len() != 0 {
		t.Error("Reset left state behind")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)

	sess, _ := New(testConfig())
	sess.Placed = []Placement{{ID: "a", Position: masonry.Position{Width: 236, Height: 10}}}
	sess.Heights = []float64{24, 0, 0}

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !reflect.DeepEqual(got.Placed, sess.Placed) || !reflect.DeepEqual(got.Heights, sess.Heights) {
		t.Errorf("Get = %+v, want %+v", got, sess)
	}
	if got.Grid.Width != 736 {
		t.Errorf("grid width = %v", got.Grid.Width)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete err = %v, want ErrNotFound", err)
	}
}

func TestStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore(cache.NewNullCache(), nil, 0)

	if _, err := store.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidSession) {
		t.Errorf("Get err = %v", err)
	}
	if err := store.Delete(ctx, ""); !errors.Is(err, errors.ErrCodeInvalidSession) {
		t.Errorf("Delete err = %v", err)
	}
	if err := store.Save(ctx, &Session{ID: "x"}); !errors.Is(err, errors.ErrCodeInvalidSession) {
		t.Errorf("Save err = %v", err)
	}
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)

	sess, _ := New(testConfig())
	if err := store.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}

	boom := stderrors.New("boom")
	if _, err := store.Update(ctx, sess.ID, func(s *Session) error {
		s.Heights = []float64{1, 2, 3}
		return boom
	}); !stderrors.Is(err, boom) {
		t.Fatalf("Update err = %v, want boom", err)
	}
	if got, _ := store.Get(ctx, sess.ID); len(got.Heights) != 0 {
		t.Error("failed update was saved")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, sess.ID, func(s *Session) error {
				s.Placed = append(s.Placed, Placement{ID: uuid.NewString()})
				return nil
			})
			if err != nil {
				t.Errorf("Update error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Placed) != 8 {
		t.Errorf("placed = %d, want 8 (lost updates)", len(got.Placed))
	}

	missing := uuid.NewString()
	if _, err := store.Update(ctx, missing, func(*Session) error { return nil }); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Update(missing) err = %v", err)
	}
}

func TestStoreUpdateReleasesLocks(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		sess, _ := New(testConfig())
		if err := store.Save(ctx, sess); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, sess.ID)
	}
	ids = append(ids, uuid.NewString())

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Update(ctx, id, func(s *Session) error {
					s.Heights = append(s.Heights, 1)
					return nil
				})
			}()
		}
	}
	wg.Wait()

	for _, id := range ids[:3] {
		if err := store.Delete(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if n := len(store.locks); n != 0 {
		t.Errorf("store holds %d session locks after all updates finished", n)
	}
}
