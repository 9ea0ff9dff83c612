package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/session"
)

// Runner runs layouts with caching and session persistence.
//
// A Runner holds no per-grid state; it is safe for concurrent use.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Sessions *session.Store
}

// NewRunner creates a runner. A nil cache means a NullCache: nothing is
// cached and sessions are never stored, so every session lookup fails with
// SESSION_NOT_FOUND. A nil keyer means the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Sessions: session.NewStore(c, keyer, session.DefaultTTL),
	}
}

// Layout lays out every batch of doc in turn on an empty grid. Results are
// cached by document content.
func (r *Runner) Layout(ctx context.Context, doc *io.Document) (*Result, error) {
	return r.LayoutBatches(ctx, doc.Grid, doc.Batches)
}

// LayoutBatches is Layout for a configuration and batches that did not come
// from a document file.
func (r *Runner) LayoutBatches(ctx context.Context, cfg masonry.Config, batches []io.Batch) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateBatches(batches); err != nil {
		return nil, err
	}

	docHash, err := request{Grid: cfg, Batches: batches}.hash()
	if err != nil {
		return nil, err
	}
	key := r.Keyer.LayoutKey(docHash, cache.LayoutKeyOpts{Width: cfg.Width, Justify: string(cfg.Justify)})
	hooks := observability.Cache()

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if l, err := io.ReadLayout(bytes.NewReader(data)); err == nil {
			hooks.OnCacheHit(ctx, key)
			r.Logger.Debug("layout cache hit", "key", key)
			return &Result{
				Layout:   l,
				CacheHit: true,
				Stats: Stats{
					Batches: len(batches),
					Items:   len(l.Positions),
					Columns: l.ColumnCount,
					Height:  l.Height(),
				},
			}, nil
		}
	} else if err != nil {
		r.Logger.Warn("layout cache unavailable", "err", err)
	}
	hooks.OnCacheMiss(ctx, key)

	res, err := r.run(cfg, masonry.NewState[string](), batches)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := io.WriteJSON(res.Layout, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLLayout); err != nil {
			r.Logger.Warn("cache layout", "err", err)
		} else {
			hooks.OnCacheSet(ctx, key, buf.Len())
		}
	}
	return res, nil
}

// CreateSession stores a new empty session for cfg.
func (r *Runner) CreateSession(ctx context.Context, cfg masonry.Config) (*session.Session, error) {
	sess, err := session.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := r.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	r.Logger.Debug("created session", "id", sess.ID, "width", cfg.Width)
	return sess, nil
}

// Session loads a session.
func (r *Runner) Session(ctx context.Context, id string) (*session.Session, error) {
	return r.Sessions.Get(ctx, id)
}

// LayoutSession lays out batches on the grid stored in session id and saves
// the new state. batches together form the full item sequence of the grid:
// items placed by earlier calls must come first, in their original order.
func (r *Runner) LayoutSession(ctx context.Context, id string, batches []io.Batch) (*Result, error) {
	if err := validateBatches(batches); err != nil {
		return nil, err
	}

	var res *Result
	_, err := r.Sessions.Update(ctx, id, func(sess *session.Session) error {
		st := sess.State()
		var err error
		res, err = r.run(sess.Grid, st, batches)
		if err != nil {
			return err
		}
		sess.Capture(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.SessionID = id
	return res, nil
}

// ResetSession forgets every item placed in session id.
func (r *Runner) ResetSession(ctx context.Context, id string) (*session.Session, error) {
	return r.Sessions.Update(ctx, id, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

// DeleteSession removes session id.
func (r *Runner) DeleteSession(ctx context.Context, id string) error {
	return r.Sessions.Delete(ctx, id)
}

// run feeds batches to an engine for cfg one cumulative prefix at a time,
// starting with the first prefix that reaches past the items st already
// holds.
func (r *Runner) run(cfg masonry.Config, st *masonry.State[string], batches []io.Batch) (*Result, error) {
	ids, heights, spans, ends := sequence(batches)
	cfg.Logger = r.Logger

	e, err := masonry.New(cfg, masonry.WithSpanFunc(func(id string) int { return spans[id] }))
	if err != nil {
		return nil, err
	}
	for id, h := range heights {
		st.Measurements.Set(id, h)
	}

	start := time.Now()
	before := st.Positions.Len()
	positions := []masonry.Position{}
	for i, end := range ends {
		// Batches a restored session already holds are laid out again only
		// as part of a longer prefix.
		if end < before && i < len(ends)-1 {
			continue
		}
		positions, err = e.Layout(st, ids[:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
	}

	l := io.NewLayout(e.Config(), e.Geometry(), ids, positions, st)
	res := &Result{
		Layout: l,
		Stats: Stats{
			Batches:    len(batches),
			Items:      len(ids),
			Placed:     st.Positions.Len() - before,
			Columns:    l.ColumnCount,
			Height:     l.Height(),
			LayoutTime: time.Since(start),
		},
	}
	r.Logger.Info("laid out grid",
		"items", res.Stats.Items,
		"placed", res.Stats.Placed,
		"columns", res.Stats.Columns,
		"duration", res.Stats.LayoutTime)
	return res, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
