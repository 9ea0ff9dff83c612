package masonry

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/observability"
)

// Spanner is implemented by items that may cover more than one column.
// Items that do not implement it span a single column unless the engine was
// built with [WithSpanFunc].
type Spanner interface {
	ColumnSpan() int
}

// =============================================================================
// State
// =============================================================================

// State is the memoized layout state of one logical grid: the caller's
// measurements plus the positions and column heights owned by the engine.
//
// A State is not safe for concurrent use. Independent grids use independent
// States and may be laid out in parallel with the same [Engine].
type State[T comparable] struct {
	Measurements *MeasurementStore[T]
	Positions    *PositionCache[T]
	Heights      *HeightsStore
}

// NewState creates a State with empty stores.
func NewState[T comparable]() *State[T] {
	return &State[T]{
		Measurements: NewMeasurementStore[T](),
		Positions:    NewPositionCache[T](),
		Heights:      NewHeightsStore(),
	}
}

// Reset clears cached positions and column heights. Measurements describe
// the items rather than the grid and are kept.
func (s *State[T]) Reset() {
	s.Positions.Reset()
	s.Heights.Reset()
}

func (s *State[T]) complete() bool {
	return s != nil && s.Measurements != nil && s.Positions != nil && s.Heights != nil
}

// =============================================================================
// Engine
// =============================================================================

// Option configures an Engine.
type Option[T comparable] func(*Engine[T])

// WithSpanFunc sets the function that reports how many columns an item
// covers. It takes precedence over the [Spanner] interface.
func WithSpanFunc[T comparable](fn func(T) int) Option[T] {
	return func(e *Engine[T]) { e.span = fn }
}

// Engine is a configured masonry layout function. It holds no per-grid
// state and is safe to share between goroutines that use distinct States.
type Engine[T comparable] struct {
	cfg    Config
	geom   Geometry
	span   func(T) int
	logger *log.Logger
}

// New validates cfg and returns an engine for it. Invalid geometry fails
// here with INVALID_CONFIGURATION, never at layout time.
func New[T comparable](cfg Config, opts ...Option[T]) (*Engine[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Justify == "" {
		cfg.Justify = JustifyStart
	}

	e := &Engine[T]{
		cfg:    cfg,
		geom:   ResolveGeometry(cfg),
		logger: cfg.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e, nil
}

// Config returns the engine's configuration with defaults applied.
func (e *Engine[T]) Config() Config { return e.cfg }

// Geometry returns the resolved column grid.
func (e *Engine[T]) Geometry() Geometry { return e.geom }

// Resize returns an engine for a new container width. When the width
// differs, s is reset: its heights and positions belong to the old geometry.
func (e *Engine[T]) Resize(s *State[T], width float64) (*Engine[T], error) {
	if width == e.cfg.Width {
		return e, nil
	}
	cfg := e.cfg
	cfg.Width = width
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	next := &Engine[T]{cfg: cfg, geom: ResolveGeometry(cfg), span: e.span, logger: e.logger}
	if s.complete() {
		s.Reset()
	}
	e.logger.Debug("grid resized", "width", width, "columns", next.geom.ColumnCount)
	return next, nil
}

// Bind returns a layout function over s, the shape callers that only ever
// lay out one grid want.
func (e *Engine[T]) Bind(s *State[T]) func(items []T) ([]Position, error) {
	return func(items []T) ([]Position, error) {
		return e.Layout(s, items)
	}
}

// pending is a new item waiting to be placed.
type pending[T comparable] struct {
	item   T
	height float64
	span   int
}

// Layout positions items, the full sequence of the grid so far: previously
// laid out items followed by any new ones. It returns one position per item
// in input order.
//
// Items already in s.Positions keep their cached position and do not touch
// the column heights. With center justification the inset is recomputed
// from the occupied columns on every call, so earlier items may shift
// horizontally; tops never change. New items are packed in input order: single-column
// items into the shortest column, multi-column items into the window of
// adjacent columns that leaves the least whitespace. Every new item needs a
// measurement; if any is missing, Layout fails before changing s.
func (e *Engine[T]) Layout(s *State[T], items []T) ([]Position, error) {
	if len(items) == 0 {
		return []Position{}, nil
	}
	if !s.complete() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout state is incomplete; create it with NewState")
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(e.geom.ColumnCount, len(items))
	start := time.Now()

	placed, cached, err := e.layout(s, items)
	hooks.OnLayoutComplete(placed, cached, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	inset := e.inset(s.Heights.Snapshot().Occupied())
	out := make([]Position, len(items))
	for i, item := range items {
		pos, _ := s.Positions.Get(item)
		pos.Left = math.Floor(inset + pos.Left)
		out[i] = pos
	}
	return out, nil
}

func (e *Engine[T]) layout(s *State[T], items []T) (placed, cached int, err error) {
	seen := make(map[T]struct{}, len(items))
	var queue []pending[T]

	for i, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		span := e.spanOf(item)

		if pos, ok := s.Positions.Get(item); ok {
			if want := e.geom.SpanWidth(span); pos.Width != want {
				return 0, 0, errors.New(errors.ErrCodeCacheInconsistency,
					"item %d is cached %v wide but spans %d columns (%v wide); reset the grid after a geometry change",
					i, pos.Width, span, want)
			}
			cached++
			continue
		}

		height, ok := s.Measurements.Get(item)
		if !ok {
			return 0, 0, errors.New(errors.ErrCodeMissingMeasurement, "item %d has no measurement", i)
		}
		if !finite(height) || height < 0 {
			return 0, 0, errors.New(errors.ErrCodeMissingMeasurement, "item %d has invalid measurement %v", i, height)
		}
		queue = append(queue, pending[T]{item: item, height: height, span: span})
	}

	if total := s.Positions.Len(); cached < total {
		return 0, 0, errors.New(errors.ErrCodeCacheInconsistency,
			"layout requested %d of %d cached items; item sequences may only grow", cached, total)
	}
	if len(queue) == 0 {
		return 0, cached, nil
	}
	if cached > 0 && s.Heights.Len() == 0 {
		return 0, 0, errors.New(errors.ErrCodeCacheInconsistency,
			"%d items are cached but no column heights are tracked", cached)
	}
	if err := s.Heights.init(e.geom.ColumnCount); err != nil {
		return 0, 0, err
	}

	var deferred []pending[T]
	for _, p := range queue {
		if p.span == 1 {
			e.placeSingle(s, p)
			continue
		}
		if !e.placeModule(s, p, false) {
			deferred = append(deferred, p)
		}
	}
	for _, p := range deferred {
		e.placeModule(s, p, true)
	}

	e.logger.Debug("laid out batch",
		"placed", len(queue),
		"cached", cached,
		"deferred", len(deferred),
		"columns", e.geom.ColumnCount)
	return len(queue), cached, nil
}

func (e *Engine[T]) placeSingle(s *State[T], p pending[T]) {
	col := s.Heights.heights.Shortest()
	top := s.Heights.Place(col, p.height, e.geom.Gutter)
	s.Positions.Set(p.item, e.position(col, 1, top, p.height))
}

// placeModule places a multi-column item at its best window and reports
// whether it did. Unless force is set, a window leaving more whitespace than
// the configured threshold is refused.
func (e *Engine[T]) placeModule(s *State[T], p pending[T], force bool) bool {
	col, _, whitespace := s.Heights.Snapshot().BestWindow(p.span)

	if limit := e.cfg.WhitespaceThreshold; !force && limit != nil && whitespace > *limit {
		e.logger.Debug("deferring module", "span", p.span, "whitespace", whitespace, "threshold", *limit)
		observability.Layout().OnModuleDeferred(p.span, whitespace)
		return false
	}

	top, _ := s.Heights.PlaceWindow(col, p.span, p.height, e.geom.Gutter)
	s.Positions.Set(p.item, e.position(col, p.span, top, p.height))
	return true
}

// position is relative to the grid's left edge; Layout adds the inset.
func (e *Engine[T]) position(col, span int, top, height float64) Position {
	return Position{
		Top:    top,
		Left:   e.geom.ColumnOffset(col),
		Width:  e.geom.SpanWidth(span),
		Height: height,
	}
}

// inset is the left offset applied to every column. Start justification
// centers the whole capacity; center justification centers the columns that
// hold at least one item.
func (e *Engine[T]) inset(occupied int) float64 {
	if e.cfg.Justify == JustifyCenter {
		return e.geom.Inset(e.cfg.Width, occupied)
	}
	return e.geom.Inset(e.cfg.Width, e.geom.ColumnCount)
}

func (e *Engine[T]) spanOf(item T) int {
	span := 1
	if e.span != nil {
		span = e.span(item)
	} else if sp, ok := any(item).(Spanner); ok {
		span = sp.ColumnSpan()
	}
	return e.geom.ClampSpan(span)
}
