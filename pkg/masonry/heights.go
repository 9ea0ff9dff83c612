package masonry

import (
	"github.com/matzehuels/masonry/pkg/errors"
)

// Columns is a copy of per-column heights, index 0 leftmost. The engine
// evaluates candidate placements on a Columns snapshot and only commits the
// chosen one to the HeightsStore.
type Columns []float64

// Shortest returns the index of the lowest column, leftmost on ties.
func (c Columns) Shortest() int {
	best := 0
	for i := 1; i < len(c); i++ {
		if c[i] < c[best] {
			best = i
		}
	}
	return best
}

// Tallest returns the height of the highest column.
func (c Columns) Tallest() float64 {
	var tallest float64
	for _, h := range c {
		if h > tallest {
			tallest = h
		}
	}
	return tallest
}

// Occupied returns the number of columns holding at least one item.
func (c Columns) Occupied() int {
	n := 0
	for _, h := range c {
		if h > 0 {
			n++
		}
	}
	return n
}

// Window returns the top an item would get across columns
// [start, start+span) and the whitespace it would leave: the sum of the gaps
// between each spanned column and that top.
func (c Columns) Window(start, span int) (top, whitespace float64) {
	for _, h := range c[start : start+span] {
		if h > top {
			top = h
		}
	}
	for _, h := range c[start : start+span] {
		whitespace += top - h
	}
	return top, whitespace
}

// BestWindow returns the span-wide window with the least whitespace,
// leftmost on ties. span must be in [1, len(c)].
func (c Columns) BestWindow(span int) (start int, top, whitespace float64) {
	start = -1
	for i := 0; i+span <= len(c); i++ {
		t, ws := c.Window(i, span)
		if start < 0 || ws < whitespace {
			start, top, whitespace = i, t, ws
		}
	}
	return start, top, whitespace
}

// HeightsStore tracks the bottom y of every column of one grid. It is the
// mutable placement state the engine consumes and updates across calls.
// The zero value is an uninitialized store.
type HeightsStore struct {
	heights Columns
}

// NewHeightsStore creates an empty HeightsStore.
func NewHeightsStore() *HeightsStore {
	return &HeightsStore{}
}

// Len returns the number of tracked columns, 0 before the first layout.
func (h *HeightsStore) Len() int { return len(h.heights) }

// Snapshot returns a copy of the current heights.
func (h *HeightsStore) Snapshot() Columns {
	out := make(Columns, len(h.heights))
	copy(out, h.heights)
	return out
}

// Restore replaces the heights with a copy of c.
func (h *HeightsStore) Restore(c Columns) {
	h.heights = make(Columns, len(c))
	copy(h.heights, c)
}

// Reset forgets all columns.
func (h *HeightsStore) Reset() { h.heights = nil }

// init sizes an empty store to columns zero-height columns. A store already
// sized for a different column count belongs to another geometry.
func (h *HeightsStore) init(columns int) error {
	switch len(h.heights) {
	case 0:
		h.heights = make(Columns, columns)
		return nil
	case columns:
		return nil
	default:
		return errors.New(errors.ErrCodeCacheInconsistency,
			"column heights track %d columns but the grid has %d; reset the grid after a geometry change",
			len(h.heights), columns)
	}
}

// Place puts an item of the given height into col and returns its top.
func (h *HeightsStore) Place(col int, height, gutter float64) float64 {
	top := h.heights[col]
	h.heights[col] = top + height + gutter
	return top
}

// PlaceWindow puts an item across columns [start, start+span), lifting every
// spanned column to the tallest of them first. The lifted distance is
// whitespace: it is not available to later items.
func (h *HeightsStore) PlaceWindow(start, span int, height, gutter float64) (top, whitespace float64) {
	top, whitespace = h.heights.Window(start, span)
	for i := start; i < start+span; i++ {
		h.heights[i] = top + height + gutter
	}
	return top, whitespace
}
