// Package masonry packs variable-height items into a fixed number of columns.
//
// # Overview
//
// A masonry grid places each item under the shortest column, so columns grow
// as evenly as possible and nothing overlaps. Items may also span several
// adjacent columns ("modules"). Layout is incremental: callers pass the full,
// growing item sequence on every call, previously placed items keep their
// positions, and only new items are packed below them.
//
// The engine never measures anything. Callers record each item's content
// height in a [MeasurementStore] before layout and render the returned
// [Position] values however they like.
//
// # Geometry
//
// [ResolveGeometry] turns a [Config] into a column grid:
//
//	columnCount = max(minColumns, floor((width + gutter) / (columnWidth + gutter)))
//	gridWidth   = columnCount*columnWidth + (columnCount-1)*gutter
//
// With [JustifyStart] the whole column capacity is centered in the container;
// with [JustifyCenter] only the columns that hold items are. Offsets are
// floored and never negative.
//
// # State
//
// All memoized state of a grid lives in a [State]: measurements, the
// [PositionCache] and the [HeightsStore]. The [Engine] itself is immutable,
// so one engine can serve many grids concurrently as long as every grid has
// its own State. A State must be reset when the geometry changes:
//
//	e, err := masonry.New[*Pin](masonry.DefaultConfig())
//	st := masonry.NewState[*Pin]()
//	for _, p := range pins {
//	    st.Measurements.Set(p, p.Height)
//	}
//	positions, err := e.Layout(st, pins)
//
//	// later, after more pins were fetched and measured
//	positions, err = e.Layout(st, append(pins, more...))
//
// # Modules
//
// An item that implements [Spanner] (or is described by [WithSpanFunc]) with
// a span above one is placed in the window of adjacent columns that leaves the
// least whitespace, the leftmost such window on ties. Its top is the tallest
// spanned column. When Config.WhitespaceThreshold is set, a module whose best
// window is worse than the threshold waits until the remaining single-column
// items of the batch are placed, then takes the best window available.
//
// # Errors
//
// [New] fails with INVALID_CONFIGURATION. [Engine.Layout] fails with
// MISSING_MEASUREMENT when a new item was never measured and with
// CACHE_INCONSISTENCY when the State no longer matches the request (the
// sequence shrank, or the geometry changed without a reset). A failed call
// leaves the State untouched.
package masonry
