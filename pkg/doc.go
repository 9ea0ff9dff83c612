// Package pkg holds the public libraries of masonry.
//
// # Overview
//
// Masonry packs measured items into columns. The pkg directory is organized
// around the [masonry] layout engine:
//
//  1. [masonry] - the engine: measurements, cached positions, column heights
//  2. [io] - grid documents (JSON or TOML) in, layout JSON out
//  3. [pipeline] - cached layouts and persisted grid sessions
//  4. [render] - text drawing of a layout
//  5. [cache], [session] - storage behind the pipeline
//  6. [errors], [observability], [buildinfo] - shared plumbing
//
// # Architecture
//
//	grid document (TOML/JSON)
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [pipeline] package (cache lookup, session load)
//	         ↓
//	    [masonry] package (incremental layout)
//	         ↓
//	    layout JSON, text preview, HTTP response
//
// # Quick Start
//
//	import "github.com/matzehuels/masonry/pkg/masonry"
//
//	e, err := masonry.New[*Pin](masonry.DefaultConfig())
//	st := masonry.NewState[*Pin]()
//	for _, p := range pins {
//	    st.Measurements.Set(p, p.Height)
//	}
//	positions, err := e.Layout(st, pins)
package pkg
