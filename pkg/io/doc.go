// Package io reads grid documents and writes layout results.
//
// # Grid documents
//
// A grid document holds the grid configuration and one or more batches of
// measured items. Batches model the pages of an infinite feed: each batch
// is appended to the grid in turn. JSON and TOML are both accepted and
// selected by file extension:
//
//	[grid]
//	width = 1200
//	column_width = 240
//	gutter = 14
//	min_columns = 3
//	whitespace_threshold = 40
//
//	[[batches]]
//	items = [
//	  { id = "p0", height = 200 },
//	  { id = "hero", height = 320, span = 2 },
//	]
//
// Grid fields that are omitted keep their [masonry.DefaultConfig] value.
// Items without an id get a stable UUID derived from their position in the
// document, so re-reading the same file yields the same identifiers.
//
// # Layout export
//
// [Layout] is the JSON form of a laid out grid:
//
//	{
//	  "grid": {"width": 1200, "column_width": 240, ...},
//	  "column_count": 4,
//	  "positions": [{"id": "p0", "top": 0, "left": 99, "width": 240, "height": 200}],
//	  "order": ["p0"],
//	  "heights": [214, 0, 0, 0]
//	}
//
// positions follow document order; order lists the same items in the order
// the engine placed them.
package io
