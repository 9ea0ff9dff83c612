// Package pipeline runs grid layouts for the CLI and the HTTP server.
//
// Both entry points need the same steps: build an engine for a grid
// configuration, feed it measured items batch by batch, and persist or cache
// the result. [Runner] owns those steps so the CLI and server only translate
// flags and requests.
//
// # Stateless layouts
//
// [Runner.Layout] lays out a whole document from an empty grid. The result
// depends only on the document, so it is cached under a hash of it:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Layout(ctx, doc)
//	fmt.Println(res.Layout.ColumnCount, res.CacheHit)
//
// # Sessions
//
// A session keeps the state of one grid between calls, so each call only
// places the items appended since the last one:
//
//	sess, _ := runner.CreateSession(ctx, cfg)
//	res, err := runner.LayoutSession(ctx, sess.ID, batches)
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
)

// Result is the outcome of a layout run.
type Result struct {
	// Layout holds every item of the run in input order.
	Layout *io.Layout

	// SessionID is set for session runs.
	SessionID string

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool

	Stats Stats
}

// Stats describes a layout run.
type Stats struct {
	Batches    int
	Items      int
	Placed     int // items placed by this run; the rest were cached
	Columns    int
	Height     float64
	LayoutTime time.Duration
}

// request is the cached identity of a stateless layout.
type request struct {
	Grid    masonry.Config `json:"grid"`
	Batches []io.Batch     `json:"batches"`
}

func (q request) hash() (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash layout request")
	}
	return cache.Hash(data), nil
}

// sequence returns the ids, heights and spans of every item in batches and
// the cumulative item count after each batch.
func sequence(batches []io.Batch) (ids []string, heights map[string]float64, spans map[string]int, ends []int) {
	heights = make(map[string]float64)
	spans = make(map[string]int)
	for _, b := range batches {
		for _, it := range b.Items {
			if _, dup := heights[it.ID]; !dup {
				ids = append(ids, it.ID)
			}
			heights[it.ID] = it.Height
			spans[it.ID] = it.Span
		}
		ends = append(ends, len(ids))
	}
	return ids, heights, spans, ends
}

// validateBatches checks the items of request batches, which unlike document
// items have not been normalized.
func validateBatches(batches []io.Batch) error {
	for b, batch := range batches {
		for i, it := range batch.Items {
			if err := it.Validate(); err != nil {
				return errors.Wrap(errors.GetCode(err), err, "batch %d item %d", b, i)
			}
		}
	}
	return nil
}
