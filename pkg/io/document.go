package io

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/masonry"
)

// Document is a grid configuration plus batches of items to append.
type Document struct {
	Grid    masonry.Config `json:"grid" toml:"grid"`
	Batches []Batch        `json:"batches" toml:"batches"`
}

// Batch is one group of items appended to the grid in a single layout call.
type Batch struct {
	Items []Item `json:"items" toml:"items"`
}

// Item is a measured grid item.
type Item struct {
	ID     string  `json:"id,omitempty" toml:"id"`
	Height float64 `json:"height" toml:"height"`
	Span   int     `json:"span,omitempty" toml:"span"`
}

// itemNamespace seeds the UUIDs given to items without an id.
var itemNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("masonry.item"))

// ItemID returns the generated id for the item at index i of batch b.
func ItemID(b, i int) string {
	return uuid.NewSHA1(itemNamespace, fmt.Appendf(nil, "%d/%d", b, i)).String()
}

// normalize fills in missing ids and validates every item. Item ids must be
// unique across the whole document.
func (d *Document) normalize() error {
	seen := make(map[string]struct{})
	for b := range d.Batches {
		for i := range d.Batches[b].Items {
			it := &d.Batches[b].Items[i]
			if it.ID == "" {
				it.ID = ItemID(b, i)
			}
			if err := it.Validate(); err != nil {
				return fmt.Errorf("batch %d item %d: %w", b, i, err)
			}
			if _, dup := seen[it.ID]; dup {
				return errors.New(errors.ErrCodeInvalidItem, "batch %d item %d: duplicate id %q", b, i, it.ID)
			}
			seen[it.ID] = struct{}{}
		}
	}
	return d.Grid.Validate()
}

// Validate checks the id, height and span of an item.
func (it Item) Validate() error {
	if err := errors.ValidateItemID(it.ID); err != nil {
		return err
	}
	if err := errors.ValidateItemSpan(it.Span); err != nil {
		return err
	}
	if it.Height < 0 || math.IsNaN(it.Height) || math.IsInf(it.Height, 0) {
		return errors.New(errors.ErrCodeInvalidItem, "item %q has invalid height %v", it.ID, it.Height)
	}
	return nil
}

// Items returns every item of the document in order.
func (d *Document) Items() []Item {
	var out []Item
	for _, b := range d.Batches {
		out = append(out, b.Items...)
	}
	return out
}

// Prefix returns the items of the first n batches, the full sequence a
// layout call receives after n appends.
func (d *Document) Prefix(n int) []Item {
	if n > len(d.Batches) {
		n = len(d.Batches)
	}
	var out []Item
	for _, b := range d.Batches[:n] {
		out = append(out, b.Items...)
	}
	return out
}
