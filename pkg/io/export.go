package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/masonry/pkg/masonry"
)

// Layout is the exported result of laying out a grid.
type Layout struct {
	Grid        masonry.Config `json:"grid"`
	ColumnCount int            `json:"column_count"`
	Positions   []PlacedItem   `json:"positions"`
	Order       []string       `json:"order"`
	Heights     []float64      `json:"heights"`
}

// PlacedItem is an item id with its position.
type PlacedItem struct {
	ID string `json:"id"`
	masonry.Position
}

// NewLayout collects the result of laying out ids. positions must be
// parallel to ids; order and heights are read from the state.
func NewLayout(cfg masonry.Config, geom masonry.Geometry, ids []string, positions []masonry.Position, st *masonry.State[string]) *Layout {
	l := &Layout{
		Grid:        cfg,
		ColumnCount: geom.ColumnCount,
		Positions:   make([]PlacedItem, len(ids)),
		Order:       st.Positions.Keys(),
		Heights:     st.Heights.Snapshot(),
	}
	for i, id := range ids {
		l.Positions[i] = PlacedItem{ID: id, Position: positions[i]}
	}
	if l.Heights == nil {
		l.Heights = []float64{}
	}
	return l
}

// Height returns the height of the tallest column.
func (l *Layout) Height() float64 {
	return masonry.Columns(l.Heights).Tallest()
}

// WriteJSON encodes l as indented JSON.
func WriteJSON(l *Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadLayout decodes a layout written by [WriteJSON].
func ReadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &l, nil
}

// ExportJSON writes l to a JSON file at path.
func ExportJSON(l *Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(l, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
