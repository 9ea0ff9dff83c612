package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/masonry"
)

const tomlDoc = `
[grid]
width = 1200
column_width = 240
min_columns = 3
whitespace_threshold = 40

[[batches]]
items = [
  { id = "p0", height = 200 },
  { id = "p1", height = 120, span = 2 },
]

[[batches]]
items = [{ height = 90 }]
`

func TestReadDocumentTOML(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(tomlDoc), FormatTOML)
	if err != nil {
		t.Fatalf("ReadDocument error: %v", err)
	}

	if doc.Grid.Width != 1200 || doc.Grid.ColumnWidth != 240 || doc.Grid.MinColumns != 3 {
		t.Errorf("grid = %+v", doc.Grid)
	}
	if doc.Grid.Gutter != masonry.DefaultGutter {
		t.Errorf("gutter = %v, want default %v", doc.Grid.Gutter, masonry.DefaultGutter)
	}
	if doc.Grid.WhitespaceThreshold == nil || *doc.Grid.WhitespaceThreshold != 40 {
		t.Errorf("whitespace threshold = %v", doc.Grid.WhitespaceThreshold)
	}

	if len(doc.Batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(doc.Batches))
	}
	if got := doc.Batches[0].Items[1]; got.Span != 2 || got.Height != 120 {
		t.Errorf("item p1 = %+v", got)
	}
	if got := doc.Batches[1].Items[0].ID; got != ItemID(1, 0) {
		t.Errorf("generated id = %q, want %q", got, ItemID(1, 0))
	}
}

func TestReadDocumentJSON(t *testing.T) {
	in := `{"grid": {"width": 736}, "batches": [{"items": [{"id": "a", "height": 10}]}]}`
	doc, err := ReadDocument(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("ReadDocument error: %v", err)
	}
	if doc.Grid.ColumnWidth != masonry.DefaultColumnWidth || doc.Grid.Justify != masonry.JustifyStart {
		t.Errorf("defaults not applied: %+v", doc.Grid)
	}
	if items := doc.Items(); len(items) != 1 || items[0].ID != "a" {
		t.Errorf("Items() = %+v", items)
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		in     string
		code   errors.Code
	}{
		{"malformed json", FormatJSON, `{"grid":`, errors.ErrCodeInvalidFormat},
		{"unknown json field", FormatJSON, `{"grid": {"colour": 1}}`, errors.ErrCodeInvalidFormat},
		{"unknown toml key", FormatTOML, "[grid]\ncolour = 1\n", errors.ErrCodeInvalidFormat},
		{"unknown format", Format("yaml"), ``, errors.ErrCodeInvalidFormat},
		{"negative height", FormatJSON, `{"batches": [{"items": [{"id": "a", "height": -1}]}]}`, errors.ErrCodeInvalidItem},
		{"negative span", FormatJSON, `{"batches": [{"items": [{"id": "a", "height": 1, "span": -2}]}]}`, errors.ErrCodeInvalidItem},
		{"duplicate id", FormatJSON, `{"batches": [{"items": [{"id": "a", "height": 1}]}, {"items": [{"id": "a", "height": 2}]}]}`, errors.ErrCodeInvalidItem},
		{"bad grid", FormatJSON, `{"grid": {"gutter": -3}}`, errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocument(strings.NewReader(tt.in), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestItemIDStable(t *testing.T) {
	if ItemID(0, 1) != ItemID(0, 1) {
		t.Error("ItemID is not deterministic")
	}
	if ItemID(0, 1) == ItemID(1, 0) {
		t.Error("ItemID collides across positions")
	}
}

func TestDocumentPrefix(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(tomlDoc), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(doc.Prefix(1)); got != 2 {
		t.Errorf("Prefix(1) has %d items, want 2", got)
	}
	if got := len(doc.Prefix(9)); got != 3 {
		t.Errorf("Prefix(9) has %d items, want 3", got)
	}
}

func TestImportDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.toml")
	if err := os.WriteFile(path, []byte(tomlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ImportDocument(path)
	if err != nil {
		t.Fatalf("ImportDocument error: %v", err)
	}
	if len(doc.Items()) != 3 {
		t.Errorf("items = %d, want 3", len(doc.Items()))
	}

	if _, err := ImportDocument(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := ImportDocument(filepath.Join(dir, "grid.yaml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("yaml err = %v", err)
	}
}

func TestImportExampleDocuments(t *testing.T) {
	tests := []struct {
		path    string
		items   int
		justify masonry.Justify
	}{
		{"../../examples/feed.toml", 15, masonry.JustifyStart},
		{"../../examples/small.json", 3, masonry.JustifyCenter},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			doc, err := ImportDocument(tt.path)
			if err != nil {
				t.Fatalf("ImportDocument error: %v", err)
			}
			if got := len(doc.Items()); got != tt.items {
				t.Errorf("items = %d, want %d", got, tt.items)
			}
			if doc.Grid.Justify != tt.justify {
				t.Errorf("justify = %q, want %q", doc.Grid.Justify, tt.justify)
			}
		})
	}
}

func TestWriteReadLayout(t *testing.T) {
	cfg := masonry.DefaultConfig()
	cfg.Width = 736
	e, err := masonry.New[string](cfg)
	if err != nil {
		t.Fatal(err)
	}
	st := masonry.NewState[string]()
	ids := []string{"a", "b"}
	st.Measurements.Set("a", 100)
	st.Measurements.Set("b", 50)
	positions, err := e.Layout(st, ids)
	if err != nil {
		t.Fatal(err)
	}

	l := NewLayout(e.Config(), e.Geometry(), ids, positions, st)
	if l.Height() != 114 {
		t.Errorf("Height() = %v, want 114", l.Height())
	}

	var buf bytes.Buffer
	if err := WriteJSON(l, &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if !strings.Contains(buf.String(), `"column_count": 3`) || !strings.Contains(buf.String(), `"left": 250`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	back, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout error: %v", err)
	}
	if back.Positions[1].ID != "b" || back.Positions[1].Left != 250 {
		t.Errorf("positions = %+v", back.Positions)
	}
}

func TestExportJSON(t *testing.T) {
	l := &Layout{Grid: masonry.DefaultConfig(), ColumnCount: 3, Heights: []float64{}}

	path := filepath.Join(t.TempDir(), "grid.layout.json")
	if err := ExportJSON(l, path); err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := ReadLayout(f)
	if err != nil {
		t.Fatalf("ReadLayout error: %v", err)
	}
	if back.ColumnCount != 3 {
		t.Errorf("ColumnCount = %d, want 3", back.ColumnCount)
	}

	if err := ExportJSON(l, t.TempDir()); err == nil {
		t.Error("ExportJSON to a directory should fail")
	}
	if _, err := os.Stat("/dev/full"); err == nil {
		if err := ExportJSON(l, "/dev/full"); err == nil {
			t.Error("ExportJSON to a full device should fail")
		}
	}
}
