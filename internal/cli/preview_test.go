package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	mio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

func newTestPreview(t *testing.T) previewModel {
	t.Helper()
	doc, err := mio.ReadDocument(strings.NewReader(feedDocument()), mio.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
	return newPreviewModel(doc, runnerLayout(context.Background(), runner, doc.Grid), 6)
}

func press(m previewModel, key string) previewModel {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(previewModel)
}

func TestPreviewStartsWithFirstBatch(t *testing.T) {
	m := newTestPreview(t)

	if m.shown != 1 || m.result == nil || len(m.result.Layout.Positions) != 10 {
		t.Fatalf("initial model shows %d batches", m.shown)
	}
	if view := m.View(); !strings.Contains(view, "batch 1/2") {
		t.Errorf("view missing batch counter:\n%s", view)
	}
}

func TestPreviewNextBatchKeepsPositions(t *testing.T) {
	m := newTestPreview(t)
	before := m.result.Layout.Positions

	m = press(m, "n")
	if m.shown != 2 || len(m.result.Layout.Positions) != 15 {
		t.Fatalf("after n: shown %d, %d positions", m.shown, len(m.result.Layout.Positions))
	}
	for i, p := range before {
		if m.result.Layout.Positions[i] != p {
			t.Errorf("item %s moved from %+v to %+v", p.ID, p.Position, m.result.Layout.Positions[i].Position)
		}
	}

	m = press(m, "n")
	if m.shown != 2 {
		t.Errorf("n past the last batch changed shown to %d", m.shown)
	}
}

func TestPreviewReset(t *testing.T) {
	m := press(newTestPreview(t), "r")
	if m.shown != 0 || m.result != nil {
		t.Errorf("after r: shown %d, result %v", m.shown, m.result)
	}
	if view := m.View(); !strings.Contains(view, "empty grid") {
		t.Errorf("view after reset:\n%s", view)
	}

	m = press(m, "n")
	if m.shown != 1 {
		t.Errorf("n after reset shows %d batches", m.shown)
	}
}

func TestPreviewScrollClamps(t *testing.T) {
	m := press(newTestPreview(t), "n")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 15})
	m = next.(previewModel)

	m = press(m, "up")
	if m.offset != 0 {
		t.Errorf("offset = %d after scrolling above the top", m.offset)
	}

	for i := 0; i < 200; i++ {
		m = press(m, "down")
	}
	if want := m.lines() - m.rows; m.offset != want {
		t.Errorf("offset = %d, want clamp at %d", m.offset, want)
	}
}

func TestPreviewQuit(t *testing.T) {
	_, cmd := newTestPreview(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
