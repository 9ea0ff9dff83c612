package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/render"
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		cellWidth int
		flags     cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "preview [grid.toml|grid.json]",
		Short: "Step through the batches of a grid document",
		Long: `Open an interactive view of a grid document.

The view starts with the first batch. Press n to append the next batch and
watch the new items fill in below the existing ones, r to start over from an
empty grid, the arrow keys to scroll and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := io.ImportDocument(args[0])
			if err != nil {
				return fmt.Errorf("load document %s: %w", args[0], err)
			}

			runner, err := c.newRunner(ctx, flags)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			m := newPreviewModel(doc, runnerLayout(ctx, runner, doc.Grid), cellWidth)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if pm, ok := final.(previewModel); ok && pm.err != nil {
				return pm.err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cellWidth, "cell-width", render.DefaultCellWidth, "characters per column")
	flags.register(cmd)

	return cmd
}

// layoutFunc lays out the given batches on an empty grid.
type layoutFunc func(batches []io.Batch) (*pipeline.Result, error)

func runnerLayout(ctx context.Context, runner *pipeline.Runner, grid masonry.Config) layoutFunc {
	return func(batches []io.Batch) (*pipeline.Result, error) {
		return runner.LayoutBatches(ctx, grid, batches)
	}
}

// =============================================================================
// previewModel
// =============================================================================

// previewModel is the bubbletea model of the preview command.
type previewModel struct {
	doc    *io.Document
	layout layoutFunc
	opts   render.Options

	shown  int // batches laid out
	result *pipeline.Result
	err    error

	offset int
	rows   int
}

func newPreviewModel(doc *io.Document, layout layoutFunc, cellWidth int) previewModel {
	m := previewModel{
		doc:    doc,
		layout: layout,
		opts:   render.Options{CellWidth: cellWidth, Color: true},
		rows:   20,
	}
	if len(doc.Batches) > 0 {
		m = m.show(1)
	}
	return m
}

// show lays out the first n batches.
func (m previewModel) show(n int) previewModel {
	m.shown = n
	m.err = nil
	if n == 0 {
		m.result = nil
		m.offset = 0
		return m
	}
	res, err := m.layout(m.doc.Batches[:n])
	if err != nil {
		m.err = err
		return m
	}
	m.result = res
	return m
}

func (m previewModel) lines() int {
	if m.result == nil {
		return 0
	}
	return render.Lines(m.result.Layout, m.opts)
}

func (m previewModel) scroll(delta int) previewModel {
	m.offset += delta
	if limit := m.lines() - m.rows; m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", " ":
			if m.shown < len(m.doc.Batches) {
				m = m.show(m.shown + 1)
			}
		case "r":
			m = m.show(0)
		case "up", "k":
			m = m.scroll(-1)
		case "down", "j":
			m = m.scroll(1)
		case "pgup":
			m = m.scroll(-m.rows)
		case "pgdown":
			m = m.scroll(m.rows)
		}
	case tea.WindowSizeMsg:
		m.rows = msg.Height - 5
		if m.rows < 5 {
			m.rows = 5
		}
		m = m.scroll(0)
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Masonry preview"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("n next batch  r reset  ↑/↓ scroll  q quit"))
	b.WriteString("\n\n")

	if m.result != nil {
		opts := m.opts
		opts.Offset, opts.Rows = m.offset, m.rows
		b.WriteString(render.Text(m.result.Layout, opts))
	} else {
		b.WriteString(StyleDim.Render("empty grid"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.status())

	return b.String()
}

func (m previewModel) status() string {
	if m.err != nil {
		return styleIconError.Render(iconError) + " " + errors.UserMessage(m.err)
	}
	line := StyleDim.Render(fmt.Sprintf("  batch %d/%d", m.shown, len(m.doc.Batches)))
	if m.result != nil {
		line += statsLine(m.result.Stats, m.result.CacheHit)
	}
	return line
}
