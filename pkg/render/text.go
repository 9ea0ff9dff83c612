package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/masonry/pkg/io"
)

// Default scale of the drawing.
const (
	DefaultCellWidth = 12
	DefaultRowHeight = 20.0
)

// palette cycles through background colors, one per item.
var palette = []lipgloss.Color{"24", "29", "94", "96", "60", "66", "130", "31"}

var styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

// Options controls the scale and styling of a drawing.
type Options struct {
	CellWidth int     // characters per column
	RowHeight float64 // pixels per text row
	Color     bool    // paint items with background colors

	// Offset and Rows select a window of text rows. Rows <= 0 draws to the
	// bottom of the grid.
	Offset int
	Rows   int
}

func (o Options) withDefaults() Options {
	if o.CellWidth < 3 {
		o.CellWidth = DefaultCellWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

type box struct {
	label      string
	x0, x1     int
	y0, y1     int
	colorIndex int
}

// Text returns the drawing of l, one line per text row.
func Text(l *io.Layout, opts Options) string {
	opts = opts.withDefaults()
	boxes, width, height := place(l, opts)
	if width == 0 {
		return ""
	}

	canvas := make([][]int, height)
	for y := range canvas {
		canvas[y] = make([]int, width)
		for x := range canvas[y] {
			canvas[y][x] = -1
		}
	}
	for i, b := range boxes {
		for y := b.y0; y < b.y1 && y < height; y++ {
			for x := b.x0; x < b.x1 && x < width; x++ {
				canvas[y][x] = i
			}
		}
	}

	last := height
	if opts.Rows > 0 && opts.Offset+opts.Rows < last {
		last = opts.Offset + opts.Rows
	}

	var sb strings.Builder
	for y := opts.Offset; y < last; y++ {
		sb.WriteString(line(canvas[y], boxes, y, opts.Color))
		if y < last-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Lines returns the number of text rows Text draws for l without a window.
func Lines(l *io.Layout, opts Options) int {
	_, _, height := place(l, opts.withDefaults())
	return height
}

// place maps every positioned item to a character rectangle.
func place(l *io.Layout, opts Options) ([]box, int, int) {
	if l == nil || l.ColumnCount == 0 {
		return nil, 0, 0
	}
	pitch := l.Grid.ColumnWidth + l.Grid.Gutter
	origin := math.Inf(1)
	for _, p := range l.Positions {
		origin = math.Min(origin, p.Left)
	}

	stride := opts.CellWidth + 1
	width := l.ColumnCount*stride - 1
	height := 0

	boxes := make([]box, 0, len(l.Positions))
	for i, p := range l.Positions {
		col := int(math.Round((p.Left - origin) / pitch))
		span := max(1, int(math.Round((p.Width+l.Grid.Gutter)/pitch)))
		y0 := int(p.Top / opts.RowHeight)
		y1 := max(y0+1, int(p.Bottom()/opts.RowHeight))

		boxes = append(boxes, box{
			label:      p.ID,
			x0:         col * stride,
			x1:         (col+span)*stride - 1,
			y0:         y0,
			y1:         y1,
			colorIndex: i % len(palette),
		})
		height = max(height, y1)
	}
	return boxes, width, height
}

// line renders one text row, merging runs of cells owned by the same item.
func line(row []int, boxes []box, y int, color bool) string {
	var sb strings.Builder
	for x := 0; x < len(row); {
		owner := row[x]
		end := x
		for end < len(row) && row[end] == owner {
			end++
		}

		if owner < 0 {
			sb.WriteString(strings.Repeat(" ", end-x))
			x = end
			continue
		}

		b := boxes[owner]
		seg := segment(b, y, x, end)
		if color {
			seg = styleLabel.Background(palette[b.colorIndex]).Render(seg)
		}
		sb.WriteString(seg)
		x = end
	}
	return strings.TrimRight(sb.String(), " ")
}

// segment returns the characters of b between columns x and end on row y.
// The first row carries the item label; the rest are shaded.
func segment(b box, y, x, end int) string {
	n := end - x
	if y != b.y0 {
		return strings.Repeat("░", n)
	}
	label := []rune(" " + b.label)
	out := make([]rune, n)
	for i := range out {
		if j := x - b.x0 + i; j < len(label) {
			out[i] = label[j]
		} else {
			out[i] = ' '
		}
	}
	return string(out)
}
