package masonry

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultColumnWidth is the width of a single column in pixels.
	DefaultColumnWidth = 236.0

	// DefaultGutter is the horizontal and vertical spacing between items.
	DefaultGutter = 14.0

	// DefaultMinColumns is the lower bound on the column count, applied even
	// when the container is too narrow to fit that many columns.
	DefaultMinColumns = 2
)

// Justify selects how the grid is centered inside its container.
type Justify string

const (
	// JustifyStart centers the full column capacity of the container. The
	// inset does not depend on the items, so appending never moves anything.
	JustifyStart Justify = "start"

	// JustifyCenter centers only the columns that hold items. Intended for
	// small grids that are laid out once.
	JustifyCenter Justify = "center"
)

// =============================================================================
// Config
// =============================================================================

// Config describes the geometry of one grid.
//
// Any change to Width, ColumnWidth, Gutter or MinColumns invalidates the
// column heights and cached positions of a [State]; callers must reset the
// state when they build an engine with a different Config.
type Config struct {
	Width       float64 `json:"width" toml:"width"`
	ColumnWidth float64 `json:"column_width" toml:"column_width"`
	Gutter      float64 `json:"gutter" toml:"gutter"`
	MinColumns  int     `json:"min_columns" toml:"min_columns"`
	Justify     Justify `json:"justify,omitempty" toml:"justify"`

	// WhitespaceThreshold caps the vertical gap a multi-column item may leave
	// under itself. A module whose best slot exceeds it is placed after the
	// remaining single-column items of its batch. Nil disables deferral.
	WhitespaceThreshold *float64 `json:"whitespace_threshold,omitempty" toml:"whitespace_threshold"`

	Logger *log.Logger `json:"-" toml:"-"`
}

// DefaultConfig returns a Config with the default column width, gutter,
// minimum column count and start justification. Width is left at zero, so
// the grid resolves to DefaultMinColumns columns until a width is set.
func DefaultConfig() Config {
	return Config{
		ColumnWidth: DefaultColumnWidth,
		Gutter:      DefaultGutter,
		MinColumns:  DefaultMinColumns,
		Justify:     JustifyStart,
	}
}

// Validate reports the first invalid field as an INVALID_CONFIGURATION error.
// An empty Justify is accepted and means JustifyStart.
func (c Config) Validate() error {
	switch {
	case !finite(c.ColumnWidth) || c.ColumnWidth <= 0:
		return errors.New(errors.ErrCodeInvalidConfiguration, "column width must be positive, got %v", c.ColumnWidth)
	case !finite(c.Gutter) || c.Gutter < 0:
		return errors.New(errors.ErrCodeInvalidConfiguration, "gutter cannot be negative, got %v", c.Gutter)
	case c.MinColumns < 1:
		return errors.New(errors.ErrCodeInvalidConfiguration, "min columns must be at least 1, got %d", c.MinColumns)
	case !finite(c.Width) || c.Width < 0:
		return errors.New(errors.ErrCodeInvalidConfiguration, "width cannot be negative, got %v", c.Width)
	}

	switch c.Justify {
	case "", JustifyStart, JustifyCenter:
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration, "unknown justify %q (want start or center)", c.Justify)
	}

	if t := c.WhitespaceThreshold; t != nil && (!finite(*t) || *t < 0) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "whitespace threshold cannot be negative, got %v", *t)
	}
	return nil
}

// Threshold returns a pointer suitable for Config.WhitespaceThreshold.
func Threshold(px float64) *float64 { return &px }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// =============================================================================
// Geometry
// =============================================================================

// Geometry is the resolved column grid for a Config.
type Geometry struct {
	ColumnCount int
	ColumnWidth float64
	Gutter      float64

	// GridWidth is the width of all columns and the gutters between them.
	GridWidth float64
}

// ResolveGeometry computes the column count and grid width for cfg:
//
//	columnCount = max(minColumns, floor((width + gutter) / (columnWidth + gutter)))
//	gridWidth   = columnCount*columnWidth + (columnCount-1)*gutter
//
// The result depends only on cfg, so repeated calls with the same width agree.
func ResolveGeometry(cfg Config) Geometry {
	count := int(math.Floor((cfg.Width + cfg.Gutter) / (cfg.ColumnWidth + cfg.Gutter)))
	if count < cfg.MinColumns {
		count = cfg.MinColumns
	}
	g := Geometry{
		ColumnCount: count,
		ColumnWidth: cfg.ColumnWidth,
		Gutter:      cfg.Gutter,
	}
	g.GridWidth = g.SpanWidth(count)
	return g
}

// SpanWidth returns the width of an item covering span adjacent columns.
func (g Geometry) SpanWidth(span int) float64 {
	return float64(span)*g.ColumnWidth + float64(span-1)*g.Gutter
}

// ColumnOffset returns the distance from the grid's left edge to column col.
func (g Geometry) ColumnOffset(col int) float64 {
	return float64(col) * (g.ColumnWidth + g.Gutter)
}

// ClampSpan bounds span to [1, ColumnCount].
func (g Geometry) ClampSpan(span int) int {
	if span < 1 {
		return 1
	}
	if span > g.ColumnCount {
		return g.ColumnCount
	}
	return span
}

// Inset returns the floored left offset that centers occupied columns in a
// container of the given width, or 0 when they do not fit.
func (g Geometry) Inset(width float64, occupied int) float64 {
	if occupied < 1 {
		return 0
	}
	if occupied > g.ColumnCount {
		occupied = g.ColumnCount
	}
	leftover := width - g.SpanWidth(occupied)
	if leftover <= 0 {
		return 0
	}
	return math.Floor(leftover / 2)
}
