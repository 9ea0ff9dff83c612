package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/render"
)

type layoutOptions struct {
	output  string
	session string
	width   float64
	show    bool
	cache   cacheFlags
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOptions

	cmd := &cobra.Command{
		Use:   "layout [grid.toml|grid.json]",
		Short: "Lay out a grid document",
		Long: `Lay out a grid document and write the resulting positions as JSON.

Batches are appended one after another, exactly as a feed that loads more
items would append them. Results are cached locally by document content.

With --session the items are laid out on a persisted grid instead (see
'masonry session new'): items placed by earlier runs keep their positions,
so the document must list them first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&opts.session, "session", "", "lay out on the persisted grid with this id")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "override the container width of the document")
	cmd.Flags().BoolVar(&opts.show, "show", false, "print the grid to the terminal")
	opts.cache.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOptions) error {
	if opts.session != "" && opts.cache.noCache {
		return fmt.Errorf("--session needs a cache to load the grid from")
	}

	doc, err := io.ImportDocument(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}
	if opts.width > 0 {
		doc.Grid.Width = opts.width
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spin := newSpinner(ctx, "Laying out grid...")
	spin.Start()

	var res *pipeline.Result
	if opts.session != "" {
		res, err = runner.LayoutSession(ctx, opts.session, doc.Batches)
	} else {
		res, err = runner.Layout(ctx, doc)
	}
	if err != nil {
		spin.StopWithError("Layout failed")
		return fmt.Errorf("lay out %s: %w", input, err)
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Laid out %d items", res.Stats.Items))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = layoutPath(input)
	}
	if err := io.ExportJSON(res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats, res.CacheHit)
	if g := res.Layout.Grid; opts.session != "" && (g.Width != doc.Grid.Width || g.ColumnWidth != doc.Grid.ColumnWidth) {
		printWarning("Session grid is %g wide with %g-wide columns; the document's grid was ignored", g.Width, g.ColumnWidth)
	}
	if opts.show {
		printNewline()
		fmt.Fprintln(out, render.Text(res.Layout, render.Options{Color: true}))
	}
	printNewline()
	printNextStep("Preview", "masonry preview "+input)

	return nil
}
