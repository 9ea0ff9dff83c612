package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/session"
)

// sessionCommand creates the session management command.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage persisted grids",
		Long: `Manage persisted grids.

A session stores the geometry, column heights and item positions of one grid,
so later 'masonry layout --session' runs append to it instead of starting over.`,
	}

	cmd.AddCommand(c.sessionNewCommand())
	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionResetCommand())
	cmd.AddCommand(c.sessionDeleteCommand())

	return cmd
}

func (c *CLI) sessionNewCommand() *cobra.Command {
	var (
		grid      = masonry.DefaultConfig()
		justify   string
		threshold float64
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "new [grid.toml|grid.json]",
		Short: "Create a grid session",
		Long: `Create a grid session.

The geometry comes from the [grid] table of a document when one is given,
otherwise from the flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				doc, err := io.ImportDocument(args[0])
				if err != nil {
					return fmt.Errorf("load document %s: %w", args[0], err)
				}
				grid = doc.Grid
			} else {
				grid.Justify = masonry.Justify(justify)
				if cmd.Flags().Changed("whitespace-threshold") {
					grid.WhitespaceThreshold = &threshold
				}
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cacheFlags{redisAddr: redisAddr})
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			sess, err := runner.CreateSession(ctx, grid)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			printSuccess("Created session %s", StyleNumber.Render(sess.ID))
			printNewline()
			printNextStep("Lay out", "masonry layout <grid.toml> --session "+sess.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&grid.Width, "width", grid.Width, "container width")
	cmd.Flags().Float64Var(&grid.ColumnWidth, "column-width", grid.ColumnWidth, "column width")
	cmd.Flags().Float64Var(&grid.Gutter, "gutter", grid.Gutter, "space between columns and between stacked items")
	cmd.Flags().IntVar(&grid.MinColumns, "min-columns", grid.MinColumns, "minimum number of columns")
	cmd.Flags().StringVar(&justify, "justify", string(masonry.JustifyStart), "start or center")
	cmd.Flags().Float64Var(&threshold, "whitespace-threshold", 0, "defer wide items that would leave more whitespace than this")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "store the session in Redis at this address")

	return cmd
}

func (c *CLI) sessionShowCommand() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a grid session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), redisAddr, func(ctx context.Context, runner *pipeline.Runner) error {
				sess, err := runner.Session(ctx, args[0])
				if err != nil {
					return err
				}
				printSession(sess)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", "", "load the session from Redis at this address")
	return cmd
}

func (c *CLI) sessionResetCommand() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "reset <id>",
		Short: "Forget every item placed on a grid session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), redisAddr, func(ctx context.Context, runner *pipeline.Runner) error {
				if _, err := runner.ResetSession(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Reset session %s", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", "", "load the session from Redis at this address")
	return cmd
}

func (c *CLI) sessionDeleteCommand() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a grid session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), redisAddr, func(ctx context.Context, runner *pipeline.Runner) error {
				if err := runner.DeleteSession(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted session %s", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", "", "delete the session from Redis at this address")
	return cmd
}

// withRunner runs fn with a runner over the local cache, or Redis when
// redisAddr is set.
func (c *CLI) withRunner(ctx context.Context, redisAddr string, fn func(context.Context, *pipeline.Runner) error) error {
	runner, err := c.newRunner(ctx, cacheFlags{redisAddr: redisAddr})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return fn(ctx, runner)
}

func printSession(sess *session.Session) {
	geom := masonry.ResolveGeometry(sess.Grid)

	fmt.Fprintln(out, StyleTitle.Render("Session "+sess.ID))
	printKeyValue("width", fmt.Sprintf("%g", sess.Grid.Width))
	printKeyValue("columns", fmt.Sprintf("%d × %g (gutter %g)", geom.ColumnCount, sess.Grid.ColumnWidth, sess.Grid.Gutter))
	printKeyValue("justify", string(sess.Grid.Justify))
	printKeyValue("items", fmt.Sprintf("%d", len(sess.Placed)))
	printKeyValue("height", fmt.Sprintf("%g", sess.Height()))
	printKeyValue("updated", sess.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}
