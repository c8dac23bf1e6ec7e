package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/treescope/treescope/pkg/document"
	"github.com/treescope/treescope/pkg/viewer"
)

// viewCommand creates the view command, the interactive tree explorer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		collapseAll   bool
		includeHidden bool
	)

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore a document tree interactively",
		Long: `Explore a document tree interactively.

Navigate with the arrow keys, toggle subtrees with enter, search node names
and properties with /, and jump between matches with n and N.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}

			v := viewer.New(viewer.Options{
				Layout:        c.Config.Layout,
				IncludeHidden: includeHidden,
				Logger:        c.Logger,
			})
			if err := v.Rebuild(ctx, doc); err != nil {
				return err
			}
			if collapseAll {
				v.ToggleAll(ctx, true)
				// Keep the first level open so there is something to explore.
				if err := v.ToggleNode(ctx, v.Tree().Root.ID); err != nil {
					return err
				}
			}

			stats := v.Stats()
			if stats.Overflow() {
				printWarning("large tree (%d nodes, depth %d); interaction may be sluggish",
					stats.TotalNodes, stats.MaxDepth)
			}

			model := NewTreeModel(v, filepath.Base(args[0]))
			prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := prog.Run(); err != nil {
				return fmt.Errorf("run viewer: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&collapseAll, "collapsed", false, "start with all subtrees collapsed")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "search inside collapsed subtrees")

	return cmd
}
