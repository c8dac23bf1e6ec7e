package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treescope/treescope/pkg/document"
	"github.com/treescope/treescope/pkg/tree"
)

// statsCommand creates the stats command, which prints structural statistics
// for a document without rendering it.
func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Show structural statistics for a document tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			t := tree.Build(doc)
			s := tree.ComputeStats(t)

			fmt.Println(StyleTitle.Render(args[0]))
			fmt.Print(formatStats(s))

			if s.Overflow() {
				printWarning("tree exceeds practical interactive limits (%d nodes, depth %d)",
					s.TotalNodes, s.MaxDepth)
			}
			return nil
		},
	}
}
