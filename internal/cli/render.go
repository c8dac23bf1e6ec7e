package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treescope/treescope/pkg/cache"
	"github.com/treescope/treescope/pkg/document"
	"github.com/treescope/treescope/pkg/snapshot"
	"github.com/treescope/treescope/pkg/tree"
	"github.com/treescope/treescope/pkg/tree/layout"
)

// Output formats for the render command.
const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatPDF  = "pdf"
	formatJSON = "json"
	formatDOT  = "dot"

	defaultPNGScale = 2.0
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "svg", "png", "pdf", "json", "dot"
	detailed    bool     // include node properties in labels
	collapseAll bool     // render the collapsed overview (levels 0-1)
	noCache     bool     // skip the rendered-artifact cache
}

// renderCommand creates the render command for static exports.
//
// Default settings:
//   - format: svg
//   - detailed: false (names only)
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a document tree to SVG, PNG, PDF, JSON, or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node properties in labels")
	cmd.Flags().BoolVar(&opts.collapseAll, "collapse-all", false, "render the collapsed overview")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the rendered-artifact cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts *renderOpts) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return err
	}

	p := newProgress(loggerFromContext(ctx))
	t := tree.Build(doc)
	if opts.collapseAll && !t.IsEmpty() {
		for _, child := range t.Root.Children {
			child.Walk(func(n *tree.Node) bool {
				n.SetCollapsed(true)
				return true
			})
		}
	}
	res := layout.New(c.Config.Layout).Layout(t)
	snap := snapshot.Capture(t, res)
	p.done(fmt.Sprintf("Laid out %d nodes", len(snap.Nodes)))

	docHash := document.ContentHash(raw)
	if opts.collapseAll {
		docHash += ":collapsed"
	}
	store := c.newCache(ctx, opts.noCache)

	for _, format := range opts.formats {
		out := outputPath(path, opts.output, format, len(opts.formats) > 1)
		if err := c.renderOne(ctx, store, snap, docHash, format, out, opts); err != nil {
			return err
		}
		printFile(out)
	}
	return nil
}

func (c *CLI) renderOne(ctx context.Context, store cache.Cache, snap snapshot.Snapshot, docHash, format, out string, opts *renderOpts) error {
	key := cache.ArtifactKey(docHash, format)
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		c.Logger.Debug("artifact cached", "format", format)
		return os.WriteFile(out, data, 0o644)
	}

	sp := newSpinner(ctx, fmt.Sprintf("Rendering %s", format))
	sp.Start()
	data, err := renderFormat(snap, format, opts.detailed)
	if err != nil {
		sp.StopWithError(fmt.Sprintf("Render %s failed", format))
		return err
	}
	sp.Stop()

	if err := store.Set(ctx, key, data, 0); err != nil {
		c.Logger.Debug("artifact cache store failed", "error", err)
	}
	return os.WriteFile(out, data, 0o644)
}

func renderFormat(snap snapshot.Snapshot, format string, detailed bool) ([]byte, error) {
	switch format {
	case formatJSON:
		return snapshot.Marshal(snap)
	case formatDOT:
		return []byte(snapshot.ToDOT(snap, snapshot.Options{Detailed: detailed})), nil
	case formatSVG:
		return snapshot.RenderSVG(snapshot.ToDOT(snap, snapshot.Options{Detailed: detailed}))
	case formatPNG:
		return snapshot.RenderPNG(snapshot.ToDOT(snap, snapshot.Options{Detailed: detailed}), defaultPNGScale)
	case formatPDF:
		return snapshot.RenderPDF(snapshot.ToDOT(snap, snapshot.Options{Detailed: detailed}))
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}
	return parts
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		switch f {
		case formatSVG, formatPNG, formatPDF, formatJSON, formatDOT:
		default:
			return fmt.Errorf("unknown format %q (valid: svg, png, pdf, json, dot)", f)
		}
	}
	return nil
}

// outputPath resolves the output file for one format. With multiple formats
// the explicit output acts as a base path and the extension is replaced.
func outputPath(input, output, format string, multi bool) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return base + "." + format
	}
	if multi {
		base := strings.TrimSuffix(output, filepath.Ext(output))
		return base + "." + format
	}
	return output
}
