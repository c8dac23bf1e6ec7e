package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/treescope/treescope/pkg/server"
	"github.com/treescope/treescope/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		backend  string
		mongoURI string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the treescope HTTP API server",
		Long: `Run the treescope HTTP API server.

Documents are stored in the configured backend (in-memory by default, MongoDB
with --store mongo) and layouts are computed on demand and cached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx, backend, mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			srv := server.New(server.Config{
				Addr:   addr,
				Store:  st,
				Cache:  c.newCache(ctx, noCache),
				Layout: c.Config.Layout,
				Logger: c.Logger,
			})

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().StringVar(&backend, "store", c.Config.Server.Store, "document store backend: memory, mongo")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", c.Config.Server.MongoURI, "MongoDB connection string")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) newStore(ctx context.Context, backend, mongoURI string) (store.Store, error) {
	switch backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		if mongoURI == "" {
			return nil, fmt.Errorf("--mongo-uri is required with --store mongo")
		}
		return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
	default:
		return nil, fmt.Errorf("unknown store backend %q (valid: memory, mongo)", backend)
	}
}
