// ABOUTME: Serve subcommand for the HTTP surface
// ABOUTME: Exposes MCP over streamable HTTP and SSE plus the card search page
package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/mcp"
	"github.com/harper/oracle/internal/web"
)

var (
	serveAddr      string
	serveStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over HTTP with the card search page",
	Long: `Serve the oracle MCP server over HTTP.

Routes:
  /mcp          streamable HTTP transport
  /sse          SSE transport
  /health       liveness
  /ready        database readiness probe
  /api/search   JSON card search used by the search page
  /             search page (embedded, or --static dir)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := log.FromContext(ctx)

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		staticDir := cfg.Server.StaticDir
		if serveStaticDir != "" {
			staticDir = serveStaticDir
		}

		gw, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}
		connectGateway(ctx, gw, cfg, logger)
		defer func() { _ = gw.Disconnect() }()

		cards := newScryfall(cfg, logger)
		server := mcp.NewServer(cards, gw, logger)

		router, err := web.NewRouter(web.Options{
			MCP:       server.MCPServer(),
			Cards:     cards,
			DB:        gw,
			StaticDir: staticDir,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		return web.Serve(ctx, addr, router, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :3000)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static", "", "Serve static assets from this directory instead of the embedded page")
	rootCmd.AddCommand(serveCmd)
}
