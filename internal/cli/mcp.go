// ABOUTME: MCP subcommand for running the oracle MCP server
// ABOUTME: Handles stdio transport initialization and server lifecycle
package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the oracle MCP server over stdio",
	Long:  `Start the Model Context Protocol server for AI assistants to use the card tools over stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := log.FromContext(ctx)

		gw, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}
		connectGateway(ctx, gw, cfg, logger)
		defer func() { _ = gw.Disconnect() }()

		// Create and run server
		server := mcp.NewServer(newScryfall(cfg, logger), gw, logger)
		return server.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
