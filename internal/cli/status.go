// ABOUTME: Status subcommand for checking the card database connection
// ABOUTME: Connects through the gateway, probes readiness and reports collection stats
package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/gateway"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the card database connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := log.FromContext(ctx)

		fmt.Printf("Scryfall:   %s\n", cfg.Scryfall.BaseURL)
		fmt.Printf("Store:      %s\n", cfg.Store.Driver)

		if !cfg.HasDatabase() {
			color.Yellow("Database:   not configured")
			fmt.Println("\nSet WEAVIATE_URL and WEAVIATE_API_KEY (or [weaviate] in the config file) to enable database tools.")
			return nil
		}

		gw, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = gw.Disconnect() }()

		endpoint := gateway.NormalizeEndpoint(gateway.Config{URL: cfg.Weaviate.URL})
		fmt.Printf("Weaviate:   %s://%s\n", endpoint.Scheme, endpoint.Host)
		fmt.Printf("Collection: %s\n", cfg.Weaviate.Collection)
		fmt.Printf("Readiness:  %s\n", gw.Readiness())

		if err := gw.Connect(ctx, gateway.Config{URL: cfg.Weaviate.URL, APIKey: cfg.Weaviate.APIKey}); err != nil {
			color.Red("Database:   not connected (%v)", err)
			return nil
		}

		if !gw.TestConnection(ctx) {
			color.Yellow("Database:   connected but not responding to health checks")
			return nil
		}
		color.Green("Database:   connected and ready")

		backend, err := gw.Backend()
		if err != nil {
			return nil
		}
		stats, err := backend.Stats(ctx)
		if err != nil {
			color.Yellow("Stats:      unavailable (%v)", err)
			return nil
		}
		fmt.Printf("Cards:      %d\n", stats.Objects)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
