// ABOUTME: Root command definition and CLI setup
// ABOUTME: Loads .env and config, builds the logger and carries it in the command context
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/config"
	"github.com/harper/oracle/internal/logging"
)

var (
	configPath string
	verbose    bool

	// Populated by PersistentPreRunE for every subcommand.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Magic: The Gathering card tools over MCP",
	Long: `Oracle serves Scryfall card search and an optional Weaviate card collection
to AI assistants over the Model Context Protocol, and ingests Scryfall bulk
exports into a collection store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		logger := logging.New(os.Stderr, verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		cmd.SetContext(log.WithContext(cmd.Context(), logger))
		return nil
	},
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
