// ABOUTME: Local subcommands for reading the sqlite and charm card mirrors
// ABOUTME: Get by card id, free-text search and record counts
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/config"
	"github.com/harper/oracle/internal/store"
)

var (
	localStore      string
	localLimit      int
	localJSONOutput bool
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Read cards from a local mirror",
	Long: `Read cards ingested into a local mirror.

Commands:
  get     - Show one card by Scryfall id
  search  - Find cards by name, type line or rules text
  count   - Count mirrored cards

Examples:
  oracle local count --store charm
  oracle local search "draw a card" -n 20`,
}

func openLocal() (mirror, error) {
	driver := localStore
	if driver == "" {
		driver = cfg.Store.Driver
		if driver == config.DriverWeaviate {
			driver = config.DriverSQLite
		}
	}
	return openMirror(cfg, driver)
}

var localGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one mirrored card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openLocal()
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()

		rec, err := m.Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			color.Yellow("No card with id %s", args[0])
			return nil
		}
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var localSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search mirrored cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openLocal()
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()

		records, err := m.Search(cmd.Context(), args[0], localLimit)
		if err != nil {
			return fmt.Errorf("failed to search cards: %w", err)
		}

		if localJSONOutput {
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		// Table output
		fmt.Println("ID\tSet\tName\tType\tMana")
		fmt.Println("--\t---\t----\t----\t----")
		for _, rec := range records {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.Set, rec.Name, rec.TypeLine, rec.ManaCost)
		}
		return nil
	},
}

var localCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count mirrored cards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openLocal()
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()

		n, err := m.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d cards\n", n)
		return nil
	},
}

func init() {
	localCmd.PersistentFlags().StringVar(&localStore, "store", "", "Mirror to read: sqlite or charm")
	localSearchCmd.Flags().IntVarP(&localLimit, "limit", "n", 25, "Maximum results")
	localSearchCmd.Flags().BoolVar(&localJSONOutput, "json", false, "Output as JSON")

	localCmd.AddCommand(localGetCmd)
	localCmd.AddCommand(localSearchCmd)
	localCmd.AddCommand(localCountCmd)
	rootCmd.AddCommand(localCmd)
}
