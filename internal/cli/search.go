// ABOUTME: Search and lookup commands for querying Scryfall from the terminal
// ABOUTME: Prints the same summaries the MCP tools return, or raw JSON
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/scryfall"
)

var (
	searchPage       int
	searchJSONOutput bool
	lookupFuzzy      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Scryfall using its search syntax",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newScryfall(cfg, log.FromContext(ctx))

		list, err := client.Search(ctx, args[0], searchPage)
		if err != nil {
			return err
		}

		// Output
		if searchJSONOutput {
			data, err := json.MarshalIndent(list, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println(scryfall.FormatSearch(list, searchPage))
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Look up a single card by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newScryfall(cfg, log.FromContext(ctx))

		found, err := client.Named(ctx, args[0], lookupFuzzy)
		if err != nil {
			return err
		}

		text, err := scryfall.FormatCard(found)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "Result page (175 cards per page)")
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json", false, "Output as JSON")
	lookupCmd.Flags().BoolVarP(&lookupFuzzy, "fuzzy", "f", false, "Tolerate minor misspellings")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(lookupCmd)
}
