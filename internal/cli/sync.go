// ABOUTME: Sync subcommand for the Charm-backed card mirror
// ABOUTME: Pushes and pulls mirrored cards, links devices and repairs or rebuilds the mirror
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/proto"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/oracle/internal/charm"
)

var (
	repairForce bool
	syncYes     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the charm card mirror between devices",
	Long: `Keep the charm card mirror in step across devices.

Cards land in the mirror with 'oracle ingest --store charm'. Every device
linked to the same Charm account (SSH key auth) sees the same cards.

Examples:
  oracle sync status
  oracle sync now
  oracle sync repair --force`,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the mirror and its Charm account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCharm(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Mirror:    %s\n", cfg.Store.CharmDB)
		fmt.Printf("Server:    %s\n", charm.GetCharmHost())
		fmt.Printf("Auto-sync: %t\n", cfg.Store.CharmAutoSync)

		if n, err := c.Count(cmd.Context()); err == nil {
			fmt.Printf("Cards:     %d\n", n)
		} else {
			color.Yellow("Cards:     unreadable (%v)", err)
		}

		id, err := c.ID()
		if err != nil {
			color.Yellow("Account:   not linked")
			fmt.Println("\nRun 'oracle sync link' to share the mirror with another device.")
			return nil
		}
		color.Green("Account:   %s", id)
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Push and pull mirror changes immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCharm(cfg)
		if err != nil {
			return err
		}
		if !c.IsLinked() {
			color.Yellow("Not linked to a Charm account.")
			fmt.Println("Run 'oracle sync link' first.")
			return nil
		}

		before, _ := c.Count(cmd.Context())
		if err := c.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		after, err := c.Count(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("Synced. %d cards in mirror (%+d).", after, after-before)
		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to the account that holds the mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := client.NewClientWithDefaults()
		if err != nil {
			return fmt.Errorf("failed to create Charm client: %w", err)
		}
		if _, err := cc.ID(); err == nil {
			color.Green("Already linked. Run 'oracle sync now' to pull the mirror.")
			return nil
		}

		fmt.Println("Enter the code below on a device that already holds the mirror.")
		if err := cc.LinkGen(&linkHandler{in: os.Stdin}); err != nil {
			return fmt.Errorf("link failed: %w", err)
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Stop syncing the mirror on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(os.Stdin, "The local mirror stays readable but will stop syncing.", "unlink") {
			fmt.Println("Aborted.")
			return nil
		}

		cc, err := client.NewClientWithDefaults()
		if err != nil {
			return fmt.Errorf("failed to create Charm client: %w", err)
		}
		keys, err := cc.AuthorizedKeysWithMetadata()
		if err != nil {
			return fmt.Errorf("failed to get authorized keys: %w", err)
		}
		for _, key := range keys.Keys {
			if key.Key == "" {
				continue
			}
			if err := cc.UnlinkAuthorizedKey(key.Key); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to unlink key: %v\n", err)
			}
		}

		color.Green("Device unlinked.")
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair a corrupted mirror",
	Long: `Check and repair the mirror's local database without opening it.

Use --force to attempt recovery and pull a fresh copy from Charm when the
integrity check still fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Repairing card mirror %s...\n", cfg.Store.CharmDB)

		result, err := charm.RepairDB(cfg.Store.CharmDB, repairForce)
		if err != nil {
			return fmt.Errorf("repair failed: %w", err)
		}

		steps := []struct {
			done  bool
			label string
		}{
			{result.WalCheckpointed, "WAL checkpointed"},
			{result.ShmRemoved, "SHM file removed"},
			{result.Vacuumed, "database vacuumed"},
			{result.RecoveryAttempted, "recovery attempted"},
			{result.ResetFromCloud, "mirror pulled from Charm"},
		}
		for _, step := range steps {
			if step.done {
				color.Green("  ✓ %s", step.label)
			}
		}

		switch {
		case result.IntegrityOK:
			color.Green("Mirror is healthy.")
		case repairForce:
			color.Red("Mirror is unrecoverable. Run 'oracle sync reset' or re-ingest with --store charm.")
		default:
			color.Yellow("Integrity check failed. Run again with --force.")
		}
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the local mirror and pull it from Charm",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !syncYes && !confirm(os.Stdin, "The local mirror will be replaced by the copy on Charm.", "reset") {
			fmt.Println("Aborted.")
			return nil
		}

		if err := charm.ResetDB(cfg.Store.CharmDB); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		c, err := newCharm(cfg)
		if err != nil {
			return err
		}
		n, err := c.Count(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("Mirror reset. %d cards pulled.", n)
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the mirror locally and on Charm",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCharm(cfg)
		if err != nil {
			return err
		}
		if !syncYes && !confirm(os.Stdin, "Every mirrored card will be deleted here, on Charm and on linked devices.", "wipe") {
			fmt.Println("Aborted.")
			return nil
		}

		result, err := c.Wipe()
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		color.Green("Mirror wiped (%d cloud backups, %d local files).", result.CloudBackupsDeleted, result.LocalFilesDeleted)
		fmt.Println("Re-run 'oracle ingest --store charm' to rebuild it.")
		return nil
	},
}

// confirm prints warning and reports whether the user typed word.
func confirm(in io.Reader, warning, word string) bool {
	fmt.Println(warning)
	fmt.Printf("Type '%s' to confirm: ", word)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(answer) == word
}

func init() {
	syncRepairCmd.Flags().BoolVarP(&repairForce, "force", "f", false, "Attempt recovery when the integrity check fails")
	syncResetCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Skip confirmation")
	syncWipeCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Skip confirmation")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	rootCmd.AddCommand(syncCmd)
}

// linkHandler drives the interactive link flow.
type linkHandler struct {
	in io.Reader
}

func (lh *linkHandler) TokenCreated(l *proto.Link) {
	fmt.Printf("\nLink code: %s\n\nWaiting for approval...\n", l.Token)
}

func (lh *linkHandler) TokenSent(l *proto.Link) {}

func (lh *linkHandler) ValidToken(l *proto.Link) {}

func (lh *linkHandler) InvalidToken(l *proto.Link) {
	color.Red("Invalid or expired code.")
}

func (lh *linkHandler) Request(l *proto.Link) bool {
	fmt.Printf("\nLink request from %s\n", l.RequestAddr)
	return confirm(lh.in, "Approving shares the card mirror with that device.", "y")
}

func (lh *linkHandler) RequestDenied(l *proto.Link) {
	fmt.Println("Link request denied.")
}

func (lh *linkHandler) SameUser(l *proto.Link) {
	color.Green("\nLinked. Run 'oracle sync now' to pull the mirror.")
}

func (lh *linkHandler) Success(l *proto.Link) {
	color.Green("\nLinked. Run 'oracle sync now' to pull the mirror.")
}

func (lh *linkHandler) Timeout(l *proto.Link) {
	fmt.Println("\nLink request timed out.")
}

func (lh *linkHandler) Error(l *proto.Link) {
	color.Red("\nLink failed.")
}
