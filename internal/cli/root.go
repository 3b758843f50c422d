package cli

import (
	"encoding/json"
	"fmt"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Version is set by the caller when creating the root command
var cliVersion string

// NewRootCmd creates the root command with all subcommands.
// Run without a subcommand it patches the configured target with the
// built-in fix, exactly like "scraperfix patch".
func NewRootCmd(cfg config.Config, version string) *cobra.Command {
	cliVersion = version

	rootCmd := &cobra.Command{
		Use:   "scraperfix",
		Short: "Patch PriceScraperService.java",
		Long: titleStyle.Render("scraperfix") + " " + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(version) + "\n" +
			"  Removes the duplicated Spotify case and adds the missing DeepSeek\n" +
			"  and Gemini price extractors to the subscription tracker's scraper.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, cfg, cfg.TargetPath(), patchFlags{rulesFile: cfg.RulesFile})
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(newPatchCmd(cfg))
	rootCmd.AddCommand(newRulesCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scraperfix %s\n", cliVersion)
		},
	}
}

// tryJSON prints v and reports true if --json was set. A value that cannot
// be encoded is an error rather than a silent fall back to the table view.
func tryJSON(cmd *cobra.Command, v interface{}) (bool, error) {
	jsonFlag, _ := cmd.Flags().GetBool("json")
	if !jsonFlag {
		return false, nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return true, fmt.Errorf("failed to encode JSON output: %w", err)
	}
	fmt.Println(string(out))
	return true, nil
}
