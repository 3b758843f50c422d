package cli

import (
	"fmt"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/config"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/history"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/patch"
	"github.com/spf13/cobra"
)

type patchFlags struct {
	rulesFile string
	dryRun    bool
	strict    bool
}

func newPatchCmd(cfg config.Config) *cobra.Command {
	var flags patchFlags

	cmd := &cobra.Command{
		Use:   "patch [path]",
		Short: "Apply the fix rules to a file",
		Long: "Apply the fix rules to a file, defaulting to the configured target.\n" +
			"Rules that find nothing to change are skipped; the file is overwritten\n" +
			"in place and no backup is kept.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.TargetPath()
			if len(args) == 1 {
				path = args[0]
			}
			if flags.rulesFile == "" {
				flags.rulesFile = cfg.RulesFile
			}
			return runPatch(cmd, cfg, path, flags)
		},
	}

	cmd.Flags().StringVar(&flags.rulesFile, "rules", "", "YAML rule file (default: built-in PriceScraperService fix)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Fail without writing if any rule does not match")

	return cmd
}

func runPatch(cmd *cobra.Command, cfg config.Config, path string, flags patchFlags) error {
	ctx := cmd.Context()

	rules, err := patch.ResolveRules(ctx, flags.rulesFile)
	if err != nil {
		return err
	}
	p, err := patch.New(rules)
	if err != nil {
		return err
	}

	var journal *history.DB
	if cfg.HistoryPath != "" {
		journal, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer journal.Close()
		p.WithRecorder(journal)
	}

	var previous *history.Run
	if journal != nil {
		// Looked up before the run so the new entry is not its own predecessor.
		if previous, err = journal.LastForPath(ctx, path); err != nil {
			PrintWarning(fmt.Sprintf("could not read history: %v", err))
		}
	}

	report, err := p.Patch(ctx, path, patch.Options{DryRun: flags.dryRun, Strict: flags.strict})
	if err != nil {
		return err
	}

	if printed, err := tryJSON(cmd, report); printed || err != nil {
		return err
	}

	if flags.dryRun {
		PrintSuccess("Dry run complete, nothing written")
	} else {
		PrintSuccess("Fixed successfully!")
	}
	printResults(report.Results)

	if previous != nil && previous.AfterSum == report.BeforeSum && report.Matched() > 0 {
		PrintWarning(fmt.Sprintf("%s was already patched by run %s; rules were applied again", path, previous.RunID))
	}
	return nil
}

func printResults(results []patch.RuleResult) {
	for _, res := range results {
		if res.Matched {
			fmt.Printf("  %s %s %s\n", GetMatchDot(true), res.Name, dimStyle.Render(fmt.Sprintf("(%d)", res.Count)))
		} else {
			fmt.Printf("  %s %s %s\n", GetMatchDot(false), res.Name, dimStyle.Render("no match"))
		}
	}
}
