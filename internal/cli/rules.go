package cli

import (
	"fmt"
	"strings"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/config"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/patch"
	"github.com/spf13/cobra"
)

func newRulesCmd(cfg config.Config) *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules a patch run applies, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rulesFile == "" {
				rulesFile = cfg.RulesFile
			}
			rules, err := patch.ResolveRules(cmd.Context(), rulesFile)
			if err != nil {
				return err
			}
			// List exactly what a patch run would apply, in its order.
			p, err := patch.New(rules)
			if err != nil {
				return err
			}
			rules = p.Rules()

			if printed, err := tryJSON(cmd, rules); printed || err != nil {
				return err
			}

			source := "built-in"
			if rulesFile != "" {
				source = rulesFile
			}
			fmt.Println(titleStyle.Render("Rules") + " " + dimStyle.Render(source))

			rows := make([][]string, 0, len(rules))
			for i, r := range rules {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					r.Name,
					GetKindBadge(string(r.Kind)),
					summarize(r),
				})
			}
			RenderTable([]string{"#", "NAME", "KIND", "EDIT"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rule file (default: built-in PriceScraperService fix)")
	return cmd
}

// summarize renders a one-line description of what a rule edits.
func summarize(r patch.Rule) string {
	switch r.Kind {
	case patch.KindInsertBeforeFinalBrace:
		lines := strings.Count(strings.Trim(r.Replacement, "\n"), "\n") + 1
		return fmt.Sprintf("insert %d lines before final }", lines)
	default:
		return truncate(oneLine(r.Pattern), 48)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
