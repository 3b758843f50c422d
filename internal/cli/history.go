package cli

import (
	"fmt"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/config"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded patch runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer db.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := db.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if printed, err := tryJSON(cmd, runs); printed || err != nil {
				return err
			}

			fmt.Println(titleStyle.Render("History") + " " + dimStyle.Render(db.Path()))
			if len(runs) == 0 {
				fmt.Println("No patch runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				state := "written"
				if !run.Written {
					state = "dry run"
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.RunID[:min(8, len(run.RunID))],
					fmt.Sprintf("%d/%d", run.Matched(), len(run.Results)),
					state,
					run.Path,
				})
			}
			RenderTable([]string{"STARTED", "RUN", "MATCHED", "STATE", "PATH"}, rows)
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}
