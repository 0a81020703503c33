package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
	"github.com/spf13/cobra"
)

var now = time.Now

func newWeekCmd(o *options) *cobra.Command {
	var (
		start  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the seven days of one week per worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := now()
			if start != "" {
				t, ok := timesheet.ParseDate(start)
				if !ok {
					return fmt.Errorf("--start: %q is not a date", start)
				}
				from = t
			}

			return o.withRepos(cmd.Context(), func(cfg *config.Config, repos repomanager.RepositoryManager) error {
				v, err := services.NewReportService(repos, cfg.ReferenceYear).Week(cmd.Context(), from)
				if err != nil {
					return err
				}

				if format == formatJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(v)
				}

				labels := make([]string, len(v.Days))
				for i, d := range v.Days {
					labels[i] = d.Label + " " + d.LongLabel
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Week of %s\n\n", timesheet.FormatDateLong(v.Start))
				return writeMatrix(cmd.OutOrStdout(), format, "Day", transpose(v, labels))
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "any date in the week (default: today)")
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "output format: md, csv, json")
	return cmd
}

// transpose lays a week view out as a matrix keyed by day.
func transpose(v timesheet.WeekView, labels []string) timesheet.Matrix {
	return timesheet.Matrix{Keys: labels, Names: v.Names, Hours: v.Hours}
}
