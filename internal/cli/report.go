package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/dmitrijs2005/timesheet/internal/timesheet"
	"github.com/spf13/cobra"
)

const (
	formatMarkdown = "md"
	formatCSV      = "csv"
	formatJSON     = "json"
)

var reportKeyHeaders = map[string]string{
	"daily":   "Date",
	"weekly":  "Week",
	"weekday": "Day",
}

func newReportCmd(o *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:       "report daily|weekly|weekday",
		Short:     "Print an hours report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"daily", "weekly", "weekday"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			return o.withRepos(cmd.Context(), func(cfg *config.Config, repos repomanager.RepositoryManager) error {
				rs := services.NewReportService(repos, cfg.ReferenceYear)

				var (
					m   timesheet.Matrix
					err error
				)
				switch kind {
				case "daily":
					m, err = rs.Daily(cmd.Context())
				case "weekly":
					m, err = rs.Weekly(cmd.Context())
				default:
					m, err = rs.Weekday(cmd.Context())
				}
				if err != nil {
					return err
				}
				return writeMatrix(cmd.OutOrStdout(), format, reportKeyHeaders[kind], m)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "output format: md, csv, json")
	return cmd
}

func writeMatrix(w io.Writer, format, keyHeader string, m timesheet.Matrix) error {
	switch format {
	case formatCSV:
		return services.WriteMatrixCSV(w, keyHeader, m)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case formatMarkdown:
		return writeMarkdown(w, keyHeader, m)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeMarkdown prints a pipe table with a Total column, hours as H:MM.
func writeMarkdown(w io.Writer, keyHeader string, m timesheet.Matrix) error {
	if len(m.Keys) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}

	header := append(append([]string{keyHeader}, m.Names...), "Total")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Join(sep, "|") + "|\n")

	totals := m.Totals()
	for i, k := range m.Keys {
		row := make([]string, 0, len(header))
		row = append(row, k)
		for _, n := range m.Names {
			row = append(row, timesheet.HoursToHM(m.Hours[n][i]))
		}
		row = append(row, timesheet.HoursToHM(totals[i]))
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
