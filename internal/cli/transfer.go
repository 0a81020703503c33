package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timesheet/internal/server/services"
	"github.com/spf13/cobra"
)

func newImportCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|->",
		Short: "Import entries from a CSV file",
		Long:  "Rows are matched by header name. Rows without an ID get one; rows without a creation time are stamped now.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			return o.withRepos(cmd.Context(), func(cfg *config.Config, repos repomanager.RepositoryManager) error {
				es := services.NewEntryService(repos, nil, logger(cmd, cfg), cfg.MaxUploadSize)
				res, err := es.Import(cmd.Context(), in)
				if err != nil {
					return err
				}
				if res.Skipped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries, skipped %d\n", res.Imported, res.Skipped)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", res.Imported)
				}
				return nil
			})
		},
	}
}

func newExportCmd(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withRepos(cmd.Context(), func(cfg *config.Config, repos repomanager.RepositoryManager) error {
				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				es := services.NewEntryService(repos, nil, logger(cmd, cfg), cfg.MaxUploadSize)
				return es.Export(cmd.Context(), w)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
