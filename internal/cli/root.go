// Package cli implements timesheetctl, the administrative command line:
// reports, CSV import and export against the configured storage backend,
// and password hashing for the server configuration.
package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/timesheet/internal/buildinfo"
	"github.com/dmitrijs2005/timesheet/internal/logging"
	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// openRepos is replaced in tests.
var openRepos = repomanager.New

type options struct {
	configPath string
	storage    string
	csvPath    string
	dsn        string
}

// configArgs turns the persistent flags into the server's short flags so
// the same precedence rules apply.
func (o *options) configArgs() []string {
	var args []string
	add := func(flag, value string) {
		if value != "" {
			args = append(args, flag, value)
		}
	}
	add("-c", o.configPath)
	add("-r", o.storage)
	add("-f", o.csvPath)
	add("-d", o.dsn)
	return args
}

func (o *options) load() (*config.Config, error) {
	return config.Load(o.configArgs())
}

// withRepos opens the configured backend for the duration of fn.
func (o *options) withRepos(ctx context.Context, fn func(cfg *config.Config, repos repomanager.RepositoryManager) error) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	repos, err := openRepos(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()
	return fn(cfg, repos)
}

func logger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	return logging.NewJSON(cmd.ErrOrStderr(), cfg.LogLevel)
}

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "timesheetctl",
		Short:         "Administer a timesheet store",
		Long:          "timesheetctl prints hour reports and moves entries in and out of the storage backend the server is configured with.",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "JSON config file")
	pf.StringVar(&o.storage, "storage", "", "storage backend: csv, postgres, sqlite")
	pf.StringVar(&o.csvPath, "csv", "", "CSV entry file")
	pf.StringVar(&o.dsn, "dsn", "", "database DSN")

	root.AddCommand(
		newReportCmd(o),
		newWeekCmd(o),
		newImportCmd(o),
		newExportCmd(o),
		newHashPasswordCmd(),
	)
	return root
}
