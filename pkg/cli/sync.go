package cli

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var req model.SyncRequest
	var all bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var slackCfg config.Slack
	var storageCfg config.Storage
	var syncCfg config.Sync

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "start",
			Usage:       "First calendar date to import (YYYY-MM-DD)",
			Destination: &req.StartDate,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "Last calendar date to import (YYYY-MM-DD, inclusive)",
			Destination: &req.EndDate,
		},
		&cli.BoolFlag{
			Name:        "all",
			Usage:       "Keep running while more history remains",
			Destination: &all,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Import image posts of the Slack channel once",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepository(repo)

			uc, _, err := newUseCases(ctx, repo, syncDeps{
				app:     &appCfg,
				slack:   &slackCfg,
				storage: &storageCfg,
				sync:    &syncCfg,
			})
			if err != nil {
				return err
			}

			var result *model.SyncResult
			if all {
				result, err = worker.Drain(ctx, uc.Sync, req, syncCfg.MaxRounds())
			} else {
				result, err = uc.Sync.Run(ctx, req)
			}
			if result != nil {
				printSyncResult(c.Root().Writer, result)
			}
			if err != nil {
				return goerr.Wrap(err, "sync failed")
			}
			return nil
		},
	}
}

func printSyncResult(w io.Writer, result *model.SyncResult) {
	label := color.New(color.Bold)
	if result.Success {
		_, _ = color.New(color.FgGreen, color.Bold).Fprintln(w, "Sync completed")
	} else {
		_, _ = color.New(color.FgRed, color.Bold).Fprintln(w, "Sync failed")
	}

	_, _ = label.Fprintf(w, "  imported: ")
	_, _ = color.New(color.FgCyan).Fprintf(w, "%d\n", result.ImportedCount)
	_, _ = label.Fprintf(w, "  scanned:  ")
	_, _ = color.New(color.FgCyan).Fprintf(w, "%d\n", result.ScannedCount)
	_, _ = label.Fprintf(w, "  skipped:  ")
	_, _ = color.New(color.FgCyan).Fprintf(w, "%d\n", result.SkippedCount)

	if result.HasMore {
		_, _ = color.New(color.FgYellow).Fprintln(w, "  more history remains, run again or use --all")
	}
	for _, e := range result.Errors {
		_, _ = color.New(color.FgYellow).Fprintf(w, "  ! %s\n", e)
	}
	if result.Error != "" {
		_, _ = color.New(color.FgRed).Fprintf(w, "  error: %s\n", result.Error)
	}
}
