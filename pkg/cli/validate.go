package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var slackCfg config.Slack
	var syncCfg config.Sync

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally check the Slack channel",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: configuration file and sync settings
			if appCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingSetting, "validate requires a configuration file", goerr.V(config.FlagKey, "config"))
			}
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if _, err := syncCfg.Options(slackCfg.ChannelID()); err != nil {
				return goerr.Wrap(err, "sync settings are invalid")
			}

			logger.Info("Configuration validation passed",
				"stores", len(appCfg.Stores),
				"contests", len(appCfg.Contests),
				"admins", len(appCfg.Admins),
			)

			// Step 2: with Slack credentials, check the bot can read the channel
			if !slackCfg.IsConfigured() {
				logger.Info("Slack bot token or channel not specified, skipping channel check")
				return nil
			}

			svc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			ch, err := svc.GetChannel(ctx, slackCfg.ChannelID())
			if err != nil {
				return goerr.Wrap(err, "failed to resolve Slack channel")
			}
			if !ch.IsMember {
				return goerr.New("bot is not a member of the channel",
					goerr.V("channel_id", ch.ID), goerr.V("channel_name", ch.Name))
			}

			logger.Info("Slack channel check passed", "channel_id", ch.ID, "channel_name", ch.Name)
			return nil
		},
	}
}
