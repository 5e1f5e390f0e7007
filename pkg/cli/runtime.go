package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/service/slack"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

// syncDeps groups the settings needed to build a sync capable UseCases
type syncDeps struct {
	app     *config.AppConfig
	slack   *config.Slack
	storage *config.Storage
	sync    *config.Sync
}

// newUseCases wires the Slack source and blob store into the use cases. Sync stays
// unconfigured without a bot token and channel; Run then reports ErrSyncNotConfigured.
func newUseCases(ctx context.Context, repo interfaces.Repository, deps syncDeps, opts ...usecase.Option) (*usecase.UseCases, slack.Service, error) {
	loc, err := deps.sync.Location()
	if err != nil {
		return nil, nil, err
	}

	ucOpts := []usecase.Option{usecase.WithLocation(loc)}
	if len(deps.app.RejectionReasons) > 0 {
		ucOpts = append(ucOpts, usecase.WithRejectionReasons(deps.app.RejectionReasons))
	}

	svc, err := deps.slack.Configure()
	if err != nil {
		return nil, nil, err
	}

	if svc != nil && deps.slack.ChannelID() != "" {
		blob, err := deps.storage.Configure(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize blob storage")
		}

		syncOpts, err := deps.sync.Options(deps.slack.ChannelID())
		if err != nil {
			return nil, nil, err
		}

		ucOpts = append(ucOpts,
			usecase.WithMessageSource(svc),
			usecase.WithBlobStore(blob),
			usecase.WithSyncOptions(syncOpts...),
		)
		logging.Default().Info("Slack sync enabled", "channel_id", deps.slack.ChannelID())
	} else {
		logging.Default().Warn("Slack bot token or channel not configured, sync is disabled")
	}

	ucOpts = append(ucOpts, opts...)
	return usecase.New(repo, ucOpts...), svc, nil
}

func closeRepository(repo interfaces.Repository) {
	if err := repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
}
