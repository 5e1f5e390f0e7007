package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/service/worker"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// EpochLayout is the format of --sync-epoch
const EpochLayout = "2006-01-02"

// Sync holds the sync engine settings
type Sync struct {
	pageSize    int
	maxPages    int
	resume      string
	epoch       string
	lockTTL     time.Duration
	callTimeout time.Duration
	maxRetries  int
	interval    time.Duration
	maxRounds   int
	timezone    string
}

func (x *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "sync-page-size",
			Usage:       "Messages requested per history page",
			Category:    "Sync",
			Value:       usecase.DefaultSyncPageSize,
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_PAGE_SIZE"),
			Destination: &x.pageSize,
		},
		&cli.IntFlag{
			Name:        "sync-max-pages",
			Usage:       "History pages fetched by one sync run",
			Category:    "Sync",
			Value:       usecase.DefaultSyncMaxPages,
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_MAX_PAGES"),
			Destination: &x.maxPages,
		},
		&cli.StringFlag{
			Name:        "sync-resume",
			Usage:       "Lower bound when no start date is given [watermark|epoch]",
			Category:    "Sync",
			Value:       types.ResumeWatermark.String(),
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_RESUME"),
			Destination: &x.resume,
		},
		&cli.StringFlag{
			Name:        "sync-epoch",
			Usage:       "First date to import (YYYY-MM-DD); the whole history when empty",
			Category:    "Sync",
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_EPOCH"),
			Destination: &x.epoch,
		},
		&cli.DurationFlag{
			Name:        "sync-lock-ttl",
			Usage:       "Lease of the sync run lock",
			Category:    "Sync",
			Value:       usecase.DefaultSyncLockTTL,
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_LOCK_TTL"),
			Destination: &x.lockTTL,
		},
		&cli.DurationFlag{
			Name:        "sync-http-timeout",
			Usage:       "Timeout of each page request, download and upload of a run",
			Category:    "Sync",
			Value:       usecase.DefaultSyncCallTimeout,
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_HTTP_TIMEOUT"),
			Destination: &x.callTimeout,
		},
		&cli.IntFlag{
			Name:        "sync-max-retries",
			Usage:       "Retries of a rate limited history request",
			Category:    "Sync",
			Value:       usecase.DefaultSyncMaxRetries,
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_MAX_RETRIES"),
			Destination: &x.maxRetries,
		},
		&cli.DurationFlag{
			Name:        "sync-interval",
			Usage:       "Run the sync periodically in serve (disabled when 0)",
			Category:    "Sync",
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.IntFlag{
			Name:        "sync-max-rounds",
			Usage:       "Sync runs chained while more history remains",
			Category:    "Sync",
			Value:       worker.DefaultMaxRounds,
			Sources:     cli.EnvVars("SHELFCHECK_SYNC_MAX_ROUNDS"),
			Destination: &x.maxRounds,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "Time zone of calendar dates and payout weeks (IANA name)",
			Category:    "Sync",
			Value:       "Local",
			Sources:     cli.EnvVars("SHELFCHECK_TIMEZONE"),
			Destination: &x.timezone,
		},
	}
}

func (x Sync) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("page_size", x.pageSize),
		slog.Int("max_pages", x.maxPages),
		slog.String("resume", x.resume),
		slog.String("epoch", x.epoch),
		slog.Duration("interval", x.interval),
		slog.String("timezone", x.timezone),
	)
}

// Interval returns the periodic sync interval
func (x *Sync) Interval() time.Duration {
	return x.interval
}

// MaxRounds returns the number of chained runs
func (x *Sync) MaxRounds() int {
	return x.maxRounds
}

// Location resolves the configured time zone
func (x *Sync) Location() (*time.Location, error) {
	if x.timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(x.timezone)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidLocation, "failed to load time zone",
			goerr.V("timezone", x.timezone), goerr.V("error", err.Error()))
	}
	return loc, nil
}

// Options converts the flags into sync engine options
func (x *Sync) Options(channelID string) ([]usecase.SyncOption, error) {
	if x.pageSize <= 0 || x.maxPages <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "page size and max pages must be positive",
			goerr.V("page_size", x.pageSize), goerr.V("max_pages", x.maxPages))
	}

	resume, err := types.ParseResumeStrategy(x.resume)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid resume strategy", goerr.V("resume", x.resume))
	}

	loc, err := x.Location()
	if err != nil {
		return nil, err
	}

	opts := []usecase.SyncOption{
		usecase.WithSyncChannel(channelID),
		usecase.WithSyncPageSize(x.pageSize),
		usecase.WithSyncMaxPages(x.maxPages),
		usecase.WithSyncResume(resume),
		usecase.WithSyncLockTTL(x.lockTTL),
		usecase.WithSyncCallTimeout(x.callTimeout),
		usecase.WithSyncMaxRetries(x.maxRetries),
	}

	if x.epoch != "" {
		epoch, err := time.ParseInLocation(EpochLayout, x.epoch, loc)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "sync epoch must be YYYY-MM-DD", goerr.V("epoch", x.epoch))
		}
		opts = append(opts, usecase.WithSyncEpoch(epoch))
	}

	return opts, nil
}
