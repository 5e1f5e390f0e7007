package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds the Slack API and webhook settings
type Slack struct {
	botToken      string
	channelID     string
	signingSecret string
	apiURL        string
	httpTimeout   time.Duration
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (channels:history, files:read)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("SHELFCHECK_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Channel the retail photos are posted to",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("SHELFCHECK_SLACK_CHANNEL_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (enables the realtime event webhook)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("SHELFCHECK_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Override the Slack API endpoint",
			Category:    "Slack",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("SHELFCHECK_SLACK_API_URL"),
		},
		&cli.DurationFlag{
			Name:        "slack-http-timeout",
			Usage:       "Timeout of each Slack API call",
			Category:    "Slack",
			Value:       slack.DefaultHTTPTimeout,
			Destination: &x.httpTimeout,
			Sources:     cli.EnvVars("SHELFCHECK_SLACK_HTTP_TIMEOUT"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("channel_id", x.channelID),
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("api_url", x.apiURL),
		slog.Duration("http_timeout", x.httpTimeout),
	)
}

// ChannelID returns the source channel
func (x *Slack) ChannelID() string {
	return x.channelID
}

// IsConfigured reports whether a sync source can be built
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// IsWebhookConfigured checks if Slack webhook is configured
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// Configure creates the Slack service. It returns nil without a bot token.
func (x *Slack) Configure() (slack.Service, error) {
	if x.botToken == "" {
		return nil, nil
	}

	opts := []slack.Option{slack.WithHTTPTimeout(x.httpTimeout)}
	if x.apiURL != "" {
		opts = append(opts, slack.WithAPIURL(x.apiURL))
	}

	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
