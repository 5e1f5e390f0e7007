package slack

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	model "github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
	"github.com/slack-go/slack"
)

const (
	// DefaultHTTPTimeout bounds every single Slack API call
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultMaxDownloadSize is the largest file that will be downloaded
	DefaultMaxDownloadSize = 50 << 20
)

// ErrDownloadTooLarge is returned when a file exceeds the download size limit
var ErrDownloadTooLarge = goerr.New("file exceeds download size limit")

// client implements Service interface
type client struct {
	api             *slack.Client
	httpTimeout     time.Duration
	apiURL          string
	maxDownloadSize int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPTimeout sets the timeout of each Slack API call
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.httpTimeout = timeout
	}
}

// WithAPIURL overrides the Slack API endpoint. The URL must end with a slash.
func WithAPIURL(apiURL string) Option {
	return func(c *client) {
		c.apiURL = apiURL
	}
}

// WithMaxDownloadSize sets the download size limit in bytes
func WithMaxDownloadSize(size int) Option {
	return func(c *client) {
		c.maxDownloadSize = size
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		httpTimeout:     DefaultHTTPTimeout,
		maxDownloadSize: DefaultMaxDownloadSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	apiOpts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: c.httpTimeout}),
	}
	if c.apiURL != "" {
		apiURL := c.apiURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		apiOpts = append(apiOpts, slack.OptionAPIURL(apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// History fetches one page of conversation history. Bounds are inclusive.
// Rate limit errors are returned unwrapped as *slack.RateLimitedError in the chain.
func (c *client) History(ctx context.Context, query interfaces.HistoryQuery) (*interfaces.HistoryPage, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: query.ChannelID,
		Cursor:    query.Cursor,
		Inclusive: true,
		Latest:    query.Latest,
		Oldest:    query.Oldest,
		Limit:     query.Limit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get conversation history",
			goerr.V("channel_id", query.ChannelID),
			goerr.V("cursor", query.Cursor))
	}

	page := &interfaces.HistoryPage{
		Messages:   make([]model.Message, 0, len(resp.Messages)),
		NextCursor: resp.ResponseMetaData.NextCursor,
	}
	for _, m := range resp.Messages {
		page.Messages = append(page.Messages, model.NewMessageFromSlack(query.ChannelID, m))
	}
	// the cursor is only meaningful while has_more is set
	if !resp.HasMore {
		page.NextCursor = ""
	}

	return page, nil
}

// Download fetches a private file with the bot token as bearer credential
func (c *client) Download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, goerr.New("download URL is required")
	}

	buf := &limitedBuffer{limit: c.maxDownloadSize}
	if err := c.api.GetFileContext(ctx, url, buf); err != nil {
		if buf.exceeded {
			return nil, goerr.Wrap(ErrDownloadTooLarge, "failed to download file",
				goerr.V("url", url), goerr.V("limit", c.maxDownloadSize))
		}
		return nil, goerr.Wrap(err, "failed to download file", goerr.V("url", url))
	}

	return buf.Bytes(), nil
}

// GetChannel retrieves the channel info
func (c *client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get channel info", goerr.V("channel_id", channelID))
	}

	return &Channel{
		ID:       info.ID,
		Name:     info.Name,
		IsMember: info.IsMember,
	}, nil
}

// limitedBuffer fails writes beyond limit bytes. A limit of zero or less disables the check.
type limitedBuffer struct {
	bytes.Buffer
	limit    int
	exceeded bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit > 0 && b.Len()+len(p) > b.limit {
		b.exceeded = true
		return 0, ErrDownloadTooLarge
	}
	return b.Buffer.Write(p)
}
