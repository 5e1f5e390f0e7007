package interfaces

import (
	"context"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
)

// HistoryQuery is one page request to the message source. Oldest and Latest are Slack
// timestamps and are inclusive; empty means unbounded.
type HistoryQuery struct {
	ChannelID string
	Oldest    string
	Latest    string
	Limit     int
	Cursor    string
}

// HistoryPage is one page of messages, newest first
type HistoryPage struct {
	Messages   []slack.Message
	NextCursor string
}

// MessageSource is the paginated message history with bearer-authenticated file downloads
type MessageSource interface {
	History(ctx context.Context, query HistoryQuery) (*HistoryPage, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// BlobStore stores objects by name and returns their public URL. Put overwrites.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
