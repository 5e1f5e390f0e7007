package interfaces

import (
	"context"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

// MessageRepository persists imported Slack messages
type MessageRepository interface {
	// Create inserts a message. It returns ErrAlreadyExists when the channel already has a
	// message with the same timestamp.
	Create(ctx context.Context, msg *model.Message) error

	// GetByTimestamp returns the message with the given Slack timestamp or ErrNotFound
	GetByTimestamp(ctx context.Context, channelID, ts string) (*model.Message, error)

	// LatestTimestamp returns the newest imported Slack timestamp of the channel,
	// or "" when nothing was imported yet
	LatestTimestamp(ctx context.Context, channelID string) (string, error)
}
