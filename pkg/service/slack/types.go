package slack

import (
	"context"

	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
)

// Service is the Slack Web API surface used by shelfcheck
type Service interface {
	interfaces.MessageSource

	// GetChannel resolves the channel and reports whether the bot is a member.
	// Used by the validate command to check the configured channel before a sync.
	GetChannel(ctx context.Context, channelID string) (*Channel, error)
}

// Channel represents a Slack channel
type Channel struct {
	ID       string
	Name     string
	IsMember bool
}
