package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
)

// SlackUseCases imports photos posted to the sync channel as they arrive
type SlackUseCases struct {
	sync *SyncUseCase
}

// NewSlackUseCases creates a new SlackUseCases instance
func NewSlackUseCases(sync *SyncUseCase) *SlackUseCases {
	return &SlackUseCases{sync: sync}
}

// HandleSlackEvent processes Slack Events API events. Events other than human messages
// with files in the sync channel are ignored and return a nil result.
func (uc *SlackUseCases) HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) (*model.SyncResult, error) {
	logger := logging.From(ctx)

	msg, err := slack.NewMessageFromEvent(event)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read slack event")
	}
	if msg == nil {
		logger.Debug("ignored slack event", "type", event.Type, "inner_type", event.InnerEvent.Type)
		return nil, nil
	}

	if msg.IsBot() || !msg.HasFiles() {
		return nil, nil
	}
	if msg.ChannelID != uc.sync.ChannelID() {
		logger.Debug("ignored message from other channel", "channel_id", msg.ChannelID)
		return nil, nil
	}

	result, err := uc.sync.ImportMessage(ctx, *msg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to import message", goerr.V(ChannelIDKey, msg.ChannelID), goerr.V("ts", msg.Timestamp))
	}

	logger.Info("slack message imported",
		"channel_id", msg.ChannelID,
		"ts", msg.Timestamp,
		"imported", result.ImportedCount,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors))
	return result, nil
}
