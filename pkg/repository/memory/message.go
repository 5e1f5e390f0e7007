package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
)

type messageRepository struct {
	mu       sync.RWMutex
	messages map[model.MessageID]*model.Message
	// byTS indexes messages by channel and Slack timestamp
	byTS map[string]map[string]model.MessageID
}

var _ interfaces.MessageRepository = &messageRepository{}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[model.MessageID]*model.Message),
		byTS:     make(map[string]map[string]model.MessageID),
	}
}

func copyMessage(m *model.Message) *model.Message {
	c := *m
	return &c
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if msg == nil || msg.ID == "" {
		return goerr.New("message ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.byTS[msg.ChannelID]
	if !ok {
		channel = make(map[string]model.MessageID)
		r.byTS[msg.ChannelID] = channel
	}
	if _, exists := channel[msg.Timestamp]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "message already exists",
			goerr.V("channel_id", msg.ChannelID), goerr.V("ts", msg.Timestamp))
	}
	if _, exists := r.messages[msg.ID]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyExists, "message ID already exists", goerr.V("id", msg.ID))
	}

	channel[msg.Timestamp] = msg.ID
	r.messages[msg.ID] = copyMessage(msg)
	return nil
}

func (r *messageRepository) GetByTimestamp(ctx context.Context, channelID, ts string) (*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byTS[channelID][ts]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "message not found",
			goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}
	return copyMessage(r.messages[id]), nil
}

func (r *messageRepository) LatestTimestamp(ctx context.Context, channelID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := ""
	for ts := range r.byTS[channelID] {
		if latest == "" {
			latest = ts
			continue
		}
		c, err := slack.CompareTimestamps(ts, latest)
		if err != nil {
			return "", goerr.Wrap(err, "stored message has invalid timestamp", goerr.V("ts", ts))
		}
		if c > 0 {
			latest = ts
		}
	}
	return latest, nil
}
