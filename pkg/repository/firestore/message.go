package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
	"google.golang.org/api/iterator"
)

// messageDocument is stored at slack_channels/{channel}/messages/{ts}
type messageDocument struct {
	ID        string    `firestore:"id"`
	ChannelID string    `firestore:"channel_id"`
	Timestamp string    `firestore:"ts"`
	TSMicros  int64     `firestore:"ts_micros"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

type messageRepository struct {
	client *firestore.Client
	names  *collectionNames
}

var _ interfaces.MessageRepository = &messageRepository{}

func (r *messageRepository) messagesCollection(channelID string) *firestore.CollectionRef {
	return r.client.Collection(r.names.name(ChannelsCollection)).Doc(channelID).Collection(MessagesCollection)
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	t, err := slack.ParseTimestamp(msg.Timestamp)
	if err != nil {
		return goerr.Wrap(err, "invalid message timestamp", goerr.V("id", msg.ID))
	}

	doc := &messageDocument{
		ID:        string(msg.ID),
		ChannelID: msg.ChannelID,
		Timestamp: msg.Timestamp,
		TSMicros:  t.UnixMicro(),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}

	// Create fails with AlreadyExists when the timestamp was imported before
	if _, err := r.messagesCollection(msg.ChannelID).Doc(msg.Timestamp).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "message already exists",
				goerr.V("channel_id", msg.ChannelID), goerr.V("ts", msg.Timestamp))
		}
		return goerr.Wrap(err, "failed to create message",
			goerr.V("channel_id", msg.ChannelID), goerr.V("ts", msg.Timestamp))
	}
	return nil
}

func (r *messageRepository) GetByTimestamp(ctx context.Context, channelID, ts string) (*model.Message, error) {
	snap, err := r.messagesCollection(channelID).Doc(ts).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "message not found",
				goerr.V("channel_id", channelID), goerr.V("ts", ts))
		}
		return nil, goerr.Wrap(err, "failed to get message", goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}

	var doc messageDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal message", goerr.V("ts", ts))
	}
	return messageToModel(&doc), nil
}

func (r *messageRepository) LatestTimestamp(ctx context.Context, channelID string) (string, error) {
	iter := r.messagesCollection(channelID).OrderBy("ts_micros", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return "", nil
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to query latest message", goerr.V("channel_id", channelID))
	}

	var doc messageDocument
	if err := snap.DataTo(&doc); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal message")
	}
	return doc.Timestamp, nil
}

func messageToModel(doc *messageDocument) *model.Message {
	return &model.Message{
		ID:        model.MessageID(doc.ID),
		ChannelID: doc.ChannelID,
		Timestamp: doc.Timestamp,
		Text:      doc.Text,
		CreatedAt: doc.CreatedAt,
	}
}
