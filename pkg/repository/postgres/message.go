package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
)

type messageRepository struct {
	db *sql.DB
}

var _ interfaces.MessageRepository = &messageRepository{}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	t, err := slack.ParseTimestamp(msg.Timestamp)
	if err != nil {
		return goerr.Wrap(err, "invalid message timestamp", goerr.V("id", msg.ID))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO messages (id, channel_id, slack_ts, ts_micros, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(msg.ID), msg.ChannelID, msg.Timestamp, t.UnixMicro(), msg.Text, msg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "message already exists",
				goerr.V("channel_id", msg.ChannelID), goerr.V("ts", msg.Timestamp))
		}
		return goerr.Wrap(err, "failed to insert message", goerr.V("ts", msg.Timestamp))
	}
	return nil
}

func (r *messageRepository) GetByTimestamp(ctx context.Context, channelID, ts string) (*model.Message, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var msg model.Message
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, channel_id, slack_ts, text, created_at
		FROM messages WHERE channel_id = $1 AND slack_ts = $2`, channelID, ts).
		Scan(&id, &msg.ChannelID, &msg.Timestamp, &msg.Text, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "message not found",
			goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select message", goerr.V("ts", ts))
	}
	msg.ID = model.MessageID(id)
	return &msg, nil
}

func (r *messageRepository) LatestTimestamp(ctx context.Context, channelID string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ts string
	err := r.db.QueryRowContext(ctx, `
		SELECT slack_ts FROM messages WHERE channel_id = $1
		ORDER BY ts_micros DESC LIMIT 1`, channelID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to select latest message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}
