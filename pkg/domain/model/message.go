package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageID is the internal identifier of an imported message
type MessageID string

func (id MessageID) String() string { return string(id) }

// NewMessageID generates a new message ID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// Message is one Slack message that carried at least one file. Timestamp is the Slack "ts"
// and is unique per channel.
type Message struct {
	ID        MessageID
	ChannelID string
	Timestamp string
	Text      string
	CreatedAt time.Time
}
