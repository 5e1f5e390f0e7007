package slack

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	libslack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Message is a channel message as returned by the history API or the Events API
type Message struct {
	ChannelID string
	Timestamp string
	Text      string
	BotID     string
	SubType   string
	Files     []File
}

// NewMessageFromSlack converts a slack-go history message
func NewMessageFromSlack(channelID string, m libslack.Message) Message {
	files := make([]File, 0, len(m.Files))
	for _, f := range m.Files {
		files = append(files, NewFileFromSlack(f))
	}
	return Message{
		ChannelID: channelID,
		Timestamp: m.Timestamp,
		Text:      m.Text,
		BotID:     m.BotID,
		SubType:   m.SubType,
		Files:     files,
	}
}

// NewMessageFromEvent extracts a message from an Events API callback. It returns nil for
// events that are not channel messages.
func NewMessageFromEvent(ev *slackevents.EventsAPIEvent) (*Message, error) {
	if ev == nil || ev.Type != slackevents.CallbackEvent || ev.InnerEvent.Type != "message" {
		return nil, nil
	}

	cb, ok := ev.Data.(*slackevents.EventsAPICallbackEvent)
	if !ok || cb.InnerEvent == nil {
		return nil, nil
	}

	// slack.Msg carries the full file metadata including url_private_download
	var raw libslack.Msg
	if err := json.Unmarshal(*cb.InnerEvent, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode message event")
	}

	msg := NewMessageFromSlack(raw.Channel, libslack.Message{Msg: raw})
	return &msg, nil
}

// HasFiles reports whether the message carries attachments
func (m Message) HasFiles() bool {
	return len(m.Files) > 0
}

// IsBot reports whether the message was posted by a bot
func (m Message) IsBot() bool {
	return m.BotID != "" || m.SubType == "bot_message"
}
