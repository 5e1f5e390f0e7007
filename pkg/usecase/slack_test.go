package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/slack-go/slack/slackevents"
)

func parseEvent(t *testing.T, inner map[string]any) *slackevents.EventsAPIEvent {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"type":       "event_callback",
		"team_id":    "T0001",
		"api_app_id": "A0001",
		"event":      inner,
		"event_id":   "Ev0001",
		"event_time": 1714730400,
	})
	gt.NoError(t, err).Required()

	ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	gt.NoError(t, err).Required()
	return &ev
}

func messageEvent(channel, ts string, extra map[string]any) map[string]any {
	inner := map[string]any{
		"type":    "message",
		"channel": channel,
		"user":    "U0001",
		"text":    "Walmart Downtown",
		"ts":      ts,
		"files": []map[string]any{
			{"id": "F1", "name": "shelf.jpg", "mimetype": "image/jpeg", "url_private_download": "https://files/shelf"},
		},
	}
	for k, v := range extra {
		inner[k] = v
	}
	return inner
}

func TestHandleSlackEvent(t *testing.T) {
	ctx := context.Background()
	ts := slack.FormatTimestamp(time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC))

	t.Run("imports a photo posted to the sync channel", func(t *testing.T) {
		f := newSyncFixture()
		uc := usecase.NewSlackUseCases(f.useCase())

		result, err := uc.HandleSlackEvent(ctx, parseEvent(t, messageEvent(testChannel, ts, nil)))
		gt.NoError(t, err).Required()
		gt.Value(t, result.ImportedCount).Equal(1)

		p, err := f.repo.Photo().GetBySourceKey(ctx, fmt.Sprintf("%s:0", ts))
		gt.NoError(t, err).Required()
		gt.Value(t, p.RawText).Equal("Walmart Downtown")
	})

	ignored := map[string]map[string]any{
		"other channel": messageEvent("C9999999999", ts, nil),
		"bot message":   messageEvent(testChannel, ts, map[string]any{"bot_id": "B0001"}),
		"no files":      messageEvent(testChannel, ts, map[string]any{"files": []any{}}),
		"reaction":      {"type": "reaction_added", "user": "U0001", "reaction": "+1"},
	}
	for name, inner := range ignored {
		t.Run("ignores "+name, func(t *testing.T) {
			f := newSyncFixture()
			uc := usecase.NewSlackUseCases(f.useCase())

			result, err := uc.HandleSlackEvent(ctx, parseEvent(t, inner))
			gt.NoError(t, err).Required()
			gt.Value(t, result).Nil()
			gt.Array(t, f.source.downloads).Length(0)
		})
	}
}
