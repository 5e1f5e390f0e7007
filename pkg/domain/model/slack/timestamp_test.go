package slack_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("keeps microseconds", func(t *testing.T) {
		got, err := slack.ParseTimestamp("1770000000.000100")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Unix()).Equal(int64(1770000000))
		gt.Value(t, got.Nanosecond()).Equal(100000)
	})

	t.Run("accepts integer seconds", func(t *testing.T) {
		got, err := slack.ParseTimestamp("100")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Equal(time.Unix(100, 0))).Equal(true)
	})

	t.Run("short fraction", func(t *testing.T) {
		got, err := slack.ParseTimestamp("100.5")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Equal(time.Unix(100, 500000000))).Equal(true)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := slack.ParseTimestamp("abc")
		gt.Error(t, err).Is(slack.ErrInvalidTimestamp)
		_, err = slack.ParseTimestamp("")
		gt.Error(t, err).Is(slack.ErrInvalidTimestamp)
		_, err = slack.ParseTimestamp("1.x")
		gt.Error(t, err).Is(slack.ErrInvalidTimestamp)
	})
}

func TestMessageDate(t *testing.T) {
	got, err := slack.MessageDate("1770000000.000100")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Equal(time.UnixMilli(1770000000000))).Equal(true)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 2, 10, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	s := slack.FormatTimestamp(ts)
	gt.Value(t, s).Equal("1770767999.999000")

	back, err := slack.ParseTimestamp(s)
	gt.NoError(t, err).Required()
	gt.Value(t, back.Equal(ts)).Equal(true)
}

func TestCompareTimestamps(t *testing.T) {
	c, err := slack.CompareTimestamps("100.5", "100.000600")
	gt.NoError(t, err).Required()
	gt.Value(t, c).Equal(1)
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "a.jpg", "a.jpg"},
		{"spaces and symbols", "my photo (1).jpg", "my_photo_1_.jpg"},
		{"unicode", "店舗.png", "png"},
		{"empty", "", "image"},
		{"only symbols", "???", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, slack.SanitizeFileName(tt.in)).Equal(tt.want)
		})
	}
}

func TestBlobNameAndSourceKey(t *testing.T) {
	gt.Value(t, slack.BlobName("100.5", 0, "a.jpg")).Equal("100.5-0-a.jpg")
	gt.Value(t, slack.SourceKey("100.5", 2)).Equal("100.5:2")
}
