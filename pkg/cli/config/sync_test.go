package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/cli/config"
)

func TestSyncOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := config.NewSyncForTest("watermark", "", "UTC").Options("C0123456789")
		gt.NoError(t, err).Required()
		gt.Array(t, opts).Length(7)
	})

	t.Run("epoch adds an option", func(t *testing.T) {
		opts, err := config.NewSyncForTest("epoch", "2024-01-01", "Asia/Tokyo").Options("C0123456789")
		gt.NoError(t, err).Required()
		gt.Array(t, opts).Length(8)
	})

	t.Run("invalid resume strategy", func(t *testing.T) {
		_, err := config.NewSyncForTest("latest", "", "UTC").Options("C0123456789")
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid epoch", func(t *testing.T) {
		_, err := config.NewSyncForTest("epoch", "01/01/2024", "UTC").Options("C0123456789")
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid time zone", func(t *testing.T) {
		_, err := config.NewSyncForTest("watermark", "", "Mars/Olympus").Options("C0123456789")
		gt.Error(t, err).Is(config.ErrInvalidLocation)
	})
}

func TestSyncLocation(t *testing.T) {
	loc, err := config.NewSyncForTest("watermark", "", "Asia/Tokyo").Location()
	gt.NoError(t, err).Required()
	gt.Value(t, loc.String()).Equal("Asia/Tokyo")
}
