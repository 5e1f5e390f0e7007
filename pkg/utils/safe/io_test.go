package safe_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/utils/safe"
)

func TestReadAll(t *testing.T) {
	t.Run("reads content within limit", func(t *testing.T) {
		data, err := safe.ReadAll(strings.NewReader("hello"), 5)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("hello")
	})

	t.Run("rejects content over limit", func(t *testing.T) {
		_, err := safe.ReadAll(strings.NewReader("hello world"), 5)
		gt.Error(t, err).Is(safe.ErrTooLarge)
	})

	t.Run("zero limit reads everything", func(t *testing.T) {
		data, err := safe.ReadAll(strings.NewReader("hello world"), 0)
		gt.NoError(t, err).Required()
		gt.Value(t, len(data)).Equal(11)
	})
}
