package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
)

func TestPhotoStatus_IsValid(t *testing.T) {
	for _, s := range types.AllPhotoStatuses() {
		gt.Bool(t, s.IsValid()).True()
	}
	gt.Bool(t, types.PhotoStatus("PENDING").IsValid()).False()
	gt.Bool(t, types.PhotoStatus("").IsValid()).False()
}

func TestPhotoStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status types.PhotoStatus
		want   bool
	}{
		{types.PhotoStatusPending, false},
		{types.PhotoStatusApproved, true},
		{types.PhotoStatusRejected, true},
		{types.PhotoStatusRedundant, true},
		{types.PhotoStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			gt.Value(t, tt.status.IsTerminal()).Equal(tt.want)
		})
	}
}

func TestParsePhotoStatus(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := types.ParsePhotoStatus("approved")
		gt.NoError(t, err).Required()
		gt.Value(t, s).Equal(types.PhotoStatusApproved)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := types.ParsePhotoStatus("done")
		gt.Error(t, err)
	})
}

func TestParseResumeStrategyBasic(t *testing.T) {
	s, err := types.ParseResumeStrategy("epoch")
	gt.NoError(t, err).Required()
	gt.Value(t, s).Equal(types.ResumeEpoch)

	_, err = types.ParseResumeStrategy("latest")
	gt.Error(t, err)
}
