package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

func TestSyncRequest_Range(t *testing.T) {
	t.Run("end date includes the whole day", func(t *testing.T) {
		req := model.SyncRequest{EndDate: "2026-02-10"}
		r, err := req.Range(time.UTC)
		gt.NoError(t, err).Required()
		gt.Value(t, r.Start == nil).Equal(true)
		gt.Value(t, r.End).NotNil()

		gt.Bool(t, r.Contains(time.Date(2026, 2, 10, 23, 59, 58, 0, time.UTC))).True()
		gt.Bool(t, r.Contains(time.Date(2026, 2, 10, 23, 59, 59, int(999*time.Millisecond), time.UTC))).True()
		gt.Bool(t, r.Contains(time.Date(2026, 2, 11, 0, 0, 1, 0, time.UTC))).False()
	})

	t.Run("uses the given location", func(t *testing.T) {
		loc := time.FixedZone("JST", 9*60*60)
		req := model.SyncRequest{StartDate: "2026-02-01", EndDate: "2026-02-01"}
		r, err := req.Range(loc)
		gt.NoError(t, err).Required()
		gt.Bool(t, r.Start.Equal(time.Date(2026, 1, 31, 15, 0, 0, 0, time.UTC))).True()
		gt.Bool(t, r.End.Equal(time.Date(2026, 2, 1, 14, 59, 59, int(999*time.Millisecond), time.UTC))).True()
	})

	t.Run("empty request is unbounded", func(t *testing.T) {
		req := model.SyncRequest{}
		gt.Bool(t, req.IsEmpty()).True()
		r, err := req.Range(nil)
		gt.NoError(t, err).Required()
		gt.Bool(t, r.Contains(time.Unix(0, 0))).True()
	})

	t.Run("rejects invalid dates", func(t *testing.T) {
		_, err := model.SyncRequest{StartDate: "2026/02/01"}.Range(time.UTC)
		gt.Error(t, err).Is(model.ErrInvalidDate)

		_, err = model.SyncRequest{StartDate: "2026-02-02", EndDate: "2026-02-01"}.Range(time.UTC)
		gt.Error(t, err).Is(model.ErrInvalidDateRange)
	})
}

func TestSyncResult_AddError(t *testing.T) {
	var r model.SyncResult
	r.AddError("a.jpg", "download", errString("status 500"))
	gt.Array(t, r.Errors).Equal([]string{"a.jpg: download: status 500"})
}

type errString string

func (e errString) Error() string { return string(e) }

func TestSyncLock_IsExpired(t *testing.T) {
	now := time.Now()
	lock := &model.SyncLock{Holder: "h", ExpiresAt: now.Add(time.Minute)}
	gt.Bool(t, lock.IsExpired(now)).False()
	gt.Bool(t, lock.IsExpired(now.Add(time.Minute))).True()
}
