package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the calendar date format accepted for sync ranges
const DateLayout = "2006-01-02"

// SyncRequest is the optional calendar date range of a sync run. Empty strings mean unbounded.
type SyncRequest struct {
	StartDate string
	EndDate   string
}

// IsEmpty reports whether the request carries no explicit range
func (r SyncRequest) IsEmpty() bool {
	return strings.TrimSpace(r.StartDate) == "" && strings.TrimSpace(r.EndDate) == ""
}

// DateRange holds resolved absolute bounds. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls within the inclusive bounds
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Range resolves the request in loc. The start is the beginning of its day and the end is
// expanded to 23:59:59.999 of its day so same-day messages are included.
func (r SyncRequest) Range(loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}

	var dr DateRange
	if s := strings.TrimSpace(r.StartDate); s != "" {
		start, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return DateRange{}, goerr.Wrap(ErrInvalidDate, "failed to parse start date", goerr.V("start", s), goerr.V("error", err.Error()))
		}
		dr.Start = &start
	}
	if s := strings.TrimSpace(r.EndDate); s != "" {
		day, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return DateRange{}, goerr.Wrap(ErrInvalidDate, "failed to parse end date", goerr.V("end", s), goerr.V("error", err.Error()))
		}
		end := EndOfDay(day)
		dr.End = &end
	}

	if dr.Start != nil && dr.End != nil && dr.Start.After(*dr.End) {
		return DateRange{}, goerr.Wrap(ErrInvalidDateRange, "invalid sync range",
			goerr.V("start", r.StartDate), goerr.V("end", r.EndDate))
	}
	return dr, nil
}

// EndOfDay returns 23:59:59.999 of the day of t in t's location
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// SyncResult summarizes one sync run
type SyncResult struct {
	Success       bool
	ImportedCount int
	ScannedCount  int
	SkippedCount  int
	// HasMore is set when the page cap was hit before the lower bound was reached
	HasMore bool
	Errors  []string
	Error   string
}

// AddError records a non-fatal per-file error
func (r *SyncResult) AddError(name, step string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %s: %s", name, step, err.Error()))
}

// Merge accumulates the counters of another run into r
func (r *SyncResult) Merge(other *SyncResult) {
	r.ImportedCount += other.ImportedCount
	r.ScannedCount += other.ScannedCount
	r.SkippedCount += other.SkippedCount
	r.Errors = append(r.Errors, other.Errors...)
	r.HasMore = other.HasMore
	r.Success = other.Success
	r.Error = other.Error
}

// SyncCheckpoint is the continuation point of a scan that stopped at the page cap.
// Oldest and Latest are the Slack timestamp bounds the cursor belongs to.
type SyncCheckpoint struct {
	ChannelID string
	Oldest    string
	Latest    string
	Cursor    string
	UpdatedAt time.Time
}

// SameBounds reports whether the checkpoint was created for the given bounds
func (c *SyncCheckpoint) SameBounds(oldest, latest string) bool {
	return c.Oldest == oldest && c.Latest == latest
}

// SyncLock is the lease held by a running sync
type SyncLock struct {
	Holder    string
	ExpiresAt time.Time
}

// IsExpired reports whether the lease can be taken over at now
func (l *SyncLock) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
