package slack

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidTimestamp is returned for malformed Slack timestamps
var ErrInvalidTimestamp = goerr.New("invalid slack timestamp")

// ParseTimestamp converts a Slack "ts" (fractional Unix seconds, up to microseconds) to time.
// The string is split rather than parsed as float to keep microsecond precision.
func ParseTimestamp(ts string) (time.Time, error) {
	sec, frac, _ := strings.Cut(strings.TrimSpace(ts), ".")
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil || sec == "" {
		return time.Time{}, goerr.Wrap(ErrInvalidTimestamp, "failed to parse seconds", goerr.V("ts", ts))
	}

	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || n < 0 {
			return time.Time{}, goerr.Wrap(ErrInvalidTimestamp, "failed to parse fraction", goerr.V("ts", ts))
		}
		for i := len(frac); i < 9; i++ {
			n *= 10
		}
		nsec = n
	}

	return time.Unix(s, nsec).UTC(), nil
}

// MessageDate returns the posting time of the message at ts with millisecond precision
func MessageDate(ts string) (time.Time, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(time.Millisecond), nil
}

// FormatTimestamp formats t as a Slack "ts" with microsecond precision
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

// CompareTimestamps orders two Slack timestamps numerically
func CompareTimestamps(a, b string) (int, error) {
	ta, err := ParseTimestamp(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseTimestamp(b)
	if err != nil {
		return 0, err
	}
	return ta.Compare(tb), nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFileName reduces name to [a-zA-Z0-9._-], replacing other runs with "_"
func SanitizeFileName(name string) string {
	s := unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return DefaultFileName
	}
	return s
}

// BlobName returns the deterministic object name of the index-th file of the message at ts
func BlobName(ts string, index int, name string) string {
	return fmt.Sprintf("%s-%d-%s", ts, index, SanitizeFileName(name))
}

// SourceKey returns the unique import key of the index-th file of the message at ts
func SourceKey(ts string, index int) string {
	return fmt.Sprintf("%s:%d", ts, index)
}
