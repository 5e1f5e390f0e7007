package types

import "fmt"

// PhotoStatus represents the review status of an imported photo
type PhotoStatus string

const (
	PhotoStatusPending   PhotoStatus = "pending"
	PhotoStatusApproved  PhotoStatus = "approved"
	PhotoStatusRejected  PhotoStatus = "rejected"
	PhotoStatusRedundant PhotoStatus = "redundant"
)

// AllPhotoStatuses returns all valid photo statuses
func AllPhotoStatuses() []PhotoStatus {
	return []PhotoStatus{
		PhotoStatusPending,
		PhotoStatusApproved,
		PhotoStatusRejected,
		PhotoStatusRedundant,
	}
}

// IsValid checks if the photo status is valid
func (s PhotoStatus) IsValid() bool {
	switch s {
	case PhotoStatusPending,
		PhotoStatusApproved,
		PhotoStatusRejected,
		PhotoStatusRedundant:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is a review outcome. Terminal photos are never
// moved back to pending.
func (s PhotoStatus) IsTerminal() bool {
	return s.IsValid() && s != PhotoStatusPending
}

// String returns the string representation of the photo status
func (s PhotoStatus) String() string {
	return string(s)
}

// ParsePhotoStatus parses a string into a PhotoStatus
func ParsePhotoStatus(s string) (PhotoStatus, error) {
	status := PhotoStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid photo status: %s", s)
	}
	return status, nil
}
