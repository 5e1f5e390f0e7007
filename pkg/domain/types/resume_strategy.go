package types

import "fmt"

// ResumeStrategy decides the lower bound of a sync run when the caller gives no start date
type ResumeStrategy string

const (
	// ResumeWatermark starts from the latest imported message timestamp
	ResumeWatermark ResumeStrategy = "watermark"
	// ResumeEpoch always starts from a fixed configured date
	ResumeEpoch ResumeStrategy = "epoch"
)

// IsValid checks if the resume strategy is valid
func (s ResumeStrategy) IsValid() bool {
	return s == ResumeWatermark || s == ResumeEpoch
}

func (s ResumeStrategy) String() string {
	return string(s)
}

// ParseResumeStrategy parses a string into a ResumeStrategy
func ParseResumeStrategy(s string) (ResumeStrategy, error) {
	strategy := ResumeStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("invalid resume strategy: %s", s)
	}
	return strategy, nil
}
