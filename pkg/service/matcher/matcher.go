// Package matcher guesses which store a Slack message refers to.
package matcher

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
)

// DefaultThreshold is the minimum similarity for a match
const DefaultThreshold = 0.6

var (
	mentionPattern = regexp.MustCompile(`<[@#!][^>]*>`)
	wordSeparator  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Match is a scored store candidate
type Match struct {
	Store *model.Store
	Score float64
}

// Matcher scores store names against free text
type Matcher struct {
	threshold float64
}

// Option configures a Matcher
type Option func(*Matcher)

// WithThreshold sets the minimum similarity in [0, 1]
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// New creates a Matcher
func New(opts ...Option) *Matcher {
	m := &Matcher{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Best returns the highest scoring store at or above the threshold, or nil.
// Ties keep the earlier store.
func (m *Matcher) Best(text string, stores []*model.Store) *Match {
	words := tokenize(text)
	if len(words) == 0 {
		return nil
	}

	var best *Match
	for _, s := range stores {
		score := Similarity(words, tokenize(s.Name))
		if score < m.threshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{Store: s, Score: score}
		}
	}
	return best
}

// Similarity compares the name against the whole text and every window of the text with
// as many words as the name, and returns the best normalized Levenshtein similarity.
func Similarity(textWords, nameWords []string) float64 {
	if len(textWords) == 0 || len(nameWords) == 0 {
		return 0
	}

	name := strings.Join(nameWords, " ")
	best := similarity(strings.Join(textWords, " "), name)

	n := len(nameWords)
	for i := 0; i+n <= len(textWords); i++ {
		if s := similarity(strings.Join(textWords[i:i+n], " "), name); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// tokenize strips Slack mention markup, lowercases and splits into words
func tokenize(text string) []string {
	cleaned := strings.ToLower(mentionPattern.ReplaceAllString(text, " "))
	var words []string
	for _, w := range wordSeparator.Split(cleaned, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
