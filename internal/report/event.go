// Package report records practice-session outcomes. Each analyzed
// submission becomes one event, delivered asynchronously to sinks so the
// request path never waits on disk.
package report

import (
	"context"
	"time"
)

// Event is one practice submission outcome. Only derived metrics are
// recorded; the draft text itself is never persisted.
type Event struct {
	Timestamp       time.Time           `json:"timestamp"`
	Scenario        string              `json:"scenario"`
	Difficulty      string              `json:"difficulty"`
	WordCount       int                 `json:"word_count"`
	SentenceCount   int                 `json:"sentence_count"`
	ParagraphCount  int                 `json:"paragraph_count"`
	FeaturesPresent []string            `json:"features_present"`
	FeaturesMissing []string            `json:"features_missing"`
	Smells          map[string][]string `json:"smells,omitempty"`
}

// Sink consumes practice events (file, future exporters).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}
