// Package normalize maps heterogeneous upstream event records into the
// canonical Play shape. Classification is a pure function over an ordered
// rule table so it stays independently testable; nothing downstream of
// this package looks at provider free text to decide a category.
package normalize

import (
	"fmt"
	"strings"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
)

// Raw is the provider-shaped record handed to the normalizer. Optional
// fields (team, clock) may be empty; the normalizer tolerates that rather
// than failing.
type Raw struct {
	Order      int
	Period     int
	Clock      string
	HomeScore  int
	AwayScore  int
	Team       string
	Type       string
	Text       string
	Scoring    bool
	ScoreValue int
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithRoster supplies canonical player names. Extracted names are resolved
// against the roster by fuzzy match so ledger keys stay stable across the
// provider's name variants.
func WithRoster(names []string) Option {
	return func(n *Normalizer) {
		n.roster = append([]string(nil), names...)
	}
}

// Normalizer converts raw feed records into model.Play values.
type Normalizer struct {
	roster []string
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts one raw record into a Play. A record that cannot be
// parsed at all returns an error wrapping ErrUnparseable; callers skip it
// and continue, they never abort the batch.
func (n *Normalizer) Normalize(raw Raw) (model.Play, error) {
	if raw.Order <= 0 {
		return model.Play{}, fmt.Errorf("sequence order %d: %w", raw.Order, ErrUnparseable)
	}
	if raw.Period <= 0 {
		return model.Play{}, fmt.Errorf("period %d: %w", raw.Period, ErrUnparseable)
	}
	if raw.HomeScore < 0 || raw.AwayScore < 0 {
		return model.Play{}, fmt.Errorf("scores %d-%d: %w", raw.HomeScore, raw.AwayScore, ErrNegativeScore)
	}

	category := Classify(raw.Type, raw.Text)
	lowerText := strings.ToLower(raw.Text)

	play := model.Play{
		Sequence:    raw.Order,
		Period:      raw.Period,
		Clock:       raw.Clock,
		HomeScore:   raw.HomeScore,
		AwayScore:   raw.AwayScore,
		Team:        raw.Team,
		Description: raw.Text,
		SubType:     strings.ToLower(strings.TrimSpace(raw.Type)),
		Category:    category,
		Scoring:     raw.Scoring,
		ScoreValue:  raw.ScoreValue,
	}

	switch category {
	case model.CategoryShot:
		play.Made = raw.Scoring
	case model.CategoryFreeThrow:
		play.Made = strings.Contains(lowerText, "makes")
		if play.Made && play.ScoreValue == 0 {
			play.ScoreValue = 1
		}
	case model.CategoryRebound:
		play.Offensive = strings.Contains(lowerText, "offensive") ||
			strings.Contains(strings.ToLower(raw.Type), "offensive")
	}

	play.Player = n.resolve(ExtractPlayer(raw.Text))
	play.Assist = n.resolve(ExtractAssist(raw.Text))

	return play, nil
}
