package match

import (
	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
)

// Tier is the confidence classification of a title's best match.
type Tier int

const (
	TierNoMatch Tier = iota
	TierNeedsReview
	TierAutoAccept
)

func (t Tier) String() string {
	switch t {
	case TierAutoAccept:
		return "auto-accept"
	case TierNeedsReview:
		return "needs-review"
	default:
		return "no-match"
	}
}

// MatchResult is the per-title aggregate handed to the review workflow.
//
// Ranked is empty when the tier is no-match. LowConfidence marks
// needs-review results whose top score cleared only the low threshold.
type MatchResult struct {
	Title         services.RawTitle `json:"title"`
	Ranked        []ScoredMatch     `json:"ranked"`
	Tier          Tier              `json:"tier"`
	LowConfidence bool              `json:"low_confidence"`
}

// Classifier maps a ranked match list to a confidence tier.
//
// Thresholds come from validated configuration, so high >= medium >= low
// holds by the time a classifier exists.
type Classifier struct {
	high   float64
	medium float64
	low    float64
	margin float64
}

// NewClassifier creates a classifier from the matching configuration.
func NewClassifier(cfg shared.MatchingConfig) Classifier {
	return Classifier{
		high:   cfg.HighThreshold,
		medium: cfg.MediumThreshold,
		low:    cfg.LowThreshold,
		margin: cfg.SeparationMargin,
	}
}

// Classify returns the tier for a ranked list plus the low-confidence flag.
//
// Auto-accept additionally requires a clear gap to the runner-up: a high top
// score with a near-tied second place is genuine ambiguity and goes to
// review instead.
func (c Classifier) Classify(ranked []ScoredMatch) (Tier, bool) {
	if len(ranked) == 0 {
		return TierNoMatch, false
	}

	top := ranked[0].Score

	if top >= c.high {
		if len(ranked) == 1 || top-ranked[1].Score >= c.margin {
			return TierAutoAccept, false
		}
		return TierNeedsReview, false
	}

	if top >= c.medium {
		return TierNeedsReview, false
	}
	if top >= c.low {
		return TierNeedsReview, true
	}

	return TierNoMatch, false
}

// Result builds the immutable per-title aggregate. A no-match tier drops the
// ranked list so downstream consumers prompt for manual search immediately.
func (c Classifier) Result(title services.RawTitle, ranked []ScoredMatch) MatchResult {
	tier, lowConfidence := c.Classify(ranked)
	if tier == TierNoMatch {
		ranked = nil
	}

	return MatchResult{
		Title:         title,
		Ranked:        ranked,
		Tier:          tier,
		LowConfidence: lowConfidence,
	}
}
