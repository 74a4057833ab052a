package match

import (
	"sort"

	"github.com/desertthunder/youtify/internal/services"
)

// ScoredMatch pairs a track with the candidate and score that ranked it.
type ScoredMatch struct {
	Track     services.TrackResult `json:"track"`
	Score     float64              `json:"score"`
	Candidate Candidate            `json:"candidate"`
}

// SearchOutcome is one candidate's raw search results, in discovery order.
type SearchOutcome struct {
	Candidate Candidate
	Tracks    []services.TrackResult
}

// Ranker scores and orders all results gathered for one title.
type Ranker struct {
	scorer    Scorer
	maxRanked int
}

// NewRanker creates a ranker that caps output at maxRanked matches.
func NewRanker(maxRanked int) *Ranker {
	if maxRanked <= 0 {
		maxRanked = 5
	}
	return &Ranker{maxRanked: maxRanked}
}

// Rank deduplicates by track identifier, keeping whichever candidate scores
// a track highest, then sorts descending by score. Ties break by strategy
// priority, then track popularity, then discovery order.
//
// Empty input yields an empty slice.
func (r *Ranker) Rank(outcomes []SearchOutcome) []ScoredMatch {
	type entry struct {
		match ScoredMatch
		order int
	}

	best := make(map[string]*entry)
	var ordered []*entry

	for _, outcome := range outcomes {
		for _, track := range outcome.Tracks {
			score := r.scorer.Score(outcome.Candidate, track)

			e, seen := best[track.ID]
			if !seen {
				e = &entry{
					match: ScoredMatch{Track: track, Score: score, Candidate: outcome.Candidate},
					order: len(ordered),
				}
				best[track.ID] = e
				ordered = append(ordered, e)
				continue
			}

			if score > e.match.Score ||
				(score == e.match.Score && outcome.Candidate.Strategy < e.match.Candidate.Strategy) {
				e.match.Score = score
				e.match.Candidate = outcome.Candidate
			}
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].match, ordered[j].match
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Candidate.Strategy != b.Candidate.Strategy {
			return a.Candidate.Strategy < b.Candidate.Strategy
		}
		return a.Track.Popularity > b.Track.Popularity
	})

	n := len(ordered)
	if n > r.maxRanked {
		n = r.maxRanked
	}

	ranked := make([]ScoredMatch, n)
	for i := 0; i < n; i++ {
		ranked[i] = ordered[i].match
	}
	return ranked
}
