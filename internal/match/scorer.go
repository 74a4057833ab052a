package match

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/youtify/internal/services"
)

// Composite score weights. Song and artist similarity dominate; the
// featuring bonus nudges otherwise-tied results.
const (
	songWeight   = 0.4
	artistWeight = 0.4
	bonusWeight  = 0.2
)

// neutralArtistScore is used when a candidate carries no artist, so song-only
// parses are neither penalized nor rewarded on the artist component.
const neutralArtistScore = 0.5

// featuredMatchFloor is the minimum similarity for a featuring credit to
// count as matching a track artist.
const featuredMatchFloor = 0.8

// Similarity returns the normalized edit-distance ratio between two strings
// after [Normalize], in [0,1]. Empty input on either side scores 0.
func Similarity(a, b string) float64 {
	return ratio(Normalize(a), Normalize(b))
}

func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Scorer computes the composite similarity between a parsed candidate and a
// track's metadata. Deterministic and stateless: identical inputs always
// produce the identical float.
type Scorer struct{}

// Score returns the weighted composite in [0,1].
//
// The artist component takes the best ratio across all listed track artists.
// The bonus fires when a featuring credit matches a track artist other than
// the one already matched as primary.
func (Scorer) Score(c Candidate, t services.TrackResult) float64 {
	song := Similarity(c.Song, t.Name)

	artist := neutralArtistScore
	primaryIdx := -1
	if c.Artist != "" {
		artist = 0
		for i, name := range t.Artists {
			if s := Similarity(c.Artist, name); s > artist {
				artist = s
				primaryIdx = i
			}
		}
	}

	// Without featuring credits the bonus term is unreachable, so the song
	// and artist weights are renormalized to keep a perfect match at 1.0.
	if len(c.Featured) == 0 {
		return clamp((songWeight*song + artistWeight*artist) / (songWeight + artistWeight))
	}

	bonus := 0.0
	for _, feat := range c.Featured {
		for i, name := range t.Artists {
			if i == primaryIdx {
				continue
			}
			if Similarity(feat, name) >= featuredMatchFloor {
				bonus = 1.0
				break
			}
		}
		if bonus > 0 {
			break
		}
	}

	return clamp(songWeight*song + artistWeight*artist + bonusWeight*bonus)
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
