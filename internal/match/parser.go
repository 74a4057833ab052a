package match

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy identifies how a [Candidate] was derived from its raw title.
//
// Declaration order doubles as ranking priority: earlier strategies win
// score ties in the ranker.
type Strategy int

const (
	// StrategyArtistSong splits "Artist - Song" in the uploaded order.
	StrategyArtistSong Strategy = iota
	// StrategySongArtist is the inverted split for uploaders who flip the order.
	StrategySongArtist
	// StrategyChannelAsArtist uses the channel name as the artist.
	StrategyChannelAsArtist
	// StrategySongOnly treats the whole title as the song with no artist.
	StrategySongOnly
	// StrategyBracketStripped is the no-artist fallback after suffix cleaning
	// changed the title.
	StrategyBracketStripped
)

func (s Strategy) String() string {
	switch s {
	case StrategyArtistSong:
		return "artist-song"
	case StrategySongArtist:
		return "song-artist"
	case StrategyChannelAsArtist:
		return "channel-as-artist"
	case StrategySongOnly:
		return "song-only"
	case StrategyBracketStripped:
		return "bracket-stripped"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Candidate is one plausible (artist, song) interpretation of a raw title.
//
// Immutable after parsing. Featured artists only boost scoring; they are
// never required for a match.
type Candidate struct {
	Artist   string
	Song     string
	Featured []string
	Strategy Strategy
}

// separators is the ordered list of split tokens. The first token present in
// a title wins, split at its first occurrence.
var separators = []string{" - ", " – ", " — ", ": ", " | "}

// defaultSuffixes matches bracketed or parenthesized metadata noise commonly
// appended to video titles.
var defaultSuffixes = []string{
	`official\s+(?:music\s+)?video`,
	`official\s+(?:audio|visualizer)`,
	`official`,
	`lyric(?:s)?(?:\s+video)?`,
	`audio`,
	`visuali[sz]er`,
	`music\s+video`,
	`m/?v`,
	`hd|hq|4k`,
	`live(?:\s+performance)?`,
	`full\s+album`,
	`remaster(?:ed)?(?:\s+\d{4})?`,
	`\d{4}\s+remaster(?:ed)?`,
}

var featuringPattern = regexp.MustCompile(`(?i)[(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+([^)\]]+)[)\]]?`)

var featuredSplitter = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b|\bx\b)\s*`)

// Parser turns raw video titles into ordered candidate interpretations.
type Parser struct {
	suffixPattern *regexp.Regexp
}

// NewParser creates a parser with the default noise suffix patterns plus any
// extra patterns supplied by configuration.
func NewParser(extraSuffixes ...string) *Parser {
	patterns := make([]string, 0, len(defaultSuffixes)+len(extraSuffixes))
	patterns = append(patterns, defaultSuffixes...)
	patterns = append(patterns, extraSuffixes...)

	combined := fmt.Sprintf(`(?i)\s*[(\[]\s*(?:%s)\s*[)\]]`, strings.Join(patterns, "|"))
	return &Parser{suffixPattern: regexp.MustCompile(combined)}
}

// Parse produces at least one candidate for any title, most likely first.
//
// Separator splits come first in both orders, then the channel-as-artist
// reading, then the no-artist fallback. Parsing never fails: an empty or
// unsplittable title still yields the fallback candidate.
func (p *Parser) Parse(rawTitle, channel string) []Candidate {
	original := strings.TrimSpace(rawTitle)
	cleaned := p.stripSuffixes(original)
	if cleaned == "" {
		cleaned = original
	}

	var candidates []Candidate

	if left, right, ok := splitOnSeparator(cleaned); ok {
		candidates = append(candidates,
			newCandidate(left, right, StrategyArtistSong),
			newCandidate(right, left, StrategySongArtist),
		)
	}

	if channel = strings.TrimSpace(channel); channel != "" {
		candidates = append(candidates, newCandidate(channel, cleaned, StrategyChannelAsArtist))
	}

	fallback := StrategySongOnly
	if cleaned != original {
		fallback = StrategyBracketStripped
	}
	candidates = append(candidates, newCandidate("", cleaned, fallback))

	return candidates
}

// stripSuffixes removes noise suffix groups from a working copy of the title.
func (p *Parser) stripSuffixes(title string) string {
	return strings.TrimSpace(p.suffixPattern.ReplaceAllString(title, ""))
}

func splitOnSeparator(title string) (left, right string, ok bool) {
	for _, sep := range separators {
		idx := strings.Index(title, sep)
		if idx < 0 {
			continue
		}
		left = strings.TrimSpace(title[:idx])
		right = strings.TrimSpace(title[idx+len(sep):])
		if left != "" && right != "" {
			return left, right, true
		}
	}
	return "", "", false
}

// newCandidate builds a candidate, pulling featuring credits out of both
// fields into the secondary artist list.
func newCandidate(artist, song string, strategy Strategy) Candidate {
	var featured []string
	artist, featured = extractFeaturing(artist, featured)
	song, featured = extractFeaturing(song, featured)

	return Candidate{
		Artist:   strings.TrimSpace(artist),
		Song:     strings.TrimSpace(song),
		Featured: featured,
		Strategy: strategy,
	}
}

func extractFeaturing(field string, featured []string) (string, []string) {
	matches := featuringPattern.FindStringSubmatch(field)
	if matches == nil {
		return field, featured
	}

	for _, name := range featuredSplitter.Split(matches[1], -1) {
		if name = strings.TrimSpace(name); name != "" {
			featured = append(featured, name)
		}
	}

	return strings.TrimSpace(featuringPattern.ReplaceAllString(field, "")), featured
}
