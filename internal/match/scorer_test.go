package match

import (
	"testing"

	"github.com/desertthunder/youtify/internal/services"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "One More Time", "one more time"},
		{"strips diacritics", "Beyoncé", "beyonce"},
		{"replaces punctuation", "AC/DC - T.N.T.", "ac dc t n t"},
		{"collapses whitespace", "  too   many\tspaces ", "too many spaces"},
		{"empty", "", ""},
		{"only punctuation", "!!!???", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("identical strings score 1", func(t *testing.T) {
		if got := Similarity("Song Title", "song title"); got != 1.0 {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("empty strings score 0", func(t *testing.T) {
		if got := Similarity("", "anything"); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
		if got := Similarity("anything", ""); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("close strings score high", func(t *testing.T) {
		if got := Similarity("One More Time", "One More Time - Radio Edit"); got <= 0.3 {
			t.Errorf("expected partial credit, got %f", got)
		}
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		if got := Similarity("Bohemian Rhapsody", "xz"); got > 0.3 {
			t.Errorf("expected low score, got %f", got)
		}
	})
}

func TestScore(t *testing.T) {
	var scorer Scorer

	track := services.TrackResult{
		ID:      "t1",
		Name:    "Song Title",
		Artists: []string{"Artist Name"},
	}

	t.Run("exact match scores 1", func(t *testing.T) {
		c := Candidate{Artist: "Artist Name", Song: "Song Title", Strategy: StrategyArtistSong}
		if got := scorer.Score(c, track); got < 0.95 {
			t.Errorf("expected near-perfect score, got %f", got)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		c := Candidate{Artist: "Artist Name", Song: "Song Title"}
		a := scorer.Score(c, track)
		b := scorer.Score(c, track)
		if a != b {
			t.Errorf("scores differ: %f vs %f", a, b)
		}
	})

	t.Run("stays in range for degenerate input", func(t *testing.T) {
		inputs := []Candidate{
			{},
			{Artist: "x"},
			{Song: "y"},
			{Artist: "a", Song: "b", Featured: []string{"c"}},
		}
		tracks := []services.TrackResult{
			{},
			{Name: "z"},
			{Name: "z", Artists: []string{"", "w"}},
		}
		for _, c := range inputs {
			for _, tr := range tracks {
				got := scorer.Score(c, tr)
				if got < 0 || got > 1 {
					t.Errorf("Score(%+v, %+v) = %f out of range", c, tr, got)
				}
			}
		}
	})

	t.Run("missing artist is neutral not zero", func(t *testing.T) {
		withArtist := scorer.Score(Candidate{Artist: "Wrong Artist", Song: "Song Title"}, track)
		without := scorer.Score(Candidate{Song: "Song Title"}, track)
		if without <= withArtist {
			t.Errorf("neutral artist (%f) should beat a wrong artist (%f)", without, withArtist)
		}
		if without < 0.7 {
			t.Errorf("song-only parse with perfect song should still score well, got %f", without)
		}
	})

	t.Run("artist similarity takes best across track artists", func(t *testing.T) {
		multi := services.TrackResult{Name: "Song Title", Artists: []string{"Someone Else", "Artist Name"}}
		got := scorer.Score(Candidate{Artist: "Artist Name", Song: "Song Title"}, multi)
		if got < 0.95 {
			t.Errorf("expected best-artist match, got %f", got)
		}
	})

	t.Run("featuring bonus fires on secondary artist", func(t *testing.T) {
		collab := services.TrackResult{Name: "Hit Song", Artists: []string{"Main Artist", "Guest One"}}
		withBonus := scorer.Score(Candidate{Artist: "Main Artist", Song: "Hit Song", Featured: []string{"Guest One"}}, collab)
		withoutMatch := scorer.Score(Candidate{Artist: "Main Artist", Song: "Hit Song", Featured: []string{"Nobody Here"}}, collab)
		if withBonus <= withoutMatch {
			t.Errorf("expected featuring bonus: with=%f without=%f", withBonus, withoutMatch)
		}
	})
}
