package match

import (
	"testing"
)

func TestParse(t *testing.T) {
	parser := NewParser()

	t.Run("always produces at least one candidate", func(t *testing.T) {
		inputs := []struct{ title, channel string }{
			{"", ""},
			{"   ", ""},
			{"(Official Video)", ""},
			{"plain title", ""},
			{"Artist - Song", "Channel"},
			{"| weird ||| input |", ""},
		}
		for _, in := range inputs {
			if got := parser.Parse(in.title, in.channel); len(got) == 0 {
				t.Errorf("Parse(%q, %q) returned no candidates", in.title, in.channel)
			}
		}
	})

	t.Run("dash split emits straight order first", func(t *testing.T) {
		candidates := parser.Parse("Artist Name - Song Title (Official Video)", "")

		if len(candidates) < 3 {
			t.Fatalf("expected at least 3 candidates, got %d", len(candidates))
		}

		first := candidates[0]
		if first.Strategy != StrategyArtistSong {
			t.Errorf("expected artist-song first, got %s", first.Strategy)
		}
		if first.Artist != "Artist Name" || first.Song != "Song Title" {
			t.Errorf("unexpected split: artist=%q song=%q", first.Artist, first.Song)
		}

		second := candidates[1]
		if second.Strategy != StrategySongArtist {
			t.Errorf("expected song-artist second, got %s", second.Strategy)
		}
		if second.Artist != "Song Title" || second.Song != "Artist Name" {
			t.Errorf("unexpected inverted split: artist=%q song=%q", second.Artist, second.Song)
		}
	})

	t.Run("no separator falls back through channel", func(t *testing.T) {
		candidates := parser.Parse("Random Channel Uploads", "DJ Mixes")

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].Strategy != StrategyChannelAsArtist {
			t.Errorf("expected channel-as-artist first, got %s", candidates[0].Strategy)
		}
		if candidates[0].Artist != "DJ Mixes" || candidates[0].Song != "Random Channel Uploads" {
			t.Errorf("unexpected channel candidate: %+v", candidates[0])
		}
		if candidates[1].Strategy != StrategySongOnly || candidates[1].Artist != "" {
			t.Errorf("expected song-only fallback last, got %+v", candidates[1])
		}
	})

	t.Run("suffix stripping tags the fallback", func(t *testing.T) {
		candidates := parser.Parse("Song Title (Official Music Video)", "")

		last := candidates[len(candidates)-1]
		if last.Strategy != StrategyBracketStripped {
			t.Errorf("expected bracket-stripped fallback, got %s", last.Strategy)
		}
		if last.Song != "Song Title" {
			t.Errorf("expected suffix removed, got %q", last.Song)
		}
	})

	t.Run("strips stacked suffixes", func(t *testing.T) {
		candidates := parser.Parse("Artist - Song [HD] (Official Video)", "")
		if candidates[0].Song != "Song" {
			t.Errorf("expected %q, got %q", "Song", candidates[0].Song)
		}
	})

	t.Run("extracts featuring credits from the song", func(t *testing.T) {
		candidates := parser.Parse("Main Artist - Hit Song (feat. Guest One & Guest Two)", "")

		first := candidates[0]
		if first.Song != "Hit Song" {
			t.Errorf("expected featuring removed from song, got %q", first.Song)
		}
		if len(first.Featured) != 2 {
			t.Fatalf("expected 2 featured artists, got %v", first.Featured)
		}
		if first.Featured[0] != "Guest One" || first.Featured[1] != "Guest Two" {
			t.Errorf("unexpected featured list: %v", first.Featured)
		}
	})

	t.Run("extracts ft. shorthand case-insensitively", func(t *testing.T) {
		candidates := parser.Parse("Artist - Song FT. Guest", "")
		first := candidates[0]
		if first.Song != "Song" || len(first.Featured) != 1 || first.Featured[0] != "Guest" {
			t.Errorf("unexpected candidate: %+v", first)
		}
	})

	t.Run("splits on first separator occurrence", func(t *testing.T) {
		candidates := parser.Parse("A - B - C", "")
		if candidates[0].Artist != "A" || candidates[0].Song != "B - C" {
			t.Errorf("expected split on first dash, got artist=%q song=%q", candidates[0].Artist, candidates[0].Song)
		}
	})

	t.Run("en and em dashes split too", func(t *testing.T) {
		for _, title := range []string{"Artist – Song", "Artist — Song"} {
			candidates := parser.Parse(title, "")
			if candidates[0].Artist != "Artist" || candidates[0].Song != "Song" {
				t.Errorf("Parse(%q): artist=%q song=%q", title, candidates[0].Artist, candidates[0].Song)
			}
		}
	})

	t.Run("title that is only a suffix keeps the original", func(t *testing.T) {
		candidates := parser.Parse("(Official Video)", "")
		last := candidates[len(candidates)-1]
		if last.Song == "" {
			t.Error("expected fallback song to retain original title")
		}
	})
}
