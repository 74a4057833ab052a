package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/youtify/internal/match"
	"github.com/desertthunder/youtify/internal/tasks"
)

// reviewItem wraps a [tasks.TitleEntry] awaiting a decision for display in
// the review list.
type reviewItem struct {
	entry tasks.TitleEntry
}

var _ list.Item = reviewItem{}

func (i reviewItem) FilterValue() string {
	return i.entry.Title.Title
}

func (i reviewItem) Title() string {
	return i.entry.Title.Title
}

func (i reviewItem) Description() string {
	if i.entry.Result == nil {
		return i.entry.State.String()
	}

	desc := i.entry.Result.Tier.String()
	if i.entry.Result.LowConfidence {
		desc += " (low confidence)"
	}
	if n := len(i.entry.Result.Ranked); n > 0 {
		desc += fmt.Sprintf(" • %d candidates", n)
	}
	return desc
}

// candidateItem wraps a [match.ScoredMatch] for display in the candidate list.
type candidateItem struct {
	match match.ScoredMatch
}

var _ list.Item = candidateItem{}

func (i candidateItem) FilterValue() string {
	return i.match.Track.Name
}

func (i candidateItem) Title() string {
	return fmt.Sprintf("%s (%.3f)", i.match.Track.Name, i.match.Score)
}

func (i candidateItem) Description() string {
	parts := []string{strings.Join(i.match.Track.Artists, ", ")}
	if i.match.Track.Album != "" {
		parts = append(parts, i.match.Track.Album)
	}
	return strings.Join(parts, " • ")
}

func reviewItems(entries []tasks.TitleEntry) []list.Item {
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, reviewItem{entry: entry})
	}
	return items
}

func candidateItems(matches []match.ScoredMatch) []list.Item {
	items := make([]list.Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, candidateItem{match: m})
	}
	return items
}
