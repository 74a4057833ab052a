package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTitles Phase = iota
	SearchTracks
	ClassifyTitles
	AwaitReview
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchTitles:
		return "fetch_titles"
	case SearchTracks:
		return "search_tracks"
	case ClassifyTitles:
		return "classify_titles"
	case AwaitReview:
		return "await_review"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func fetchTitlesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTitles,
		Step:    step,
		Total:   total,
		Message: "Fetching playlist titles from YouTube...",
	}
}

func searchingUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching for %q...", title),
	}
}

func classifiedUpdate(step, total int, title, tier string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyTitles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: %s", title, tier),
		Data:    tier,
	}
}

func needsRetryUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Rate limited while searching %q, retry later", title),
	}
}

func awaitingReviewUpdate(pending int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AwaitReview,
		Step:    0,
		Total:   pending,
		Message: fmt.Sprintf("%d titles awaiting review", pending),
	}
}

func creatingPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func addTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding tracks (%d/%d)...", step, total),
	}
}
