package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/youtify/internal/match"
	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
)

// TitleState tracks a title's progress through the review workflow.
//
// pending-search -> classified -> awaiting-user -> resolved, with
// auto-accepted titles jumping straight to resolved and rate-limited
// searches parked in needs-retry until re-triggered.
type TitleState int

const (
	StatePendingSearch TitleState = iota
	StateClassified
	StateAwaitingUser
	StateResolved
	StateNeedsRetry
)

func (s TitleState) String() string {
	switch s {
	case StatePendingSearch:
		return "pending-search"
	case StateClassified:
		return "classified"
	case StateAwaitingUser:
		return "awaiting-user"
	case StateResolved:
		return "resolved"
	case StateNeedsRetry:
		return "needs-retry"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Action is the terminal outcome of a title's review.
type Action int

const (
	ActionAccept Action = iota
	ActionReject
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionAccept:
		return "accept"
	case ActionReject:
		return "reject"
	default:
		return "skip"
	}
}

// DecidedBy records whether a decision was automatic or user-made.
type DecidedBy int

const (
	DecidedAuto DecidedBy = iota
	DecidedUser
)

func (d DecidedBy) String() string {
	if d == DecidedAuto {
		return "auto"
	}
	return "user"
}

// ReviewDecision is the finalized outcome for one title. Immutable once set.
type ReviewDecision struct {
	ChosenTrack *services.TrackResult `json:"chosen_track,omitempty"`
	DecidedBy   DecidedBy             `json:"decided_by"`
	Action      Action                `json:"action"`
	DecidedAt   time.Time             `json:"decided_at"`
}

// TitleEntry holds one title's match result and decision.
type TitleEntry struct {
	Title    services.RawTitle  `json:"title"`
	State    TitleState         `json:"state"`
	Result   *match.MatchResult `json:"result,omitempty"`
	Decision *ReviewDecision    `json:"decision,omitempty"`
}

// Terminal reports whether the entry reached a resolved state.
func (e *TitleEntry) Terminal() bool {
	return e.State == StateResolved
}

// SessionStats summarizes a session's decision breakdown.
type SessionStats struct {
	Total        int `json:"total"`
	AutoAccepted int `json:"auto_accepted"`
	UserAccepted int `json:"user_accepted"`
	Rejected     int `json:"rejected"`
	Skipped      int `json:"skipped"`
	Pending      int `json:"pending"`
	NeedsRetry   int `json:"needs_retry"`
}

// ConversionSession is the top-level aggregate for one playlist conversion.
//
// Entries keep the source playlist's title order. Each entry is only ever
// mutated by the workflow driving that title, under the session lock.
// Resolved entries are never rolled back.
type ConversionSession struct {
	ID           string
	PlaylistRef  string
	PlaylistName string
	CreatedAt    time.Time

	mu        sync.Mutex
	entries   []*TitleEntry
	byVideoID map[string]*TitleEntry
	finalized bool
}

// NewSession creates a session with one pending entry per title, in order.
func NewSession(playlistRef, playlistName string, titles []services.RawTitle) *ConversionSession {
	s := &ConversionSession{
		ID:           shared.GenerateID(),
		PlaylistRef:  playlistRef,
		PlaylistName: playlistName,
		CreatedAt:    time.Now().UTC(),
		byVideoID:    make(map[string]*TitleEntry, len(titles)),
	}

	for _, title := range titles {
		entry := &TitleEntry{Title: title, State: StatePendingSearch}
		s.entries = append(s.entries, entry)
		s.byVideoID[title.VideoID] = entry
	}

	return s
}

func (s *ConversionSession) entry(videoID string) (*TitleEntry, error) {
	entry, ok := s.byVideoID[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTitleNotFound, videoID)
	}
	return entry, nil
}

// SetResult records a title's match result and advances its state.
//
// Auto-accept resolves immediately with the top match; every other tier
// waits for the user. Valid from pending-search and needs-retry only.
func (s *ConversionSession) SetResult(videoID string, result match.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return shared.ErrSessionFinalized
	}

	entry, err := s.entry(videoID)
	if err != nil {
		return err
	}
	if entry.State != StatePendingSearch && entry.State != StateNeedsRetry {
		return fmt.Errorf("%w: cannot classify %s from %s", shared.ErrInvalidTransition, videoID, entry.State)
	}

	s.applyResult(entry, result)
	return nil
}

// ApplyManualResult re-enters an awaiting-user title at classified with a
// fresh ranked list from a manual search.
func (s *ConversionSession) ApplyManualResult(videoID string, result match.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return shared.ErrSessionFinalized
	}

	entry, err := s.entry(videoID)
	if err != nil {
		return err
	}
	if entry.State != StateAwaitingUser {
		return fmt.Errorf("%w: manual search requires awaiting-user, %s is %s", shared.ErrInvalidTransition, videoID, entry.State)
	}

	s.applyResult(entry, result)
	return nil
}

func (s *ConversionSession) applyResult(entry *TitleEntry, result match.MatchResult) {
	entry.Result = &result
	entry.State = StateClassified

	if result.Tier == match.TierAutoAccept && len(result.Ranked) > 0 {
		top := result.Ranked[0].Track
		entry.Decision = &ReviewDecision{
			ChosenTrack: &top,
			DecidedBy:   DecidedAuto,
			Action:      ActionAccept,
			DecidedAt:   time.Now().UTC(),
		}
		entry.State = StateResolved
		return
	}

	entry.State = StateAwaitingUser
}

// MarkNeedsRetry parks a title whose search exhausted the rate budget.
func (s *ConversionSession) MarkNeedsRetry(videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return shared.ErrSessionFinalized
	}

	entry, err := s.entry(videoID)
	if err != nil {
		return err
	}
	if entry.Terminal() {
		return fmt.Errorf("%w: %s already resolved", shared.ErrInvalidTransition, videoID)
	}

	entry.State = StateNeedsRetry
	return nil
}

// ResetForRetry moves needs-retry titles back to pending-search so a new
// engine run picks them up.
func (s *ConversionSession) ResetForRetry() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, entry := range s.entries {
		if entry.State == StateNeedsRetry {
			entry.State = StatePendingSearch
			count++
		}
	}
	return count
}

// Resolve finalizes an awaiting-user title with the user's decision.
//
// Accept requires a chosen track; reject and skip must not carry one.
func (s *ConversionSession) Resolve(videoID string, action Action, track *services.TrackResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return shared.ErrSessionFinalized
	}

	entry, err := s.entry(videoID)
	if err != nil {
		return err
	}
	if entry.State != StateAwaitingUser {
		return fmt.Errorf("%w: cannot resolve %s from %s", shared.ErrInvalidTransition, videoID, entry.State)
	}

	if action == ActionAccept && track == nil {
		return fmt.Errorf("%w: accept requires a chosen track", shared.ErrInvalidArgument)
	}
	if action != ActionAccept {
		track = nil
	}

	entry.Decision = &ReviewDecision{
		ChosenTrack: track,
		DecidedBy:   DecidedUser,
		Action:      action,
		DecidedAt:   time.Now().UTC(),
	}
	entry.State = StateResolved
	return nil
}

// Entry returns a copy of one title's entry.
func (s *ConversionSession) Entry(videoID string) (TitleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.entry(videoID)
	if err != nil {
		return TitleEntry{}, err
	}
	return *entry, nil
}

// Entries returns a snapshot of all entries in original title order.
func (s *ConversionSession) Entries() []TitleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]TitleEntry, len(s.entries))
	for i, entry := range s.entries {
		snapshot[i] = *entry
	}
	return snapshot
}

// PendingVideoIDs lists titles still waiting on a search, in order.
func (s *ConversionSession) PendingVideoIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, entry := range s.entries {
		if entry.State == StatePendingSearch {
			ids = append(ids, entry.Title.VideoID)
		}
	}
	return ids
}

// AwaitingReview lists entries waiting on a user decision, in order.
func (s *ConversionSession) AwaitingReview() []TitleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var waiting []TitleEntry
	for _, entry := range s.entries {
		if entry.State == StateAwaitingUser {
			waiting = append(waiting, *entry)
		}
	}
	return waiting
}

// PendingCount reports how many titles have not reached a terminal state.
func (s *ConversionSession) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := 0
	for _, entry := range s.entries {
		if !entry.Terminal() {
			pending++
		}
	}
	return pending
}

// Complete reports whether every title has a terminal decision.
func (s *ConversionSession) Complete() bool {
	return s.PendingCount() == 0
}

// AcceptedTracks returns the chosen track of every accepted title, in
// original playlist order.
func (s *ConversionSession) AcceptedTracks() []services.TrackResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accepted []services.TrackResult
	for _, entry := range s.entries {
		if entry.Decision != nil && entry.Decision.Action == ActionAccept && entry.Decision.ChosenTrack != nil {
			accepted = append(accepted, *entry.Decision.ChosenTrack)
		}
	}
	return accepted
}

// Stats summarizes the session's current decision breakdown.
func (s *ConversionSession) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := SessionStats{Total: len(s.entries)}
	for _, entry := range s.entries {
		switch {
		case entry.State == StateNeedsRetry:
			stats.NeedsRetry++
			stats.Pending++
		case !entry.Terminal():
			stats.Pending++
		case entry.Decision.Action == ActionAccept && entry.Decision.DecidedBy == DecidedAuto:
			stats.AutoAccepted++
		case entry.Decision.Action == ActionAccept:
			stats.UserAccepted++
		case entry.Decision.Action == ActionReject:
			stats.Rejected++
		default:
			stats.Skipped++
		}
	}
	return stats
}

// Finalize marks a complete session read-only.
func (s *ConversionSession) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if !entry.Terminal() {
			return fmt.Errorf("%w: %s is %s", shared.ErrInvalidTransition, entry.Title.VideoID, entry.State)
		}
	}

	s.finalized = true
	return nil
}

// Finalized reports whether the session has been marked read-only.
func (s *ConversionSession) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// SessionSnapshot is the serializable form of a session for persistence.
type SessionSnapshot struct {
	ID           string       `json:"id"`
	PlaylistRef  string       `json:"playlist_ref"`
	PlaylistName string       `json:"playlist_name"`
	CreatedAt    time.Time    `json:"created_at"`
	Finalized    bool         `json:"finalized"`
	Entries      []TitleEntry `json:"entries"`
}

// Snapshot captures the session state for persistence.
func (s *ConversionSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]TitleEntry, len(s.entries))
	for i, entry := range s.entries {
		entries[i] = *entry
	}

	return SessionSnapshot{
		ID:           s.ID,
		PlaylistRef:  s.PlaylistRef,
		PlaylistName: s.PlaylistName,
		CreatedAt:    s.CreatedAt,
		Finalized:    s.finalized,
		Entries:      entries,
	}
}

// RestoreSession rebuilds a session from a persisted snapshot.
func RestoreSession(snapshot SessionSnapshot) *ConversionSession {
	s := &ConversionSession{
		ID:           snapshot.ID,
		PlaylistRef:  snapshot.PlaylistRef,
		PlaylistName: snapshot.PlaylistName,
		CreatedAt:    snapshot.CreatedAt,
		finalized:    snapshot.Finalized,
		byVideoID:    make(map[string]*TitleEntry, len(snapshot.Entries)),
	}

	for i := range snapshot.Entries {
		entry := snapshot.Entries[i]
		s.entries = append(s.entries, &entry)
		s.byVideoID[entry.Title.VideoID] = &entry
	}

	return s
}
