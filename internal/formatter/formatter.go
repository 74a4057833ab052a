// package formatter renders conversion reports to various formats (JSON, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
	"github.com/desertthunder/youtify/internal/tasks"
)

// ReportRow is one title's outcome in a conversion report.
type ReportRow struct {
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	State        string  `json:"state"`
	Tier         string  `json:"tier,omitempty"`
	Action       string  `json:"action,omitempty"`
	DecidedBy    string  `json:"decided_by,omitempty"`
	TrackID      string  `json:"track_id,omitempty"`
	TrackName    string  `json:"track_name,omitempty"`
	TrackArtists string  `json:"track_artists,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// ConversionReport summarizes a session for export.
type ConversionReport struct {
	SessionID    string             `json:"session_id"`
	PlaylistRef  string             `json:"playlist_ref"`
	PlaylistName string             `json:"playlist_name"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Stats        tasks.SessionStats `json:"stats"`
	Rows         []ReportRow        `json:"rows"`
}

// BuildReport flattens a session into a report, preserving title order.
func BuildReport(session *tasks.ConversionSession) *ConversionReport {
	report := &ConversionReport{
		SessionID:    session.ID,
		PlaylistRef:  session.PlaylistRef,
		PlaylistName: session.PlaylistName,
		GeneratedAt:  time.Now().UTC(),
		Stats:        session.Stats(),
	}

	for _, entry := range session.Entries() {
		row := ReportRow{
			VideoID: entry.Title.VideoID,
			Title:   entry.Title.Title,
			State:   entry.State.String(),
		}

		if entry.Result != nil {
			row.Tier = entry.Result.Tier.String()
			if len(entry.Result.Ranked) > 0 {
				row.Score = entry.Result.Ranked[0].Score
			}
		}

		if entry.Decision != nil {
			row.Action = entry.Decision.Action.String()
			row.DecidedBy = entry.Decision.DecidedBy.String()
			if track := entry.Decision.ChosenTrack; track != nil {
				row.TrackID = track.ID
				row.TrackName = track.Name
				row.TrackArtists = joinArtists(track)
			}
		}

		report.Rows = append(report.Rows, row)
	}

	return report
}

func joinArtists(track *services.TrackResult) string {
	var buf bytes.Buffer
	for i, artist := range track.Artists {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(artist)
	}
	return buf.String()
}

// ReportToJSON renders the report as indented JSON.
func ReportToJSON(report *ConversionReport) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// ReportToCSV renders the per-title rows as CSV with columns: VideoID, Title, State, Tier, Action, DecidedBy, TrackID, TrackName, TrackArtists, Score
func ReportToCSV(report *ConversionReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"VideoID", "Title", "State", "Tier", "Action", "DecidedBy", "TrackID", "TrackName", "TrackArtists", "Score"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range report.Rows {
		score := ""
		if row.Score > 0 {
			score = strconv.FormatFloat(row.Score, 'f', 3, 64)
		}
		record := []string{
			row.VideoID,
			row.Title,
			row.State,
			row.Tier,
			row.Action,
			row.DecidedBy,
			row.TrackID,
			row.TrackName,
			row.TrackArtists,
			score,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToText renders a human-readable summary.
func ReportToText(report *ConversionReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Conversion: %s\n", report.PlaylistName))
	buf.WriteString(fmt.Sprintf("Playlist: %s\n", report.PlaylistRef))
	buf.WriteString(fmt.Sprintf("Titles: %d (auto %d, user %d, rejected %d, skipped %d, pending %d)\n\n",
		report.Stats.Total,
		report.Stats.AutoAccepted,
		report.Stats.UserAccepted,
		report.Stats.Rejected,
		report.Stats.Skipped,
		report.Stats.Pending,
	))

	for i, row := range report.Rows {
		outcome := row.State
		if row.Action != "" {
			outcome = row.Action
		}
		line := fmt.Sprintf("%d. %s [%s]", i+1, row.Title, outcome)
		if row.TrackName != "" {
			line += fmt.Sprintf(" -> %s - %s", row.TrackArtists, row.TrackName)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// WriteReport renders and writes a report in the requested format.
//
// Supported formats: json, csv, txt.
func WriteReport(report *ConversionReport, format, path string) error {
	var data []byte
	var err error

	switch format {
	case "json", "":
		data, err = ReportToJSON(report)
	case "csv":
		data, err = ReportToCSV(report)
	case "txt", "text":
		data, err = ReportToText(report)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
