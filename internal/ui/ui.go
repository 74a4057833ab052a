package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/tasks"
)

// ViewState identifies which screen the TUI is showing.
type ViewState int

const (
	ConvertView ViewState = iota
	ReviewListView
	CandidateView
	ManualSearchView
	ExportView
	ResultView
)

type progressMsg tasks.ProgressUpdate

type conversionDoneMsg struct {
	err error
}

type decisionAppliedMsg struct {
	err error
}

type manualSearchDoneMsg struct {
	videoID string
	err     error
}

type exportDoneMsg struct {
	playlist *services.Playlist
	report   *services.AddTracksReport
	err      error
}

// Model is the bubbletea model driving one playlist conversion.
type Model struct {
	ctx     context.Context
	engine  *tasks.ConversionEngine
	session *tasks.ConversionSession

	view   ViewState
	keys   keyMap
	help   help.Model
	width  int
	height int

	reviewList    list.Model
	candidateList list.Model
	searchInput   textinput.Model

	progressChan chan tasks.ProgressUpdate
	status       string
	errText      string
	current      string

	playlist *services.Playlist
	report   *services.AddTracksReport
	runErr   error
}

// NewModel creates the TUI model for a prepared session. Run is started by
// Init; the caller only provides the engine and an unstarted session.
func NewModel(ctx context.Context, engine *tasks.ConversionEngine, session *tasks.ConversionSession) *Model {
	reviewList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	reviewList.Title = "Titles awaiting review"
	reviewList.SetShowHelp(false)

	candidateList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	candidateList.Title = "Ranked candidates"
	candidateList.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "artist and song"
	input.CharLimit = 200

	return &Model{
		ctx:           ctx,
		engine:        engine,
		session:       session,
		view:          ConvertView,
		keys:          newKeyMap(),
		help:          help.New(),
		reviewList:    reviewList,
		candidateList: candidateList,
		searchInput:   input,
		progressChan:  make(chan tasks.ProgressUpdate, 64),
		status:        "Starting conversion...",
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startConversion(), m.waitForProgress())
}

// startConversion runs the engine and closes the progress channel when the
// run returns, so waitForProgress can drain and stop.
func (m *Model) startConversion() tea.Cmd {
	return func() tea.Msg {
		err := m.engine.Run(m.ctx, m.session, m.progressChan)
		close(m.progressChan)
		return conversionDoneMsg{err: err}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return nil
		}
		return progressMsg(update)
	}
}

func (m *Model) resolveCmd(videoID string, action tasks.Action, track *services.TrackResult) tea.Cmd {
	return func() tea.Msg {
		return decisionAppliedMsg{err: m.session.Resolve(videoID, action, track)}
	}
}

func (m *Model) manualSearchCmd(videoID, query string) tea.Cmd {
	return func() tea.Msg {
		return manualSearchDoneMsg{videoID: videoID, err: m.engine.ManualSearch(m.ctx, m.session, videoID, query)}
	}
}

func (m *Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		playlist, report, err := m.engine.Export(m.ctx, m.session, "", nil)
		return exportDoneMsg{playlist: playlist, report: report, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.reviewList.SetSize(msg.Width-4, msg.Height-8)
		m.candidateList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case progressMsg:
		m.status = msg.Message
		return m, m.waitForProgress()

	case conversionDoneMsg:
		if msg.err != nil {
			m.runErr = msg.err
			m.view = ResultView
			return m, nil
		}
		return m, m.refreshReviewList()

	case decisionAppliedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		return m, m.refreshReviewList()

	case manualSearchDoneMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			m.view = CandidateView
			return m, nil
		}
		m.errText = ""
		entry, err := m.session.Entry(msg.videoID)
		if err != nil || entry.Terminal() {
			return m, m.refreshReviewList()
		}
		m.openCandidates(entry)
		return m, nil

	case exportDoneMsg:
		m.playlist = msg.playlist
		m.report = msg.report
		m.runErr = msg.err
		m.view = ResultView
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

// refreshReviewList rebuilds the review list and advances to export when
// every title is decided.
func (m *Model) refreshReviewList() tea.Cmd {
	awaiting := m.session.AwaitingReview()
	if len(awaiting) == 0 && m.session.Complete() {
		m.view = ExportView
		return nil
	}

	cmd := m.reviewList.SetItems(reviewItems(awaiting))
	m.view = ReviewListView
	return cmd
}

func (m *Model) openCandidates(entry tasks.TitleEntry) {
	m.current = entry.Title.VideoID
	m.candidateList.Title = entry.Title.Title
	if entry.Result != nil {
		m.candidateList.SetItems(candidateItems(entry.Result.Ranked))
	} else {
		m.candidateList.SetItems(nil)
	}
	m.candidateList.ResetSelected()
	m.view = CandidateView
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view != ManualSearchView && key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case ReviewListView:
		return m.handleReviewListKeys(msg)
	case CandidateView:
		return m.handleCandidateKeys(msg)
	case ManualSearchView:
		return m.handleManualSearchKeys(msg)
	case ExportView:
		return m.handleExportKeys(msg)
	case ResultView:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleReviewListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		if item, ok := m.reviewList.SelectedItem().(reviewItem); ok {
			m.openCandidates(item.entry)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.reviewList, cmd = m.reviewList.Update(msg)
	return m, cmd
}

func (m *Model) handleCandidateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = ReviewListView
		return m, nil
	case key.Matches(msg, m.keys.accept):
		if item, ok := m.candidateList.SelectedItem().(candidateItem); ok {
			track := item.match.Track
			return m, m.resolveCmd(m.current, tasks.ActionAccept, &track)
		}
		return m, nil
	case key.Matches(msg, m.keys.skip):
		return m, m.resolveCmd(m.current, tasks.ActionSkip, nil)
	case key.Matches(msg, m.keys.reject):
		return m, m.resolveCmd(m.current, tasks.ActionReject, nil)
	case key.Matches(msg, m.keys.manual):
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.view = ManualSearchView
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.candidateList, cmd = m.candidateList.Update(msg)
	return m, cmd
}

func (m *Model) handleManualSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.searchInput.Blur()
		m.view = CandidateView
		return m, nil
	case msg.Type == tea.KeyEnter:
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		m.searchInput.Blur()
		m.status = "Searching..."
		return m, m.manualSearchCmd(m.current, query)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) handleExportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.status = "Creating playlist..."
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.no):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	switch m.view {
	case ConvertView:
		b.WriteString(styles.title.Render("Converting " + m.session.PlaylistName))
		b.WriteString("\n" + m.status + "\n")
	case ReviewListView:
		b.WriteString(m.reviewList.View())
		b.WriteString("\n" + m.help.View(m.keys))
	case CandidateView:
		b.WriteString(m.candidateList.View())
		b.WriteString("\n" + styles.help.Render("a: accept • s: skip • x: reject • m: manual search • esc: back"))
	case ManualSearchView:
		b.WriteString(styles.title.Render("Manual search"))
		b.WriteString("\n" + m.searchInput.View())
		b.WriteString("\n" + styles.help.Render("enter: search • esc: back"))
	case ExportView:
		stats := m.session.Stats()
		b.WriteString(styles.title.Render("Ready to export"))
		accepted := stats.AutoAccepted + stats.UserAccepted
		b.WriteString(fmt.Sprintf("\n%d accepted, %d rejected, %d skipped\n", accepted, stats.Rejected, stats.Skipped))
		b.WriteString("\nCreate the Spotify playlist? " + styles.help.Render("y/n"))
	case ResultView:
		b.WriteString(m.resultView())
	}

	if m.errText != "" {
		b.WriteString("\n" + styles.err.Render(m.errText))
	}
	return b.String()
}

func (m *Model) resultView() string {
	if m.runErr != nil {
		return styles.err.Render("Conversion failed: " + m.runErr.Error())
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render("Playlist created"))
	if m.playlist != nil {
		b.WriteString("\n" + m.playlist.Name)
		if m.playlist.URL != "" {
			b.WriteString("\n" + m.playlist.URL)
		}
	}
	if m.report != nil {
		b.WriteString(fmt.Sprintf("\n%d tracks added", m.report.Added))
		if len(m.report.Failed) > 0 {
			b.WriteString(styles.warn.Render(fmt.Sprintf(", %d failed", len(m.report.Failed))))
		}
	}
	b.WriteString("\n" + styles.help.Render("press any key to exit"))
	return b.String()
}
