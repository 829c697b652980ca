package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"parrot/history"
	"parrot/score"
	"parrot/session"
)

// TUI message types
type StateMsg struct{ State session.State }
type WordAdvanceMsg struct{ Index int }
type ScoredMsg struct{ Result score.Result }
type SessionErrorMsg struct {
	Kind session.ErrorKind
	Err  error
}
type HistoryMsg struct {
	Records []history.Record
	Average int
	Err     error
}

// teaSink forwards engine events into the Bubble Tea program. The
// program pointer is set once before the engine can emit anything.
type teaSink struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *teaSink) setProgram(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *teaSink) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *teaSink) StateChanged(st session.State)  { s.send(StateMsg{State: st}) }
func (s *teaSink) WordAdvance(index int)          { s.send(WordAdvanceMsg{Index: index}) }
func (s *teaSink) Scored(r score.Result)          { s.send(ScoredMsg{Result: r}) }
func (s *teaSink) SessionError(k session.ErrorKind, err error) {
	s.send(SessionErrorMsg{Kind: k, Err: err})
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24")).Bold(true)
	goodWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badWordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	recStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type tuiModel struct {
	engine *session.Engine
	store  *history.Store
	text   session.Text

	state       session.State
	wordIdx     int
	result      score.Result
	hasResult   bool
	errKind     session.ErrorKind
	errText     string
	showHistory bool
	records     []history.Record
	average     int
	historyErr  string

	spin          spinner.Model
	width, height int
}

func newTUIModel(engine *session.Engine, store *history.Store, text session.Text) tuiModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return tuiModel{
		engine:  engine,
		store:   store,
		text:    text,
		wordIdx: -1,
		spin:    sp,
	}
}

func NewTUIProgram(engine *session.Engine, store *history.Store, text session.Text) *tea.Program {
	return tea.NewProgram(newTUIModel(engine, store, text), tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m tuiModel) toggleRecording() tea.Cmd {
	engine, text := m.engine, m.text
	if m.state == session.StateRecording {
		return func() tea.Msg {
			// Outcome arrives through the sink; errors already produce
			// SessionErrorMsg.
			engine.Stop(context.Background())
			return nil
		}
	}
	return func() tea.Msg {
		engine.Start(context.Background(), text)
		return nil
	}
}

func (m tuiModel) loadHistory() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		recs, err := store.List()
		if err != nil {
			return HistoryMsg{Err: err}
		}
		avg, err := store.AverageScore()
		if err != nil {
			return HistoryMsg{Err: err}
		}
		return HistoryMsg{Records: recs, Average: avg}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ":
			if m.showHistory {
				return m, nil
			}
			return m, m.toggleRecording()
		case "h":
			m.showHistory = !m.showHistory
			if m.showHistory {
				return m, m.loadHistory()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case StateMsg:
		m.state = msg.State
		switch m.state {
		case session.StatePermissionPending:
			m.wordIdx = -1
			m.hasResult = false
			m.errText = ""
		case session.StateIdle:
			m.wordIdx = -1
		}

	case WordAdvanceMsg:
		m.wordIdx = msg.Index

	case ScoredMsg:
		m.result = msg.Result
		m.hasResult = true

	case SessionErrorMsg:
		m.errKind = msg.Kind
		m.errText = msg.Err.Error()

	case HistoryMsg:
		if msg.Err != nil {
			m.historyErr = msg.Err.Error()
		} else {
			m.records = msg.Records
			m.average = msg.Average
			m.historyErr = ""
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHistory {
		return m.historyView()
	}
	return m.practiceView()
}

func (m tuiModel) practiceView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("parrot — read the sentence aloud") + "\n\n")

	b.WriteString(m.renderSentence() + "\n\n")
	b.WriteString(m.renderStatus() + "\n")

	if m.hasResult {
		b.WriteString("\n")
		b.WriteString(scoreStyle.Render(fmt.Sprintf("Score: %d/100", m.result.Score)) + "\n")
		b.WriteString(feedbackStyle.Render(m.result.Feedback) + "\n")
		if m.result.HasWPM {
			b.WriteString(dimStyle.Render(fmt.Sprintf("Pace: %d words/min", m.result.WPM)) + "\n")
		}
	}
	if m.errText != "" {
		b.WriteString("\n" + errStyle.Render(fmt.Sprintf("⚠ %s: %s", m.errKind, m.errText)) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("space record/stop · h history · q quit"))
	return b.String()
}

// renderSentence lays out the practiced words: the pacer's current word
// is highlighted while recording, and after scoring each word is
// colored by its recognized confidence.
func (m tuiModel) renderSentence() string {
	parts := make([]string, len(m.text.Words))
	for i, w := range m.text.Words {
		switch {
		case i == m.wordIdx:
			parts[i] = currentStyle.Render(w)
		case m.hasResult:
			ws, ok := score.Lookup(strings.TrimFunc(w, unicode.IsPunct), m.result.Words)
			switch {
			case !ok:
				parts[i] = dimStyle.Render(w)
			case ws.IsMispronounced:
				parts[i] = badWordStyle.Render(fmt.Sprintf("%s(%d%%)", w, ws.Confidence))
			default:
				parts[i] = goodWordStyle.Render(fmt.Sprintf("%s(%d%%)", w, ws.Confidence))
			}
		default:
			parts[i] = wordStyle.Render(w)
		}
	}
	return strings.Join(parts, " ")
}

func (m tuiModel) renderStatus() string {
	switch m.state {
	case session.StatePermissionPending:
		return idleStyle.Render("requesting microphone...")
	case session.StateRecording:
		return recStyle.Render("● REC — press space when done")
	case session.StateStopping:
		return idleStyle.Render("finishing recording...")
	case session.StateProcessing:
		return m.spin.View() + idleStyle.Render(" transcribing...")
	case session.StateScored:
		return idleStyle.Render("○ done — space to try again")
	case session.StateError:
		return idleStyle.Render("○ space to retry")
	default:
		return idleStyle.Render("○ press space to start")
	}
}

func (m tuiModel) historyView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("practice history") + "\n\n")

	if m.historyErr != "" {
		b.WriteString(errStyle.Render("⚠ "+m.historyErr) + "\n")
	} else if len(m.records) == 0 {
		b.WriteString(dimStyle.Render("No sessions recorded yet") + "\n")
	} else {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d sessions · average score %d", len(m.records), m.average)) + "\n\n")
		max := m.height - 8
		if max < 1 {
			max = 1
		}
		for i, r := range m.records {
			if i >= max {
				b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(m.records)-i)) + "\n")
				break
			}
			text := r.Text
			if limit := m.width - 30; limit > 10 && len(text) > limit {
				text = text[:limit-1] + "…"
			}
			line := fmt.Sprintf("%s  %3d  %s", r.Date.Local().Format("Jan 02 15:04"), r.Score, text)
			b.WriteString(wordStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("h back · q quit"))
	return b.String()
}
