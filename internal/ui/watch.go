package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// FetchFunc polls the gateway once
type FetchFunc func(ctx context.Context) (protocol.Observations, error)

// WatchConfig configures the live observation view
type WatchConfig struct {
	Title    string
	Gateway  string
	Interval time.Duration
	Fetch    FetchFunc
	Sensors  func() []sensors.State // optional
	Now      func() time.Time       // optional clock
}

type pollResultMsg struct {
	obs protocol.Observations
	err error
	at  time.Time
}

// pollNowMsg carries the poll count it was scheduled after so a manual
// refresh does not leave a second timer chain running
type pollNowMsg struct{ seq int }

type frameMsg time.Time

// WatchModel is a Bubble Tea model that polls a gateway on an interval and
// renders the latest observations. A failed poll keeps the previous
// observations on screen with the error underneath.
type WatchModel struct {
	cfg       WatchConfig
	ctx       context.Context
	spinner   spinner.Model
	countdown Countdown
	width     int

	polling  bool
	polls    int
	obs      protocol.Observations
	lastPoll time.Time
	err      error
}

// NewWatchModel creates the watch model; ctx bounds every poll
func NewWatchModel(ctx context.Context, cfg WatchConfig) WatchModel {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Title == "" {
		cfg.Title = "GW1000 live data"
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = WarningTitleStyle

	width := GetTerminalWidth()
	return WatchModel{
		cfg:       cfg,
		ctx:       ctx,
		spinner:   s,
		countdown: NewCountdown(cfg.Interval, width),
		width:     width,
		polling:   true,
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll(), frame())
}

func (m WatchModel) poll() tea.Cmd {
	ctx, fetch, now := m.ctx, m.cfg.Fetch, m.cfg.Now
	return func() tea.Msg {
		obs, err := fetch(ctx)
		return pollResultMsg{obs: obs, err: err, at: now()}
	}
}

func frame() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.polling {
				m.polling = true
				return m, m.poll()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
		m.countdown = NewCountdown(m.cfg.Interval, m.width)
		return m, nil

	case pollResultMsg:
		m.polling = false
		m.polls++
		m.lastPoll = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.obs = msg.obs
		}
		seq := m.polls
		return m, tea.Tick(m.cfg.Interval, func(time.Time) tea.Msg { return pollNowMsg{seq: seq} })

	case pollNowMsg:
		if m.polling || msg.seq != m.polls {
			return m, nil
		}
		m.polling = true
		return m, m.poll()

	case frameMsg:
		return m, frame()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(SectionTitleStyle.Render(m.cfg.Title))
	if m.cfg.Gateway != "" {
		b.WriteString(HeaderCommandStyle.Render(m.cfg.Gateway))
	}
	b.WriteString("\n\n")

	switch {
	case m.polling:
		b.WriteString("  " + m.spinner.View() + " polling gateway...")
	case !m.lastPoll.IsZero():
		b.WriteString(StatusLineStyle.Render("updated " + m.lastPoll.Format("15:04:05")))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorMessageStyle.Render(fmt.Sprintf("  %s %v", FailureMarker, m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.obs != nil {
		b.WriteString(RenderObservations(m.obs, m.width))
		b.WriteString("\n\n")
	}

	if m.cfg.Sensors != nil {
		if states := m.cfg.Sensors(); len(states) > 0 {
			b.WriteString(RenderSensors(states))
			b.WriteString("\n\n")
		}
	}

	if !m.polling && !m.lastPoll.IsZero() {
		b.WriteString(m.countdown.View(m.cfg.Now().Sub(m.lastPoll)))
		b.WriteString("\n")
	}
	b.WriteString(StatusLineStyle.Render("q quit • r refresh"))
	b.WriteString("\n")

	return b.String()
}

// Observations returns the observations currently shown
func (m WatchModel) Observations() protocol.Observations {
	return m.obs
}

// RunWatch runs the live view until the user quits or ctx is cancelled
func RunWatch(ctx context.Context, cfg WatchConfig) error {
	p := tea.NewProgram(NewWatchModel(ctx, cfg), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
