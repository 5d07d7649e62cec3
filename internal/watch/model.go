// Package watch implements the interactive terminal view that
// re-executes an operation on an interval and renders each state
// transition as it arrives.
package watch

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leesj3857/Graphql-lite/binding"
	"github.com/leesj3857/Graphql-lite/internal/clientmetrics"
	"github.com/leesj3857/Graphql-lite/internal/output"
)

// Options configures a watch session.
type Options struct {
	Query    *binding.Query
	Recorder *clientmetrics.Recorder
	History  *output.History
	Endpoint string
	Interval time.Duration
	Extract  string
}

// Model is the Bubble Tea model for watch mode.
type Model struct {
	query    *binding.Query
	recorder *clientmetrics.Recorder
	history  *output.History
	endpoint string
	interval time.Duration
	extract  string

	spin        spinner.Model
	state       binding.State
	stats       clientmetrics.Stats
	updates     chan binding.State
	unsubscribe func()

	width    int
	height   int
	quitting bool
}

type tickMsg time.Time

type stateMsg binding.State

type fetchDoneMsg struct {
	latency time.Duration
}

// New creates a watch model over an already-constructed query binding.
func New(opts Options) Model {
	interval := opts.Interval
	if interval == 0 {
		interval = 2 * time.Second
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = clientmetrics.New()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	updates := make(chan binding.State, 16)
	unsubscribe := opts.Query.Subscribe(func(s binding.State) {
		select {
		case updates <- s:
		default:
		}
	})

	return Model{
		query:       opts.Query,
		recorder:    recorder,
		history:     opts.History,
		endpoint:    opts.Endpoint,
		interval:    interval,
		extract:     opts.Extract,
		spin:        sp,
		state:       opts.Query.State(),
		updates:     updates,
		unsubscribe: unsubscribe,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.refetchCmd(),
		m.waitForState(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.quitting {
				m.quitting = true
				// Unsubscribing first guarantees no observer runs
				// again, so closing the channel afterwards is safe.
				m.unsubscribe()
				close(m.updates)
			}
			return m, tea.Quit
		case "r":
			return m, m.refetchCmd()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, m.refetchCmd()

	case stateMsg:
		m.state = binding.State(msg)
		return m, m.waitForState()

	case fetchDoneMsg:
		settled := m.query.State()
		m.recorder.Record(msg.latency, settled.Err)
		m.stats = m.recorder.Stats()
		m.appendHistory(settled, msg.latency)
		return m, tickCmd(m.interval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refetchCmd runs one fetch and reports its latency. State transitions
// arrive separately through the subscription channel.
func (m Model) refetchCmd() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		m.query.Refetch(context.Background())
		return fetchDoneMsg{latency: time.Since(start)}
	}
}

func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.updates
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) appendHistory(s binding.State, latency time.Duration) {
	if m.history == nil {
		return
	}
	res := output.Result{
		Endpoint: m.endpoint,
		Duration: latency,
		Data:     s.Data,
	}
	if s.Err != nil {
		res.Failure = s.Err.Error()
	}
	_ = m.history.Append(res)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
