package watch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90D9")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0E0E6"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0"))

	bodyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("gqlite watch"))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(m.endpoint))
	b.WriteString("\n\n")

	if m.state.Loading {
		b.WriteString(m.spin.View())
		b.WriteString(faintStyle.Render(" fetching..."))
		b.WriteString("\n")
	}

	if m.state.Err != nil {
		b.WriteString(errorStyle.Render("error: " + m.state.Err.Error()))
		b.WriteString("\n")
	}

	if body := m.renderData(); body != "" {
		b.WriteString(bodyStyle.Render(body))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("r refetch • q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderData() string {
	if len(m.state.Data) == 0 {
		return ""
	}
	if m.extract != "" {
		value := gjson.GetBytes(m.state.Data, m.extract)
		if !value.Exists() {
			return errorStyle.Render(fmt.Sprintf("extract path %q matched nothing", m.extract))
		}
		return value.String()
	}
	var pretty json.RawMessage = m.state.Data
	if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
		return string(indented)
	}
	return string(m.state.Data)
}

func (m Model) renderStats() string {
	s := m.stats
	if s.Total == 0 {
		return faintStyle.Render("no calls yet")
	}
	return faintStyle.Render(fmt.Sprintf(
		"calls %d (ok %d, failed %d) • mean %s • p50 %s • p95 %s • p99 %s",
		s.Total, s.Successes, s.Failures,
		roundLatency(s.MeanLatency),
		roundLatency(s.P50Latency),
		roundLatency(s.P95Latency),
		roundLatency(s.P99Latency),
	))
}

func roundLatency(d time.Duration) time.Duration {
	return d.Round(100 * time.Microsecond)
}
