package cli

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	graphqllite "github.com/leesj3857/Graphql-lite"
	"github.com/leesj3857/Graphql-lite/binding"
	"github.com/leesj3857/Graphql-lite/internal/clientmetrics"
	"github.com/leesj3857/Graphql-lite/internal/config"
	"github.com/leesj3857/Graphql-lite/internal/output"
	"github.com/leesj3857/Graphql-lite/internal/tracing"
	"github.com/leesj3857/Graphql-lite/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-execute an operation on an interval with a live view",
	Long: `Run an operation repeatedly and render each result as it settles,
with latency percentiles aggregated across calls.

Example:
  gqlite watch -e https://api.example.com/graphql -q '{ health }' --interval 5s
  gqlite watch --config gqlite.yaml --extract health.status`,
	RunE: runWatch,
}

func init() {
	config.RegisterFlags(watchCmd.Flags())
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	operation, err := cfg.OperationText()
	if err != nil {
		return err
	}
	vars, err := cfg.ResolvedVariables()
	if err != nil {
		return err
	}
	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	provider := initTracing(cmd.Context(), cfg)
	defer shutdownTracing(provider)

	var queryOpts []binding.QueryOption
	if provider.ShouldPropagate() {
		// One session span covers the whole watch run; every call
		// carries its context so they link up in the trace.
		sessionCtx, session := tracing.StartCallSpan(cmd.Context(), provider.Tracer(), cfg.Endpoint)
		defer session.End()
		queryOpts = append(queryOpts, binding.WithCallOptions(
			graphqllite.WithCallHeaders(tracing.InjectHeaders(sessionCtx)),
		))
	}
	query := binding.NewQuery(client, operation, vars, queryOpts...)
	defer query.Close()

	recorder := clientmetrics.New()
	model := watch.New(watch.Options{
		Query:    query,
		Recorder: recorder,
		History:  output.NewHistory(cfg.HistoryFile),
		Endpoint: cfg.Endpoint,
		Interval: cfg.Interval,
		Extract:  cfg.Extract,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	printWatchSummary(cmd.OutOrStdout(), recorder.Stats())
	return nil
}

// printWatchSummary reports the latencies aggregated across the whole
// session once the live view has exited.
func printWatchSummary(w io.Writer, s clientmetrics.Stats) {
	if s.Total == 0 {
		return
	}
	fmt.Fprintf(w, "calls %d (ok %d, failed %d) over %s\n",
		s.Total, s.Successes, s.Failures, s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "latency: mean %s, p50 %s, p95 %s, p99 %s, max %s\n",
		roundLatency(s.MeanLatency),
		roundLatency(s.P50Latency),
		roundLatency(s.P95Latency),
		roundLatency(s.P99Latency),
		roundLatency(s.MaxLatency))
}

func roundLatency(d time.Duration) time.Duration {
	return d.Round(100 * time.Microsecond)
}
