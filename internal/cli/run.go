package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	graphqllite "github.com/leesj3857/Graphql-lite"
	"github.com/leesj3857/Graphql-lite/internal/config"
	"github.com/leesj3857/Graphql-lite/internal/output"
	"github.com/leesj3857/Graphql-lite/internal/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one operation and print the result",
	Long: `Execute a single query or mutation against the configured endpoint.

Example:
  gqlite run -e https://api.example.com/graphql -q '{ viewer { id } }'
  gqlite run -e https://api.example.com/graphql --query-file op.graphql --var id=42
  gqlite run --config gqlite.yaml --extract viewer.id`,
	RunE: runRun,
}

func init() {
	config.RegisterFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return executeOnce(cmd.Context(), cfg, cmd.OutOrStdout())
}

func buildClient(cfg *config.Config) (*graphqllite.Client, error) {
	opts := []graphqllite.Option{
		graphqllite.WithTimeout(cfg.Timeout),
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, graphqllite.WithHeaders(cfg.Headers))
	}
	return graphqllite.New(cfg.Endpoint, opts...)
}

func initTracing(ctx context.Context, cfg *config.Config) *tracing.Provider {
	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: tracing disabled: %v\n", err)
		return &tracing.Provider{}
	}
	return provider
}

func shutdownTracing(provider *tracing.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: tracing shutdown: %v\n", err)
	}
}

func executeOnce(ctx context.Context, cfg *config.Config, w io.Writer) error {
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

	provider := initTracing(ctx, cfg)
	defer shutdownTracing(provider)

	spanCtx, span := tracing.StartCallSpan(ctx, provider.Tracer(), cfg.Endpoint)
	var callOpts []graphqllite.CallOption
	if provider.ShouldPropagate() {
		callOpts = append(callOpts, graphqllite.WithCallHeaders(tracing.InjectHeaders(spanCtx)))
	}

	start := time.Now()
	resp, execErr := client.Execute(spanCtx, operation, vars, callOpts...)
	latency := time.Since(start)
	tracing.EndSpan(span, execErr)

	res := output.Result{
		ID:        output.NewID(),
		Timestamp: time.Now().UTC(),
		Endpoint:  cfg.Endpoint,
		Duration:  latency,
	}
	if execErr != nil {
		res.Failure = execErr.Error()
	} else {
		res.Data = resp.Data
		res.Errors = resp.Errors.Messages()
	}

	if err := output.NewHistory(cfg.HistoryFile).Append(res); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if err := output.Render(w, res, output.Options{JSON: cfg.JSONOutput, Extract: cfg.Extract}); err != nil {
		return err
	}
	if execErr != nil {
		return execErr
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("operation returned %d error(s)", len(resp.Errors))
	}
	return nil
}
