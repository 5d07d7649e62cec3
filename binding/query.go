package binding

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/time/rate"

	graphqllite "github.com/leesj3857/Graphql-lite"
)

// Query binds one query operation to subscribable state. Refetch and
// SetInput perform the network call synchronously; run them on their
// own goroutine when the caller must not block.
type Query struct {
	hub

	client   *graphqllite.Client
	callOpts []graphqllite.CallOption
	limiter  *rate.Limiter

	// Guarded by the hub lock, like state and observers.
	operation string
	variables map[string]any
	identity  string
	gen       uint64
}

// QueryOption configures a Query at construction time.
type QueryOption func(*Query)

// WithCallOptions forwards per-call overrides to every execution.
func WithCallOptions(opts ...graphqllite.CallOption) QueryOption {
	return func(q *Query) {
		q.callOpts = opts
	}
}

// WithMinRefetchInterval throttles executions: refetches arriving
// before the interval has elapsed are skipped silently. Useful when
// inputs change identity in quick succession.
func WithMinRefetchInterval(min time.Duration) QueryOption {
	return func(q *Query) {
		if min > 0 {
			q.limiter = rate.NewLimiter(rate.Every(min), 1)
		}
	}
}

// NewQuery binds the operation without executing it; the first Refetch
// or identity-changing SetInput triggers the initial call.
func NewQuery(client *graphqllite.Client, operation string, variables map[string]any, opts ...QueryOption) *Query {
	q := &Query{
		client:    client,
		operation: operation,
		variables: variables,
		identity:  identityOf(operation, variables),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Refetch executes the bound operation once, publishing a loading
// transition first and the settled outcome after. Outcomes of fetches
// superseded by a newer one are dropped silently.
func (q *Query) Refetch(ctx context.Context) {
	q.execute(ctx)
}

// SetInput replaces the operation text and variables, re-executing only
// when their combined identity actually changed.
func (q *Query) SetInput(ctx context.Context, operation string, variables map[string]any) {
	id := identityOf(operation, variables)

	q.mu.Lock()
	if id == q.identity {
		q.mu.Unlock()
		return
	}
	q.operation = operation
	q.variables = variables
	q.identity = id
	q.mu.Unlock()

	q.execute(ctx)
}

func (q *Query) execute(ctx context.Context) {
	if q.limiter != nil && !q.limiter.Allow() {
		return
	}

	q.mu.Lock()
	q.gen++
	gen := q.gen
	operation := q.operation
	variables := q.variables
	prev := q.state.Data
	q.mu.Unlock()

	q.publish(State{Loading: true, Data: prev})

	resp, err := q.client.Execute(ctx, operation, variables, q.callOpts...)

	var next State
	switch {
	case err != nil:
		next = State{Err: err}
	case len(resp.Errors) > 0:
		next = State{Err: resp.Errors}
	default:
		next = State{Data: resp.Data}
	}

	q.mu.Lock()
	stale := gen != q.gen
	q.mu.Unlock()
	if stale {
		return
	}
	q.publish(next)
}

// identityOf derives the re-execution key from the operation text and
// the serialized variables. json.Marshal sorts map keys, so equal
// variable maps always produce equal identities.
func identityOf(operation string, variables map[string]any) string {
	vars, err := json.Marshal(variables)
	if err != nil {
		// Unserializable variables fall back to always-distinct; the
		// executor will report the real encoding failure.
		return operation + "\x00!" + time.Now().String()
	}
	return operation + "\x00" + string(vars)
}
