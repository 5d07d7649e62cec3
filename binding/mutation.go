package binding

import (
	"context"
	"encoding/json"

	graphqllite "github.com/leesj3857/Graphql-lite"
)

// Mutation binds one mutation operation. Unlike Query it executes only
// on demand, and Execute both records the outcome in state and
// re-raises it to the caller.
type Mutation struct {
	hub

	client    *graphqllite.Client
	operation string
	callOpts  []graphqllite.CallOption
}

// MutationOption configures a Mutation at construction time.
type MutationOption func(*Mutation)

// WithMutationCallOptions forwards per-call overrides to every execution.
func WithMutationCallOptions(opts ...graphqllite.CallOption) MutationOption {
	return func(m *Mutation) {
		m.callOpts = opts
	}
}

// NewMutation binds the operation without executing it.
func NewMutation(client *graphqllite.Client, operation string, opts ...MutationOption) *Mutation {
	m := &Mutation{
		client:    client,
		operation: operation,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs the mutation with the given variables. The returned data
// and error mirror what was recorded in state: request failures and
// application-level errors (joined) both surface as the error.
func (m *Mutation) Execute(ctx context.Context, variables map[string]any) (json.RawMessage, error) {
	m.publish(State{Loading: true})

	resp, err := m.client.Execute(ctx, m.operation, variables, m.callOpts...)

	switch {
	case err != nil:
		m.publish(State{Err: err})
		return nil, err
	case len(resp.Errors) > 0:
		m.publish(State{Err: resp.Errors})
		return nil, resp.Errors
	default:
		m.publish(State{Data: resp.Data})
		return resp.Data, nil
	}
}
