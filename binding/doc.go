// Package binding exposes GraphQL calls as subscribable units of state.
//
// A [Query] or [Mutation] wraps one operation on a
// [graphqllite.Client] and publishes loading/data/error transitions to
// registered observers through an explicit subscribe/unsubscribe
// contract; no observer is ever invoked after its unsubscribe function
// returns, and no UI framework lifecycle is assumed.
//
//	q := binding.NewQuery(client, operation, vars)
//	unsubscribe := q.Subscribe(func(s binding.State) { render(s) })
//	go q.Refetch(ctx)
//	...
//	unsubscribe()
//
// Observers run synchronously on the goroutine that settled the fetch
// and must not call back into the binding.
package binding
