// Package graphqllite is a minimal client for GraphQL-over-HTTP services.
//
// The client performs exactly one POST per call, with per-call and
// per-client header overrides and an optional timeout enforced through
// context cancellation. It does no caching, no retries, and no response
// normalization; queries and mutations are opaque operation text.
//
// # Basic usage
//
//	client, err := graphqllite.New("https://api.example.com/graphql",
//		graphqllite.WithTimeout(10*time.Second),
//		graphqllite.WithHeader("Authorization", "Bearer "+token),
//	)
//	if err != nil {
//		return err
//	}
//
//	var result struct {
//		User struct {
//			ID   string `json:"id"`
//			Name string `json:"name"`
//		} `json:"user"`
//	}
//	err = client.Query(ctx, `query GetUser($id: ID!) { user(id: $id) { id name } }`,
//		map[string]any{"id": "123"}, &result)
//
// # Outcome classification
//
// [Client.Execute] returns a [*Response] only when the HTTP exchange
// succeeded with a 2xx status and the body decoded; every other outcome
// (network failure, non-2xx status, timeout, malformed body) surfaces as
// a [*RequestError]. Application-level errors reported inside a
// successful response never fail Execute; the data-returning
// [Client.Query] and [Client.Mutate] convenience calls fail on them
// with all messages joined.
//
// # Integration
//
// The subscribable state layer lives in
// [github.com/leesj3857/Graphql-lite/binding].
package graphqllite
