package graphqllite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// capturingServer records the last request body and headers and replies
// with a fixed body.
type capturingServer struct {
	mu      sync.Mutex
	body    []byte
	headers http.Header
	reply   string
	status  int
}

func (s *capturingServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.body = body
		s.headers = r.Header.Clone()
		s.mu.Unlock()

		status := s.status
		if status == 0 {
			status = http.StatusOK
		}
		reply := s.reply
		if reply == "" {
			reply = `{"data":{}}`
		}
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}
}

func (s *capturingServer) lastBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body
}

func (s *capturingServer) lastHeader(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers.Get(key)
}

func TestNew(t *testing.T) {
	t.Run("empty endpoint", func(t *testing.T) {
		if _, err := New("   "); err == nil {
			t.Error("New(blank) error = nil, want error")
		}
	})

	t.Run("default content type", func(t *testing.T) {
		srv := &capturingServer{}
		ts := httptest.NewServer(srv.handler())
		defer ts.Close()

		client, err := New(ts.URL)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, err := client.Execute(context.Background(), "{ ping }", nil); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got := srv.lastHeader("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
	})
}

func TestExecute_RequestBody(t *testing.T) {
	srv := &capturingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Run("variables present", func(t *testing.T) {
		op := `query GetUser($id: ID!) { user(id: $id) { id } }`
		if _, err := client.Execute(context.Background(), op, map[string]any{"id": "123"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		var sent map[string]json.RawMessage
		if err := json.Unmarshal(srv.lastBody(), &sent); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if len(sent) != 2 {
			t.Errorf("request body has %d keys, want exactly query and variables", len(sent))
		}
		var query string
		if err := json.Unmarshal(sent["query"], &query); err != nil || query != op {
			t.Errorf("query = %q, want %q", query, op)
		}
		var vars map[string]any
		if err := json.Unmarshal(sent["variables"], &vars); err != nil {
			t.Fatalf("variables not an object: %v", err)
		}
		if vars["id"] != "123" {
			t.Errorf("variables[id] = %v, want 123", vars["id"])
		}
	})

	t.Run("nil variables default to empty object", func(t *testing.T) {
		if _, err := client.Execute(context.Background(), "{ ping }", nil); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		var sent struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(srv.lastBody(), &sent); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if sent.Variables == nil {
			t.Error("variables omitted or null, want {}")
		}
		if len(sent.Variables) != 0 {
			t.Errorf("variables = %v, want empty object", sent.Variables)
		}
	})
}

func TestExecute_HeaderMerge(t *testing.T) {
	srv := &capturingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL,
		WithHeader("Authorization", "Bearer default"),
		WithHeader("X-Tenant", "acme"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.Execute(context.Background(), "{ ping }", nil,
		WithCallHeader("Authorization", "Bearer override")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := srv.lastHeader("Authorization"); got != "Bearer override" {
		t.Errorf("overridden header = %q, want per-call value", got)
	}
	if got := srv.lastHeader("X-Tenant"); got != "acme" {
		t.Errorf("unset header = %q, want retained default", got)
	}

	// The override must not leak into the stored defaults.
	if _, err := client.Execute(context.Background(), "{ ping }", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := srv.lastHeader("Authorization"); got != "Bearer default" {
		t.Errorf("default header after override call = %q, want Bearer default", got)
	}
}

func TestSetHeader(t *testing.T) {
	srv := &capturingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	client.SetHeader("X-Token", "first")
	client.SetHeader("X-Token", "second")
	client.SetHeaders(map[string]string{"X-Other": "kept"})

	if _, err := client.Execute(context.Background(), "{ ping }", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := srv.lastHeader("X-Token"); got != "second" {
		t.Errorf("X-Token = %q, want latest value", got)
	}
	if got := srv.lastHeader("X-Other"); got != "kept" {
		t.Errorf("X-Other = %q, want kept", got)
	}

	// Partial SetHeaders leaves unrelated keys untouched.
	client.SetHeaders(map[string]string{"X-Other": "updated"})
	if _, err := client.Execute(context.Background(), "{ ping }", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := srv.lastHeader("X-Token"); got != "second" {
		t.Errorf("X-Token after partial merge = %q, want second", got)
	}
	if got := srv.lastHeader("X-Other"); got != "updated" {
		t.Errorf("X-Other = %q, want updated", got)
	}
}

func TestExecute_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
		io.WriteString(w, `{"data":{}}`)
	}))
	defer ts.Close()

	t.Run("client timeout", func(t *testing.T) {
		client, err := New(ts.URL, WithTimeout(100*time.Millisecond))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		resp, err := client.Execute(context.Background(), "{ slow }", nil)
		if err == nil {
			t.Fatal("Execute() error = nil, want timeout failure")
		}
		if resp != nil {
			t.Error("Execute() returned a response alongside a timeout failure")
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("error type = %T, want *RequestError", err)
		}
		if !reqErr.Timeout() {
			t.Error("Timeout() = false, want true")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("error does not unwrap to context.DeadlineExceeded")
		}
	})

	t.Run("per-call override beats client default", func(t *testing.T) {
		client, err := New(ts.URL, WithTimeout(5*time.Second))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		_, err = client.Execute(context.Background(), "{ slow }", nil,
			WithCallTimeout(50*time.Millisecond))
		if err == nil {
			t.Fatal("Execute() error = nil, want timeout failure")
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) || !reqErr.Timeout() {
			t.Errorf("error = %v, want timeout *RequestError", err)
		}
	})
}

func TestExecute_NonSuccessStatus(t *testing.T) {
	// A valid-looking error body must not be parsed on a non-2xx status.
	srv := &capturingServer{status: http.StatusInternalServerError, reply: `{"errors":[{"message":"boom"}]}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := client.Execute(context.Background(), "{ ping }", nil)
	if err == nil {
		t.Fatal("Execute() error = nil, want status failure")
	}
	if resp != nil {
		t.Error("Execute() produced a response for a non-2xx status")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", reqErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("failure message %q does not carry the status code", err.Error())
	}
	if !strings.HasPrefix(err.Error(), "graphql-lite: request failed") {
		t.Errorf("failure message %q lacks the request-failure prefix", err.Error())
	}
}

func TestExecute_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = client.Execute(context.Background(), "{ ping }", nil)
	if err == nil {
		t.Fatal("Execute() error = nil, want transport failure")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Timeout() {
		t.Error("Timeout() = true for a plain transport failure")
	}
}

func TestExecute_MalformedBody(t *testing.T) {
	srv := &capturingServer{reply: "not json"}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = client.Execute(context.Background(), "{ ping }", nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError for undecodable body", err)
	}
}

func TestExecute_ApplicationErrors(t *testing.T) {
	srv := &capturingServer{reply: `{"data":null,"errors":[{"message":"first","locations":[{"line":1,"column":2}],"path":["user"]},{"message":"second"}]}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := client.Execute(context.Background(), "{ ping }", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v, application errors must not fail Execute", err)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(resp.Errors))
	}
	if resp.Errors[0].Locations[0].Line != 1 || resp.Errors[0].Locations[0].Column != 2 {
		t.Errorf("location = %+v, want line 1 column 2", resp.Errors[0].Locations[0])
	}
	if resp.Errors[0].Path[0] != "user" {
		t.Errorf("path = %v, want [user]", resp.Errors[0].Path)
	}
}

func TestQuery(t *testing.T) {
	t.Run("resolves data", func(t *testing.T) {
		srv := &capturingServer{reply: `{"data":{"user":{"id":"123","name":"John Doe"}}}`}
		ts := httptest.NewServer(srv.handler())
		defer ts.Close()

		client, err := New(ts.URL)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		var result struct {
			User struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"user"`
		}
		err = client.Query(context.Background(),
			`query GetUser($id: ID!) { user(id:$id){id name} }`,
			map[string]any{"id": "123"}, &result)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if result.User.ID != "123" || result.User.Name != "John Doe" {
			t.Errorf("data = %+v, want id 123 name John Doe", result.User)
		}
	})

	t.Run("fails on application errors with joined message", func(t *testing.T) {
		srv := &capturingServer{reply: `{"errors":[{"message":"first"},{"message":"second"}]}`}
		ts := httptest.NewServer(srv.handler())
		defer ts.Close()

		client, err := New(ts.URL)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		err = client.Query(context.Background(), "{ ping }", nil, nil)
		if err == nil {
			t.Fatal("Query() error = nil, want joined application errors")
		}
		if err.Error() != "first, second" {
			t.Errorf("error message = %q, want %q", err.Error(), "first, second")
		}
		var list ErrorList
		if !errors.As(err, &list) || len(list) != 2 {
			t.Errorf("error = %#v, want ErrorList of 2", err)
		}
	})

	t.Run("null data is not an error", func(t *testing.T) {
		srv := &capturingServer{reply: `{"data":null}`}
		ts := httptest.NewServer(srv.handler())
		defer ts.Close()

		client, err := New(ts.URL)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		out := map[string]any{"sentinel": true}
		if err := client.Query(context.Background(), "{ ping }", nil, &out); err != nil {
			t.Fatalf("Query() error = %v, want nil for null data", err)
		}
		if _, ok := out["sentinel"]; !ok {
			t.Error("out was modified despite absent data")
		}
	})
}

func TestMutate_SharesQueryBehavior(t *testing.T) {
	srv := &capturingServer{reply: `{"data":{"created":true}}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out struct {
		Created bool `json:"created"`
	}
	op := `mutation Create($name: String!) { created }`
	if err := client.Mutate(context.Background(), op, map[string]any{"name": "x"}, &out); err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if !out.Created {
		t.Error("Mutate() did not unmarshal data")
	}

	// The wire format is identical: the fixed "query" key regardless of intent.
	var sent map[string]any
	if err := json.Unmarshal(srv.lastBody(), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent["query"] != op {
		t.Errorf("body query key = %v, want operation text under fixed key", sent["query"])
	}
}
