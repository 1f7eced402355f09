package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func testServerSequence(t *testing.T, statuses []int, headers []http.Header, bodyOK any) *ipv4Server {
	t.Helper()
	var idx int32
	return newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		i := int(atomic.AddInt32(&idx, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		st := statuses[i]
		if headers != nil && i < len(headers) && headers[i] != nil {
			for k, vals := range headers[i] {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
		}
		if st >= 200 && st < 300 {
			w.WriteHeader(st)
			_ = json.NewEncoder(w).Encode(bodyOK)
			return
		}
		w.WriteHeader(st)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
}

func TestGenerateRetriesOn429(t *testing.T) {
	okBody := GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}}
	srv := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"0"}}, {}}, okBody)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 3, 10*time.Millisecond, 100*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: []Message{{Role: "user", Content: "hi"}}, MaxTokens: 1})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRetryAfterHonored(t *testing.T) {
	okBody := GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}}
	// Ask server to instruct a 1-second Retry-After, then succeed.
	srv := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"1"}}, {}}, okBody)
	defer srv.Close()

	c := NewClientWithBaseURL("test", 5*time.Second, 3, 0, 0, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	_, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: []Message{{Role: "user", Content: "hi"}}, MaxTokens: 1})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 900*time.Millisecond { // allow some scheduling variance
		t.Fatalf("expected at least ~1s delay due to Retry-After, got %v", elapsed)
	}
}

func TestErrorIncludesRequestID(t *testing.T) {
	// Server returns 400 with X-Request-Id header
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Request-Id", "req_test_123")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad req", "code": "bad_request"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 1, 10*time.Millisecond, 50*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: []Message{{Role: "user", Content: "hi"}}, MaxTokens: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "req_test_123") {
		t.Fatalf("expected request id in error, got: %v", err)
	}
}

func TestGenerateSendsJSONModeAndHeaders(t *testing.T) {
	var got GenerateRequest
	var title, referer, auth string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title, referer, auth = r.Header.Get("X-Title"), r.Header.Get("HTTP-Referer"), r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		w.Header().Set("X-Request-Id", "req_ok")
		_ = json.NewEncoder(w).Encode(GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: `{"summary":"x"}`}}}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 2*time.Second, 1, 0, 0, srv.URL)
	resp, err := c.Generate(context.Background(), GenerateRequest{
		Model:          "google/gemini-2.0-flash-001",
		Messages:       []Message{{Role: "system", Content: "json only"}, {Role: "user", Content: "hi"}},
		ResponseFormat: JSONObject,
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content() != `{"summary":"x"}` || resp.RequestID != "req_ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Fatalf("response_format not sent: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("messages not sent: %+v", got.Messages)
	}
	if title != "FileSense" || referer == "" || auth != "Bearer sk-test" {
		t.Fatalf("headers: title=%q referer=%q auth=%q", title, referer, auth)
	}
}

func TestGenerateDoesNotRetryByDefault(t *testing.T) {
	var calls int32
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "upstream down", "code": 503}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test", 2*time.Second, 0, 0, 0, srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Message != "upstream down" || apiErr.Code != "503" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestGenerateClassifiesErrors(t *testing.T) {
	cases := []struct {
		status int
		body   map[string]any
		check  func(error) bool
	}{
		{http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "No auth credentials found"}}, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{http.StatusPaymentRequired, map[string]any{"error": map[string]any{"message": "Insufficient credits"}}, func(err error) bool { var e *QuotaExceededError; return errors.As(err, &e) }},
		{http.StatusNotFound, map[string]any{"error": map[string]any{"message": "Model not found"}}, func(err error) bool { var e *ModelNotFoundError; return errors.As(err, &e) }},
		{http.StatusBadRequest, map[string]any{"message": "bad"}, func(err error) bool { var e *BadRequestError; return errors.As(err, &e) }},
	}
	for _, tc := range cases {
		srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(tc.body)
		}))
		c := NewClientWithBaseURL("test", 2*time.Second, 1, 0, 0, srv.URL)
		_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
		srv.Close()
		if err == nil || !tc.check(err) {
			t.Errorf("status %d: unexpected error %T: %v", tc.status, err, err)
		}
	}
}

func TestGenerateMissingKey(t *testing.T) {
	c := NewClient("", time.Second, 1, 0, 0)
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "m"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestRuntimeRegistry(t *testing.T) {
	rt, ok := GetRuntime(ProviderOpenRouter, RuntimeConfig{APIKey: "k"})
	if !ok {
		t.Fatalf("openrouter not registered")
	}
	if kr, ok := rt.(KeyedRuntime); !ok || !kr.RequiresKey() || !kr.HasKey() {
		t.Fatalf("openrouter runtime should require and hold a key")
	}
	rt, _ = GetRuntime(ProviderOpenRouter, RuntimeConfig{})
	if kr := rt.(KeyedRuntime); kr.HasKey() {
		t.Fatalf("openrouter runtime without key reports one")
	}
	rt, ok = GetRuntime(ProviderOllama, RuntimeConfig{})
	if !ok {
		t.Fatalf("ollama not registered")
	}
	if kr, ok := rt.(KeyedRuntime); !ok || kr.RequiresKey() {
		t.Fatalf("ollama runtime should not require a key")
	}
	if _, ok := GetRuntime("nope", RuntimeConfig{}); ok {
		t.Fatalf("unexpected runtime")
	}
	if got := Providers(); len(got) != 2 || got[0] != ProviderOllama || got[1] != ProviderOpenRouter {
		t.Fatalf("providers = %v", got)
	}
}

func TestHint(t *testing.T) {
	api := &APIError{StatusCode: 429, Message: "slow down"}
	cases := []struct {
		err  error
		want string
	}{
		{&RateLimitError{APIError: api, RetryAfter: 3 * time.Second}, "wait 3s and try again"},
		{&RateLimitError{APIError: api}, "wait a moment and try again"},
		{fmt.Errorf("call: %w", &AuthError{APIError: api}), "check OPENROUTER_API_KEY"},
		{&UnreachableError{Host: "http://localhost:11434", Err: errors.New("refused")}, "make sure the runtime is listening on http://localhost:11434"},
		{&BadRequestError{APIError: api}, ""},
		{errors.New("plain"), ""},
	}
	for _, c := range cases {
		if got := Hint(c.err); got != c.want {
			t.Errorf("Hint(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
