package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func stubAPIClient(t *testing.T, ts *testServer) {
	t.Helper()
	orig := newAPIClient
	newAPIClient = func() (*apiClient, error) { return ts.client(), nil }
	t.Cleanup(func() { newAPIClient = orig })
}

// resetFlags clears flag state left behind by earlier Execute calls, so
// required-flag checks behave as on a fresh invocation.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	cmd.Flags().Visit(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestRecommendCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /recommendations": `{
			"state":"calm-seeking","focus":"watch","total_candidates":8,
			"recommendations":[
				{"id":"movie:1","type":"watch","title":"Bake Off","score":91.2,
				 "tags":["calm","cozy"],"source":"tv",
				 "why":"Gentle — suits how you're feeling + fits your 90-min window."}
			]}`,
	})
	stubAPIClient(t, ts)
	resetFlags(t, recommendCmd)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"recommend", "--state", "calm-seeking", "--focus", "watch", "--minutes", "90", "--energy", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/recommendations" {
		t.Errorf("request = %s %s, want POST /recommendations", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["state"] != "calm-seeking" {
		t.Errorf("body.state = %v", body["state"])
	}
	if body["available_min"] != float64(90) {
		t.Errorf("body.available_min = %v, want 90", body["available_min"])
	}
	if body["energy_level"] != float64(2) {
		t.Errorf("body.energy_level = %v, want 2", body["energy_level"])
	}
}

func TestRecommendCommand_RejectsUnknownState(t *testing.T) {
	ts := newTestServer(t, nil)
	stubAPIClient(t, ts)
	resetFlags(t, recommendCmd)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"recommend", "--state", "furious", "--focus", "watch"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown state")
	}
	// Validation happens locally; no request may reach the server.
	if len(ts.requests) != 0 {
		t.Errorf("unexpected requests: %+v", ts.requests)
	}
}

func TestRecommendCommand_MissingFlags(t *testing.T) {
	resetFlags(t, recommendCmd)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"recommend"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing flags")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestPrefsSetCommand_ListValue(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PATCH /preferences": `{"status":"updated"}`,
	})
	stubAPIClient(t, ts)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"prefs", "set", "liked_tags", "cozy, funny"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	// Comma-separated input is sent as a JSON array string.
	if body["liked_tags"] != `["cozy","funny"]` {
		t.Errorf("body.liked_tags = %v", body["liked_tags"])
	}
}

func TestPrefsSetCommand_ScalarValue(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PATCH /preferences": `{"status":"updated"}`,
	})
	stubAPIClient(t, ts)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"prefs", "set", "intensity_tolerance", "0.3"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["intensity_tolerance"] != "0.3" {
		t.Errorf("body.intensity_tolerance = %v", body["intensity_tolerance"])
	}
}

func TestDecodeJSONErrorResponse(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := ts.client().get(ctx, "/missing")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var v any
	err = decodeJSON(resp, &v)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want status code mentioned", err.Error())
	}
}

func TestCountLabel(t *testing.T) {
	if got := countLabel(5, 100); got != "5" {
		t.Errorf("countLabel(5, 100) = %q", got)
	}
	if got := countLabel(100, 100); got != "100+" {
		t.Errorf("countLabel(100, 100) = %q", got)
	}
}
