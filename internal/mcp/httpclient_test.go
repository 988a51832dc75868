package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poferraz/motion-lite/internal/plan"
	"github.com/poferraz/motion-lite/internal/state"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestSnapshotFetch verifies the client reads and decodes the state
// endpoint.
func TestSnapshotFetch(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/state": func(w http.ResponseWriter, r *http.Request) {
			snap := state.DefaultSnapshot()
			snap.Panel = state.PanelWorkout
			snap.SessionNames = []string{"Day 1"}
			writeTestJSON(t, w, snap)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	snap, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Panel != state.PanelWorkout {
		t.Errorf("panel = %q, want workout", snap.Panel)
	}
	if len(snap.SessionNames) != 1 {
		t.Errorf("session names = %q, want one", snap.SessionNames)
	}
}

// TestSessionsFetch verifies the sessions endpoint decodes to plan sessions.
func TestSessionsFetch(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []plan.Session{
				{Name: "Day 1", Exercises: []plan.Exercise{{ID: "Day 1-Push-ups-0", Name: "Push-ups", Sets: 3}}},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	sessions, err := client.Sessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].Exercises[0].Sets != 3 {
		t.Errorf("sets = %d, want 3", sessions[0].Exercises[0].Sets)
	}
}

// TestImportPlanSendsKey verifies the import request carries the API key
// and CSV body, and the 200 result decodes.
func TestImportPlanSendsKey(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plan/import": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "secret" {
				t.Errorf("X-API-Key = %q, want secret", got)
			}
			body, _ := io.ReadAll(r.Body)
			res := plan.Parse(string(body))
			writeTestJSON(t, w, res)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	res, err := client.ImportPlan(context.Background(), sampleCSV)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() || len(res.Rows) != 3 {
		t.Errorf("result = %+v, want 3 imported rows", res)
	}
}

// TestImportPlanRejection verifies a 422 decodes as a failed Result rather
// than a transport error.
func TestImportPlanRejection(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plan/import": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			res := plan.Parse("too short")
			if err := json.NewEncoder(w).Encode(res); err != nil {
				t.Fatal(err)
			}
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	res, err := client.ImportPlan(context.Background(), "too short")
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() {
		t.Error("422 result reports OK, want document failure")
	}
	if len(res.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want one", res.Diagnostics)
	}
}

// TestImportPlanAuthFailure verifies a 403 surfaces as an error.
func TestImportPlanAuthFailure(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plan/import": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"invalid API key"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "wrong")
	if _, err := client.ImportPlan(context.Background(), sampleCSV); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200
// responses to reads.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/state": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"backend down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	if _, err := client.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
