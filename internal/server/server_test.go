package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corriander/channelhop/pkg/dataset"
	"github.com/corriander/channelhop/pkg/pipeline"
	"github.com/corriander/channelhop/pkg/place"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, logger)
	t.Cleanup(func() { runner.Close() })
	return New(runner, NewMemoryStore(), logger)
}

func testPlanRequest() planRequest {
	southampton := place.Location{Town: "Southampton", Country: place.UK}
	portsmouth := place.Location{Town: "Portsmouth", Country: place.UK}
	cherbourg := place.Location{Town: "Cherbourg", Country: place.FR}
	quimper := place.Location{Town: "Quimper", Country: place.FR}
	ts := func(day, hour, min int) time.Time {
		return time.Date(2026, 8, day, hour, min, 0, 0, time.UTC)
	}

	return planRequest{
		Origin:      southampton,
		Destination: quimper,
		Crossings:   place.CrossingTable{{A: portsmouth, B: cherbourg}},
		Roads: []dataset.RoadLeg{
			{Source: southampton, Destination: portsmouth, Distance: 40, Duration: 45 * time.Minute, Cost: 8.50},
			{Source: portsmouth, Destination: southampton, Distance: 40, Duration: 45 * time.Minute, Cost: 8.50},
			{Source: cherbourg, Destination: quimper, Distance: 250, Duration: 3 * time.Hour, Cost: 12},
			{Source: quimper, Destination: cherbourg, Distance: 250, Duration: 3 * time.Hour, Cost: 12},
		},
		Ferries: []dataset.FerryCrossing{
			{Source: portsmouth, Destination: cherbourg, Operator: "BF", Dep: ts(1, 9, 30), Arr: ts(1, 13, 0), Cost: 170},
			{Source: cherbourg, Destination: portsmouth, Operator: "BF", Dep: ts(8, 14, 0), Arr: ts(8, 14, 30), Cost: 150},
		},
	}
}

func postPlan(t *testing.T, s *Server, req planRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body)))
	return rec
}

func TestCreatePlan(t *testing.T) {
	s := testServer(t)

	rec := postPlan(t, s, testPlanRequest())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var p pipeline.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if p.ID == "" {
		t.Error("plan has no ID")
	}
	if len(p.Options) != 1 {
		t.Errorf("got %d options, want 1", len(p.Options))
	}
	if p.Options[0].Cost != 361 {
		t.Errorf("option cost = %v, want 361", p.Options[0].Cost)
	}
}

func TestCreatePlanWithConstraints(t *testing.T) {
	s := testServer(t)

	req := testPlanRequest()
	ceiling := 100.0
	req.Constraints.MaxCost = &ceiling

	rec := postPlan(t, s, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var p pipeline.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(p.Options) != 0 {
		t.Errorf("got %d options, want 0 under a £100 ceiling", len(p.Options))
	}
}

func TestCreatePlanBadRequest(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plans",
		bytes.NewReader([]byte("{not json"))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// Valid JSON, invalid plan: missing endpoints.
	rec = postPlan(t, s, planRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetPlan(t *testing.T) {
	s := testServer(t)

	rec := postPlan(t, s, testPlanRequest())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var created pipeline.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var fetched pipeline.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.ID != created.ID {
		t.Errorf("fetched ID = %q, want %q", fetched.ID, created.ID)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestNetwork(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/network", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp networkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Crossings) != 5 {
		t.Errorf("got %d crossings, want 5", len(resp.Crossings))
	}
	if len(resp.Ports) != 7 {
		t.Errorf("got %d ports, want 7", len(resp.Ports))
	}
}

func TestHealth(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestNewCacheSelection(t *testing.T) {
	ctx := context.Background()

	// A cache directory selects the file backend.
	c, err := NewCache(ctx, Config{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer c.Close()
	if err := c.Set(ctx, "plan:x", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "plan:x"); !ok {
		t.Error("file-backed cache should retain entries")
	}

	// No configuration selects the null backend.
	n, err := NewCache(ctx, Config{})
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer n.Close()
	if err := n.Set(ctx, "plan:x", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := n.Get(ctx, "plan:x"); ok {
		t.Error("unconfigured cache should not retain entries")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := &pipeline.Plan{ID: "p1"}
	if err := store.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	got, err := store.Plan(ctx, "p1")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got.ID != "p1" {
		t.Errorf("got %q", got.ID)
	}
	if _, err := store.Plan(ctx, "absent"); err == nil {
		t.Error("expected error for absent plan")
	}
}
