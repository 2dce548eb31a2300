package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isis-controls/cybaman/generichttp"
)

func newConfiguredServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := Config{
		Addr: ":0",
		Nodes: []ObjSetup{
			{
				Endpoint: "/cybaman",
				Limits:   map[string]Minmax{"A": {Min: -100, Max: 100}},
			},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv := httptest.NewServer(BuildMux(ctx, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload interface{}) int {
	t.Helper()
	buf, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestBuildMuxServesEndpointGraph(t *testing.T) {
	srv := newConfiguredServer(t)
	resp, err := http.Get(srv.URL + "/endpoints")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	graph := map[string][]string{}
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		t.Fatal(err)
	}
	routes, ok := graph["/cybaman"]
	if !ok || len(routes) == 0 {
		t.Fatalf("endpoint graph missing the configured node: %v", graph)
	}
}

func TestBuildMuxEnforcesLimits(t *testing.T) {
	srv := newConfiguredServer(t)
	if code := postJSON(t, srv.URL+"/cybaman/initialize", nil); code != http.StatusOK {
		t.Fatalf("initialize returned %d", code)
	}
	if code := postJSON(t, srv.URL+"/cybaman/axis/A/pos", generichttp.FloatT{F64: 150}); code != http.StatusBadRequest {
		t.Errorf("out of limits move returned %d, expected 400", code)
	}
	if code := postJSON(t, srv.URL+"/cybaman/axis/A/pos", generichttp.FloatT{F64: 50}); code != http.StatusOK {
		t.Errorf("in-limits move returned %d, expected 200", code)
	}
}

func TestBuildMuxLock(t *testing.T) {
	srv := newConfiguredServer(t)
	if code := postJSON(t, srv.URL+"/cybaman/lock", generichttp.BoolT{Bool: true}); code != http.StatusOK {
		t.Fatalf("lock returned %d", code)
	}
	if code := postJSON(t, srv.URL+"/cybaman/initialize", nil); code != http.StatusLocked {
		t.Errorf("request on locked node returned %d, expected 423", code)
	}
	if code := postJSON(t, srv.URL+"/cybaman/lock", generichttp.BoolT{Bool: false}); code != http.StatusOK {
		t.Fatalf("unlock returned %d", code)
	}
	if code := postJSON(t, srv.URL+"/cybaman/initialize", nil); code != http.StatusOK {
		t.Errorf("request after unlock returned %d, expected 200", code)
	}
}
