package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"layer-survivors/server/internal/game"
	"layer-survivors/server/internal/net/ws"
	"layer-survivors/server/internal/observability"
	"layer-survivors/server/internal/rewards"
)

func serve(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	resp := serve(t, NewHTTPHandler(HTTPHandlerConfig{}), http.MethodGet, "/health")
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.Code, resp.Body.String())
	}
}

func TestDiagnosticsReportsSessionsAndCatalog(t *testing.T) {
	sessions := ws.NewHandler(ws.HandlerConfig{Game: game.DefaultConfig()})
	handler := NewHTTPHandler(HTTPHandlerConfig{Sessions: sessions, TickRate: 60})

	resp := serve(t, handler, http.MethodGet, "/diagnostics")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var payload diagnosticsPayload
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload.Status != "ok" || payload.TickRate != 60 || payload.ActiveSessions != 0 {
		t.Fatalf("unexpected diagnostics %+v", payload)
	}
	if payload.Catalog[string(rewards.RarityLegendary)] != 11 || payload.Catalog["passives"] != 9 {
		t.Fatalf("unexpected catalog counts %+v", payload.Catalog)
	}
	if payload.Logging != nil {
		t.Fatalf("expected no logging stats without a router")
	}
}

func TestCatalogEndpoints(t *testing.T) {
	handler := NewHTTPHandler(HTTPHandlerConfig{})

	resp := serve(t, handler, http.MethodGet, "/catalog")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	var doc rewards.Document
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode catalog: %v", err)
	}
	if len(doc.Attribute) != 12 || len(doc.Passives) != 9 {
		t.Fatalf("unexpected catalog sizes: %d attribute, %d passives", len(doc.Attribute), len(doc.Passives))
	}

	resp = serve(t, handler, http.MethodGet, "/catalog/schema")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"legendary"`) {
		t.Fatalf("unexpected schema response %d", resp.Code)
	}

	if resp := serve(t, handler, http.MethodPost, "/catalog"); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST /catalog, got %d", resp.Code)
	}
}

func TestPprofIsOptIn(t *testing.T) {
	if resp := serve(t, NewHTTPHandler(HTTPHandlerConfig{}), http.MethodGet, "/debug/pprof/"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected pprof disabled by default, got %d", resp.Code)
	}
	handler := NewHTTPHandler(HTTPHandlerConfig{Observability: observability.Config{EnablePprofTrace: true}})
	if resp := serve(t, handler, http.MethodGet, "/debug/pprof/"); resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index, got %d", resp.Code)
	}
}
