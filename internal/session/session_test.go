package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging/network"
	"layer-survivors/server/logging/sinks"
)

func TestNewSessionIDIsUUID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if !ValidSessionID(a) || !ValidSessionID(b) {
		t.Fatalf("expected uuids, got %q and %q", a, b)
	}
	if a == b {
		t.Fatalf("expected distinct session ids")
	}
	if ValidSessionID("not-a-uuid") {
		t.Fatalf("accepted an invalid id")
	}
}

func TestHTTPSubmitterPostsJSON(t *testing.T) {
	var got RunRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	record := RunRecord{SessionID: NewSessionID(), Seed: "test_seed", Layer: 7, Score: 420, Build: []string{"damage", "glass_cannon"}}
	if err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), record); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.SessionID != record.SessionID || got.Layer != 7 || len(got.Build) != 2 {
		t.Fatalf("server received %+v", got)
	}
}

func TestHTTPSubmitterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := NewHTTPSubmitter(srv.URL).Submit(context.Background(), RunRecord{}); err == nil {
		t.Fatalf("expected an error for a 503")
	}
	if err := (&HTTPSubmitter{}).Submit(context.Background(), RunRecord{}); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint, got %v", err)
	}
}

func TestAsyncSubmitterNeverBlocks(t *testing.T) {
	memory := sinks.NewMemorySink()
	var logged []string
	async := NewAsyncSubmitter(SubmitterFunc(func(context.Context, RunRecord) error { return nil }), AsyncConfig{
		Capacity:  1,
		Publisher: memory,
		Logger:    telemetry.LoggerFunc(func(format string, args ...any) { logged = append(logged, format) }),
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = async.Submit(context.Background(), RunRecord{SessionID: "s"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("submit blocked without a running worker")
	}
	if async.Pending() != 1 || async.Dropped() != 4 {
		t.Fatalf("expected 1 queued and 4 dropped, got %d/%d", async.Pending(), async.Dropped())
	}
	if len(logged) != 4 || len(memory.OfType(network.EventSubmitFailed)) != 4 {
		t.Fatalf("expected every drop logged")
	}
}

func TestAsyncSubmitterDeliversAndIsolatesFailures(t *testing.T) {
	var mu sync.Mutex
	var delivered []string
	fail := errors.New("backend down")
	next := SubmitterFunc(func(_ context.Context, record RunRecord) error {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, record.SessionID)
		if record.SessionID == "bad" {
			return fail
		}
		return nil
	})
	async := NewAsyncSubmitter(next, AsyncConfig{Capacity: 4})

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- async.Run(ctx) }()

	for _, id := range []string{"bad", "good"} {
		_ = async.Submit(context.Background(), RunRecord{SessionID: id})
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(delivered)
		mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("worker delivered %d of 2 records", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-finished; err != nil {
		t.Fatalf("run returned %v", err)
	}
	if async.Failed() != 1 {
		t.Fatalf("expected one failure, got %d", async.Failed())
	}
}
