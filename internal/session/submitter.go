package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultSubmitTimeout = 5 * time.Second

var ErrNoEndpoint = errors.New("session: no submit endpoint configured")

// Submitter delivers a finished run somewhere durable.
type Submitter interface {
	Submit(ctx context.Context, record RunRecord) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, record RunRecord) error

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, record RunRecord) error {
	if f == nil {
		return nil
	}
	return f(ctx, record)
}

// HTTPSubmitter POSTs run records as JSON.
type HTTPSubmitter struct {
	URL    string
	Client *http.Client
}

// NewHTTPSubmitter returns a submitter for url with a bounded client timeout.
func NewHTTPSubmitter(url string) *HTTPSubmitter {
	return &HTTPSubmitter{URL: url, Client: &http.Client{Timeout: defaultSubmitTimeout}}
}

// Submit sends record and treats any non-2xx status as a failure.
func (s *HTTPSubmitter) Submit(ctx context.Context, record RunRecord) error {
	if s == nil || s.URL == "" {
		return ErrNoEndpoint
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("session: encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("session: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("session: submit: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("session: submit: unexpected status %d", resp.StatusCode)
	}
	return nil
}
