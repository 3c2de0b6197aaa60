package network

import (
	"context"

	"layer-survivors/server/logging"
)

const (
	// EventSessionOpened is emitted when a websocket client starts a session.
	EventSessionOpened logging.EventType = "network.session_opened"
	// EventSessionClosed is emitted when a session ends.
	EventSessionClosed logging.EventType = "network.session_closed"
	// EventSubmitFailed is emitted when a run record could not be delivered.
	EventSubmitFailed logging.EventType = "network.submit_failed"
)

// SessionOpenedPayload captures the session's seed.
type SessionOpenedPayload struct {
	Seed   string `json:"seed"`
	Remote string `json:"remote,omitempty"`
}

// SessionClosedPayload captures why a session ended.
type SessionClosedPayload struct {
	Reason string `json:"reason"`
}

// SubmitFailedPayload describes a failed run submission.
type SubmitFailedPayload struct {
	Error   string `json:"error"`
	Dropped bool   `json:"dropped,omitempty"`
}

// SessionOpened publishes a new session.
func SessionOpened(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionOpenedPayload, extra map[string]any) {
	publish(ctx, pub, actor, EventSessionOpened, logging.SeverityInfo, payload, extra)
}

// SessionClosed publishes a finished session.
func SessionClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionClosedPayload, extra map[string]any) {
	publish(ctx, pub, actor, EventSessionClosed, logging.SeverityInfo, payload, extra)
}

// SubmitFailed publishes a delivery failure.
func SubmitFailed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SubmitFailedPayload, extra map[string]any) {
	publish(ctx, pub, actor, EventSubmitFailed, logging.SeverityWarn, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, eventType logging.EventType, severity logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
