package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/logger"
	"github.com/akam1o/tna-routegen/pkg/routegen"
)

// EventType represents the type of audit event
type EventType string

const (
	// Route events
	EventRouteGenerated      EventType = "route_generated"
	EventRouteFailed         EventType = "route_failed"
	EventArtifactOverwritten EventType = "artifact_overwritten"

	// Link configuration events
	EventLinkConfigCreated EventType = "link_config_created"
	EventLinkConfigReset   EventType = "link_config_reset"

	// Session events
	EventSessionCreated    EventType = "session_created"
	EventSessionTerminated EventType = "session_terminated"
)

// Result represents the outcome of an operation
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Event represents a structured audit event
type Event struct {
	Timestamp    time.Time              `json:"timestamp"`
	EventType    EventType              `json:"event_type"`
	SessionID    string                 `json:"session_id,omitempty"`
	Result       Result                 `json:"result"`
	ErrorCode    string                 `json:"error_code,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// Store persists audit events.
type Store interface {
	LogAuditEvent(ctx context.Context, event *datastore.AuditEvent) error
}

// Logger provides structured audit logging
type Logger struct {
	store     Store
	log       *logger.Logger
	sessionID string
}

// NewLogger creates a new audit logger with a fresh session id.
func NewLogger(store Store, log *logger.Logger) *Logger {
	if log == nil {
		log = logger.Discard()
	}

	return &Logger{
		store:     store,
		log:       log.WithCategory("audit"),
		sessionID: uuid.NewString(),
	}
}

// SessionID identifies every event written through this logger.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}

	if event.Details == nil {
		event.Details = make(map[string]interface{})
	}
	if event.ErrorMessage != "" {
		event.Details["error_message"] = event.ErrorMessage
	}

	dsEvent := &datastore.AuditEvent{
		Timestamp: event.Timestamp,
		SessionID: event.SessionID,
		Action:    string(event.EventType),
		Result:    string(event.Result),
		ErrorCode: event.ErrorCode,
	}

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		// Continue without details rather than failing the audit log
		l.log.WithField("error", err).Warn("Failed to marshal audit event details")
	} else {
		dsEvent.Details = string(detailsJSON)
	}

	if err := l.store.LogAuditEvent(ctx, dsEvent); err != nil {
		l.log.WithField("error", err).WithField("event_type", event.EventType).Error("Failed to persist audit event")
		return fmt.Errorf("failed to persist audit event: %w", err)
	}

	l.logEvent(event)
	return nil
}

// logEvent mirrors the event to the structured logger
func (l *Logger) logEvent(event *Event) {
	entry := l.log.WithField("event_type", event.EventType).WithField("result", event.Result)
	if event.ErrorCode != "" {
		entry = entry.WithField("error_code", event.ErrorCode)
	}
	for k, v := range event.Details {
		entry = entry.WithField(k, v)
	}

	msg := fmt.Sprintf("Audit: %s", event.EventType)
	if event.Result == ResultFailure {
		entry.Warn(msg)
		return
	}
	entry.Debug(msg)
}

// RouteGenerated logs a persisted descriptor set
func (l *Logger) RouteGenerated(ctx context.Context, set *routegen.DescriptorSet) error {
	details := map[string]interface{}{
		"route":     set.Route,
		"topology":  string(set.Topology),
		"uplink_id": set.UplinkID,
		"artifacts": set.Names(),
	}
	if set.Topology == routegen.TopologyStandard {
		details["downlink_id"] = set.DownlinkID
	}

	return l.Log(ctx, &Event{
		EventType: EventRouteGenerated,
		Result:    ResultSuccess,
		Details:   details,
	})
}

// RouteFailed logs a route that could not be generated or persisted
func (l *Logger) RouteFailed(ctx context.Context, route string, code string, err error) error {
	return l.Log(ctx, &Event{
		EventType:    EventRouteFailed,
		Result:       ResultFailure,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
		Details: map[string]interface{}{
			"route": route,
		},
	})
}

// ArtifactOverwritten logs an artifact replaced with different content
func (l *Logger) ArtifactOverwritten(ctx context.Context, name string, diff *datastore.DiffResult) error {
	return l.Log(ctx, &Event{
		EventType: EventArtifactOverwritten,
		Result:    ResultSuccess,
		Details: map[string]interface{}{
			"artifact":      name,
			"lines_added":   diff.Added,
			"lines_removed": diff.Removed,
		},
	})
}

// LinkConfigCreated logs the first description of the gNB link
func (l *Logger) LinkConfigCreated(ctx context.Context, rec *datastore.LinkRecord) error {
	return l.Log(ctx, &Event{
		EventType: EventLinkConfigCreated,
		Result:    ResultSuccess,
		Details: map[string]interface{}{
			"port":       rec.Port,
			"gnb_mac":    rec.GnbMAC,
			"switch_mac": rec.SwitchMAC,
			"gnb_ip":     rec.GnbIP,
		},
	})
}

// LinkConfigReset logs deletion of the gNB link configuration
func (l *Logger) LinkConfigReset(ctx context.Context) error {
	return l.Log(ctx, &Event{
		EventType: EventLinkConfigReset,
		Result:    ResultSuccess,
	})
}

// SessionCreated logs the start of an interactive session
func (l *Logger) SessionCreated(ctx context.Context, backend string) error {
	return l.Log(ctx, &Event{
		EventType: EventSessionCreated,
		Result:    ResultSuccess,
		Details: map[string]interface{}{
			"backend": backend,
		},
	})
}

// SessionTerminated logs the end of an interactive session
func (l *Logger) SessionTerminated(ctx context.Context, routes int, reason string) error {
	return l.Log(ctx, &Event{
		EventType: EventSessionTerminated,
		Result:    ResultSuccess,
		Details: map[string]interface{}{
			"routes": routes,
			"reason": reason,
		},
	})
}
