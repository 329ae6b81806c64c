// Package audit emits field-allowlisted records of security and lifecycle
// events. The allow-list is a hard boundary: callers may pass arbitrary
// metadata, but only task, step, action, and errorCode ever reach a sink.
// Payload content (transcripts, synthesis text, full identifiers) is
// structurally unable to pass through.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/harborplan/voicegate/internal/logging"
)

// EventType enumerates the auditable occurrences.
type EventType string

// The closed event-type set.
const (
	TaskStarted           EventType = "task_started"
	StepEntered           EventType = "step_entered"
	ConfirmationSubmitted EventType = "confirmation_submitted"
	CancelInvoked         EventType = "cancel_invoked"
	RateLimitExceeded     EventType = "rate_limit_exceeded"
	TimeoutOccurred       EventType = "timeout_occurred"
	KillSwitchTriggered   EventType = "kill_switch_triggered"
	ErrorOccurred         EventType = "error_occurred"
)

// Metadata field names accepted by the allow-list.
const (
	FieldTask      = "task"
	FieldStep      = "step"
	FieldAction    = "action"
	FieldErrorCode = "errorCode"
)

// Event is one emitted audit record. Its field set is closed: anything a
// caller passes outside the four metadata fields is dropped before emission.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"eventType"`
	Task      string    `json:"task,omitempty"`
	Step      string    `json:"step,omitempty"`
	Action    string    `json:"action,omitempty"`
	ErrorCode string    `json:"errorCode,omitempty"`
}

// Sink receives finished events. Implementations must not assume retries:
// the logger calls Write once per event and discards the error after
// logging it.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

// Logger builds allowlisted events and hands them to a sink. A sink failure
// never blocks or fails the request being described.
type Logger struct {
	sink Sink
	now  func() time.Time
}

// NewLogger creates a Logger over sink. A nil sink gets the log-stream sink.
func NewLogger(sink Sink) *Logger {
	if sink == nil {
		sink = LogSink{}
	}
	return &Logger{sink: sink, now: time.Now}
}

// SetClock overrides the logger's time source. Test hook.
func (l *Logger) SetClock(now func() time.Time) { l.now = now }

// Log stamps eventType and the current time, copies only the allow-listed
// fields out of metadata, and emits the record. Everything else in metadata
// is discarded.
func (l *Logger) Log(ctx context.Context, eventType EventType, metadata map[string]string) {
	ev := Event{
		Timestamp: l.now().UTC(),
		Type:      eventType,
		Task:      metadata[FieldTask],
		Step:      metadata[FieldStep],
		Action:    metadata[FieldAction],
		ErrorCode: metadata[FieldErrorCode],
	}
	if err := l.sink.Write(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("audit sink write failed", "event_type", string(eventType), "error", err.Error())
	}
}

// LogSink writes events to the process's structured log stream.
type LogSink struct{}

// Write emits the event as a structured log record.
func (LogSink) Write(ctx context.Context, ev Event) error {
	attrs := []any{
		"event_type", string(ev.Type),
		"timestamp", ev.Timestamp.Format(time.RFC3339Nano),
	}
	if ev.Task != "" {
		attrs = append(attrs, "task", ev.Task)
	}
	if ev.Step != "" {
		attrs = append(attrs, "step", ev.Step)
	}
	if ev.Action != "" {
		attrs = append(attrs, "action", ev.Action)
	}
	if ev.ErrorCode != "" {
		attrs = append(attrs, "error_code", ev.ErrorCode)
	}
	logging.FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "audit", argsToAttrs(attrs)...)
	return nil
}

func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, _ := args[i].(string)
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}
