// Package events provides event handling functionality
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/fieldscope/portal/internal/logger"
)

// EventType represents the type of portal event
type EventType string

const (
	// EventAuditRecorded is emitted when an authenticated state-changing action occurs
	EventAuditRecorded EventType = "audit_recorded"
	// EventReportTriggered is emitted when a report flow run is accepted by the orchestrator
	EventReportTriggered EventType = "report_triggered"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a portal event
type Event struct {
	ID            string          // Unique event identifier, assigned on publish
	Type          EventType       // The type of event
	UserID        uint            // The acting user
	Action        string          // The audit action name
	TargetID      *uint           // The affected record, if any
	Details       json.RawMessage // Structured detail payload
	OriginAddress string          // Remote address of the actor
	ReportID      uint            // The report the event refers to, if any
	FlowRunID     string          // The external correlation identifier, if any
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed. Events without an ID get one
// assigned so handler failures can be correlated in the logs.
func Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	eventChan <- event
	logger.Debugf("Published event %s: %s (action: %s)", event.ID, event.Type, event.Action)
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			for _, handler := range eventHandlers {
				// Handler failures never propagate to the publisher; audit
				// and notification writes are best effort.
				if err := handler(ctx, event); err != nil {
					logger.ErrorWithFields("Event handler failed", map[string]interface{}{
						"event_id":   event.ID,
						"event_type": event.Type,
						"action":     event.Action,
						"error":      err.Error(),
					})
				}
			}
		}
	}
}

// Reset drops all registered handlers. Intended for tests.
func Reset() {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = make(map[EventType][]Handler)
}
