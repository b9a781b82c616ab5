package service

import (
	"context"
	"time"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/events"
	"edu-assistant-be/pkg/metrics"
	pktNats "edu-assistant-be/pkg/nats"
)

// EventEmitter publishes domain events best-effort; a failed publish is logged, never returned
type EventEmitter struct {
	publisher pktNats.EventPublisher
	logger    logger.ILogger
	metrics   *metrics.RetrievalMetrics
}

func NewEventEmitter(publisher pktNats.EventPublisher, log logger.ILogger, m *metrics.RetrievalMetrics) *EventEmitter {
	if publisher == nil {
		publisher = pktNats.NopPublisher{}
	}
	return &EventEmitter{publisher: publisher, logger: log, metrics: m}
}

func (e *EventEmitter) Emit(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
		return
	}
	e.metrics.Event(event.EventType(), "published")
}
