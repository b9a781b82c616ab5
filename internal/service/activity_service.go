package service

import (
	"context"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/events"
	"edu-assistant-be/pkg/metrics"
	pktNats "edu-assistant-be/pkg/nats"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// ActivityService follows the domain event stream and records it in the activity log and metrics.
type ActivityService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
	metrics    *metrics.RetrievalMetrics
}

func NewActivityService(subscriber EventSubscriber, log logger.ILogger, m *metrics.RetrievalMetrics) *ActivityService {
	return &ActivityService{subscriber: subscriber, logger: log, metrics: m}
}

func (s *ActivityService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", "edu-activity-log", s.HandleEvent); err != nil {
		s.logger.Error("ACTIVITY", "Failed to start activity subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("ACTIVITY", "Activity service started", nil)
	return nil
}

func (s *ActivityService) HandleEvent(ctx context.Context, event events.Event) error {
	s.metrics.Event(event.EventType(), "consumed")

	details := map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		if k == "occurred_at" {
			continue
		}
		details[k] = v
	}

	switch event.EventType() {
	case events.TypeContentFailed:
		s.logger.Warn("ACTIVITY", "Content indexing failed", details)
	case events.TypeAssistantReplied:
		if ok, _ := event.Payload()["succeeded"].(bool); !ok {
			s.logger.Warn("ACTIVITY", "Assistant replied with apology", details)
			return nil
		}
		s.logger.Info("ACTIVITY", "Assistant replied", details)
	default:
		s.logger.Info("ACTIVITY", "Domain event", details)
	}
	return nil
}
