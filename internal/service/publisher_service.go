package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"edu-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// JobHandler processes one job payload
type JobHandler func(ctx context.Context, payload []byte) error

type IPublisherService interface {
	// Publish enqueues a job. When the queue rejects it, the topic's fallback handler runs inline.
	Publish(ctx context.Context, topic string, payload interface{}) error
	RegisterFallback(topic string, handler JobHandler)
}

type publisherService struct {
	publisher message.Publisher
	stats     *JobStats
	logger    logger.ILogger

	mu        sync.RWMutex
	fallbacks map[string]JobHandler
}

func NewPublisherService(publisher message.Publisher, stats *JobStats, log logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		stats:     stats,
		logger:    log,
		fallbacks: make(map[string]JobHandler),
	}
}

func (ps *publisherService) RegisterFallback(topic string, handler JobHandler) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.fallbacks[topic] = handler
}

func (ps *publisherService) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	err = ps.publisher.Publish(topic, msg)
	if err == nil {
		ps.stats.record(topic, jobPublished)
		return nil
	}

	ps.logger.Warn("JOBS", "Publish failed, running job synchronously", map[string]interface{}{
		"topic": topic,
		"error": err.Error(),
	})

	ps.mu.RLock()
	handler, ok := ps.fallbacks[topic]
	ps.mu.RUnlock()
	if !ok {
		ps.stats.record(topic, jobFailed)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	ps.stats.record(topic, jobFallback)
	if herr := handler(ctx, body); herr != nil {
		ps.stats.record(topic, jobFailed)
		return fmt.Errorf("synchronous %s job failed: %w", topic, herr)
	}
	ps.stats.record(topic, jobProcessed)
	return nil
}
