package service

import (
	"context"
	"fmt"

	"edu-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Handle(topic string, handler JobHandler)
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	stats      *JobStats
	logger     logger.ILogger
	handlers   map[string]JobHandler
}

func NewConsumerService(subscriber message.Subscriber, stats *JobStats, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		stats:      stats,
		logger:     log,
		handlers:   make(map[string]JobHandler),
	}
}

// Handle must be called before Consume
func (cs *consumerService) Handle(topic string, handler JobHandler) {
	cs.handlers[topic] = handler
}

func (cs *consumerService) Consume(ctx context.Context) error {
	for topic, handler := range cs.handlers {
		messages, err := cs.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		go func(topic string, handler JobHandler, messages <-chan *message.Message) {
			for msg := range messages {
				cs.processMessage(ctx, topic, handler, msg)
			}
		}(topic, handler, messages)

		cs.logger.Info("JOBS", "Consumer started", map[string]interface{}{"topic": topic})
	}
	return nil
}

// processMessage always acks. Handlers persist their own failure state.
func (cs *consumerService) processMessage(ctx context.Context, topic string, handler JobHandler, msg *message.Message) {
	defer func() {
		if r := recover(); r != nil {
			cs.logger.Error("JOBS", "Job panicked", map[string]interface{}{"topic": topic, "message_id": msg.UUID, "panic": fmt.Sprint(r)})
			cs.stats.record(topic, jobFailed)
			msg.Ack()
		}
	}()

	if err := handler(ctx, msg.Payload); err != nil {
		cs.logger.Error("JOBS", "Job failed", map[string]interface{}{"topic": topic, "message_id": msg.UUID, "error": err.Error()})
		cs.stats.record(topic, jobFailed)
		msg.Ack()
		return
	}

	cs.stats.record(topic, jobProcessed)
	msg.Ack()
}
