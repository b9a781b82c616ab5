package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"edu-assistant-be/internal/dto"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/events"
	pktNats "edu-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closedPublisher struct{}

func (closedPublisher) Publish(topic string, messages ...*message.Message) error {
	return errors.New("publisher closed")
}

func (closedPublisher) Close() error { return nil }

func TestPublishAndConsumeThroughGoChannel(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	stats := NewJobStats(nil)
	log := logger.NewNopLogger()
	consumer := NewConsumerService(pubSub, stats, log)
	publisher := NewPublisherService(pubSub, stats, log)

	var handled atomic.Int32
	var got dto.IndexContentMessage
	done := make(chan struct{})
	consumer.Handle("content.index", func(ctx context.Context, payload []byte) error {
		if err := json.Unmarshal(payload, &got); err != nil {
			return err
		}
		if handled.Add(1) == 1 {
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	id := uuid.New()
	require.NoError(t, publisher.Publish(ctx, "content.index", dto.IndexContentMessage{ContentId: id}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not consumed")
	}
	assert.Equal(t, id, got.ContentId)

	assert.Eventually(t, func() bool {
		return stats.Snapshot().Topics["content.index"].Processed == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), stats.Snapshot().Topics["content.index"].Published)
}

func TestConsumerCountsFailuresAndPanics(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	stats := NewJobStats(nil)
	consumer := NewConsumerService(pubSub, stats, logger.NewNopLogger())

	var calls atomic.Int32
	consumer.Handle("chat.reply", func(ctx context.Context, payload []byte) error {
		if calls.Add(1) == 1 {
			return errors.New("generation failed")
		}
		panic("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	for i := 0; i < 2; i++ {
		require.NoError(t, pubSub.Publish("chat.reply", message.NewMessage(watermill.NewUUID(), []byte(`{}`))))
	}

	assert.Eventually(t, func() bool {
		return stats.Snapshot().Topics["chat.reply"].Failed == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublishFallsBackToSynchronousHandler(t *testing.T) {
	tests := []struct {
		name       string
		register   bool
		handlerErr error
		wantErr    bool
		wantStats  dto.TopicStats
	}{
		{name: "fallback succeeds", register: true, wantStats: dto.TopicStats{SynchronousFallback: 1, Processed: 1}},
		{name: "fallback fails", register: true, handlerErr: errors.New("db down"), wantErr: true, wantStats: dto.TopicStats{SynchronousFallback: 1, Failed: 1}},
		{name: "no fallback", wantErr: true, wantStats: dto.TopicStats{Failed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewJobStats(nil)
			publisher := NewPublisherService(closedPublisher{}, stats, logger.NewNopLogger())

			var ran bool
			if tt.register {
				publisher.RegisterFallback("content.index", func(ctx context.Context, payload []byte) error {
					ran = true
					return tt.handlerErr
				})
			}

			err := publisher.Publish(context.Background(), "content.index", dto.IndexContentMessage{ContentId: uuid.New()})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.register, ran)
			assert.Equal(t, tt.wantStats, stats.Snapshot().Topics["content.index"])
		})
	}
}

type recordingSubscriber struct {
	subject string
	durable string
}

func (r *recordingSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error {
	r.subject, r.durable = subject, durableName
	return nil
}

func TestActivityServiceSubscribesToAllEvents(t *testing.T) {
	sub := &recordingSubscriber{}
	svc := NewActivityService(sub, logger.NewNopLogger(), nil)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, "edu-activity-log", sub.durable)

	for _, e := range []events.Event{
		events.ContentCreated(uuid.New(), uuid.New(), "n"),
		events.ContentIndexFailed(uuid.New(), uuid.New(), "boom"),
		events.AssistantReplied(uuid.New(), uuid.New(), false),
	} {
		assert.NoError(t, svc.HandleEvent(context.Background(), e))
	}
}
