package service

import (
	"sync"

	"edu-assistant-be/internal/dto"
	"edu-assistant-be/pkg/metrics"
)

const (
	jobPublished = "published"
	jobProcessed = "processed"
	jobFailed    = "failed"
	jobFallback  = "synchronous_fallback"
)

// JobStats counts background job outcomes per topic and mirrors them to prometheus
type JobStats struct {
	mu      sync.Mutex
	topics  map[string]*dto.TopicStats
	metrics *metrics.RetrievalMetrics
}

func NewJobStats(m *metrics.RetrievalMetrics) *JobStats {
	return &JobStats{topics: make(map[string]*dto.TopicStats), metrics: m}
}

func (s *JobStats) record(topic, status string) {
	s.mu.Lock()
	stats, ok := s.topics[topic]
	if !ok {
		stats = &dto.TopicStats{}
		s.topics[topic] = stats
	}
	switch status {
	case jobPublished:
		stats.Published++
	case jobProcessed:
		stats.Processed++
	case jobFailed:
		stats.Failed++
	case jobFallback:
		stats.SynchronousFallback++
	}
	s.mu.Unlock()

	s.metrics.Job(topic, status)
}

func (s *JobStats) Snapshot() *dto.JobStatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]dto.TopicStats, len(s.topics))
	for topic, stats := range s.topics {
		out[topic] = *stats
	}
	return &dto.JobStatsResponse{Topics: out}
}
