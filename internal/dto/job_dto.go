package dto

import "github.com/google/uuid"

// IndexContentMessage is the job payload on the index topic
type IndexContentMessage struct {
	ContentId uuid.UUID `json:"content_id"`
}

type TopicStats struct {
	Published           int64 `json:"published"`
	Processed           int64 `json:"processed"`
	Failed              int64 `json:"failed"`
	SynchronousFallback int64 `json:"synchronous_fallback"`
}

type JobStatsResponse struct {
	Topics map[string]TopicStats `json:"topics"`
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
