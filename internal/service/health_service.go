package service

import (
	"context"
	"sort"
	"time"

	"edu-assistant-be/internal/dto"
)

// HealthCheck reports an error when the component is unusable
type HealthCheck func(ctx context.Context) error

type IHealthService interface {
	Register(name string, check HealthCheck)
	Check(ctx context.Context) *dto.HealthResponse
	JobStats() *dto.JobStatsResponse
}

type healthService struct {
	names  []string
	checks map[string]HealthCheck
	stats  *JobStats
}

func NewHealthService(stats *JobStats) IHealthService {
	return &healthService{checks: make(map[string]HealthCheck), stats: stats}
}

func (h *healthService) Register(name string, check HealthCheck) {
	if _, ok := h.checks[name]; !ok {
		h.names = append(h.names, name)
		sort.Strings(h.names)
	}
	h.checks[name] = check
}

// Check reports "ok" when every component is up and "degraded" otherwise
func (h *healthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res := &dto.HealthResponse{Status: "ok", Components: make(map[string]string, len(h.names))}
	for _, name := range h.names {
		if err := h.checks[name](ctx); err != nil {
			res.Components[name] = "down: " + err.Error()
			res.Status = "degraded"
			continue
		}
		res.Components[name] = "up"
	}
	return res
}

func (h *healthService) JobStats() *dto.JobStatsResponse {
	return h.stats.Snapshot()
}
