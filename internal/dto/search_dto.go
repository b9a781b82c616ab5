package dto

import (
	"edu-assistant-be/pkg/rag/telemetry"
	"edu-assistant-be/pkg/store"
)

type SearchRequest struct {
	Query string `query:"q" validate:"required,max=1000"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=20"`
	Debug bool   `query:"debug"`
}

type SearchResponse struct {
	Query     string               `json:"query"`
	Results   []store.Document     `json:"results"`
	DebugInfo *telemetry.DebugInfo `json:"debug_info,omitempty"`
}
