package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateContentRequest struct {
	Name               string   `json:"name" validate:"required,max=255"`
	Content            string   `json:"content" validate:"required"`
	KeyConcepts        []string `json:"key_concepts" validate:"max=5,dive,required"`
	DifficultyLevel    string   `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	EstimatedStudyTime int      `json:"estimated_study_time" validate:"omitempty,min=1,max=300"`
}

type ListContentRequest struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Status string `query:"status" validate:"omitempty,oneof=pending processing completed failed"`
}

type ContentResponse struct {
	Id                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Content            string     `json:"content"`
	KeyConcepts        []string   `json:"key_concepts"`
	DifficultyLevel    string     `json:"difficulty_level,omitempty"`
	EstimatedStudyTime int        `json:"estimated_study_time,omitempty"`
	Processed          bool       `json:"processed"`
	ProcessingStatus   string     `json:"processing_status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// ContentSummaryResponse is the list item; content is replaced by a preview
type ContentSummaryResponse struct {
	Id               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Preview          string    `json:"preview"`
	KeyConcepts      []string  `json:"key_concepts"`
	DifficultyLevel  string    `json:"difficulty_level,omitempty"`
	Processed        bool      `json:"processed"`
	ProcessingStatus string    `json:"processing_status"`
	CreatedAt        time.Time `json:"created_at"`
}

type ContentListResponse struct {
	Items  []*ContentSummaryResponse `json:"items"`
	Total  int64                     `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

type ContentStatusResponse struct {
	Id               uuid.UUID `json:"id"`
	Processed        bool      `json:"processed"`
	ProcessingStatus string    `json:"processing_status"`
	TotalChunks      int       `json:"total_chunks"`
}

type ContentFeatures struct {
	TokenCount    int    `json:"token_count"`
	ContentLength int    `json:"content_length"`
	Preview       string `json:"preview"`
}

type CreateContentResponse struct {
	Content  *ContentResponse `json:"content"`
	Features ContentFeatures  `json:"features"`
}
