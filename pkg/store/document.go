package store

import (
	"time"

	"github.com/google/uuid"
)

// Document is a content item as the retrieval pipeline sees it
type Document struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Content            string    `json:"content"`
	KeyConcepts        []string  `json:"key_concepts"`
	DifficultyLevel    string    `json:"difficulty_level"`
	EstimatedStudyTime int       `json:"estimated_study_time"`
	CreatedAt          time.Time `json:"created_at"`
}

// IDs returns the document ids in slice order
func IDs(docs []Document) []uuid.UUID {
	ids := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
