package entity

import (
	"time"

	"github.com/google/uuid"
)

type Content struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	Name               string
	Content            string
	KeyConcepts        []string
	DifficultyLevel    string
	EstimatedStudyTime int
	Processed          bool
	ProcessingStatus   string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
	IsDeleted          bool
}

type ContentChunk struct {
	Id         uuid.UUID
	ContentId  uuid.UUID
	ChunkIndex int
	Text       string
	StartChar  int
	EndChar    int
	CreatedAt  time.Time
}
