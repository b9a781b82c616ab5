package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Content struct {
	Id                 uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Name               string                      `gorm:"type:varchar(255);not null"`
	Content            string                      `gorm:"type:text;not null"`
	KeyConcepts        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	DifficultyLevel    string                      `gorm:"type:varchar(20)"`
	EstimatedStudyTime int                         `gorm:"type:int"`
	Processed          bool                        `gorm:"not null;default:false"`
	ProcessingStatus   string                      `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt          time.Time                   `gorm:"autoCreateTime;index"`
	UpdatedAt          time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt              `gorm:"index"`
}

func (Content) TableName() string {
	return "contents"
}

type ContentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContentId  uuid.UUID `gorm:"type:uuid;not null;index:idx_content_chunk,unique,priority:1"`
	ChunkIndex int       `gorm:"not null;index:idx_content_chunk,unique,priority:2"`
	Text       string    `gorm:"type:text;not null"`
	StartChar  int       `gorm:"not null"`
	EndChar    int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ContentChunk) TableName() string {
	return "content_chunks"
}
