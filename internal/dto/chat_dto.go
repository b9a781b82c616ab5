package dto

import (
	"time"

	"edu-assistant-be/pkg/rag/telemetry"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=255"`
}

type SessionResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	MessageCount int        `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type MessageResponse struct {
	Id         uuid.UUID `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	TokenCount *int      `json:"token_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendMessageResponse struct {
	SessionId uuid.UUID        `json:"session_id"`
	Sent      *MessageResponse `json:"sent"`
	Status    string           `json:"status"`
	Reply     string           `json:"reply"`
}

type MessageHistoryResponse struct {
	SessionId uuid.UUID            `json:"session_id"`
	Messages  []*MessageResponse   `json:"messages"`
	DebugInfo *telemetry.DebugInfo `json:"debug_info,omitempty"`
}

// GenerateReplyMessage is the job payload on the reply topic
type GenerateReplyMessage struct {
	SessionId uuid.UUID `json:"session_id"`
	MessageId uuid.UUID `json:"message_id"`
}
