package constant

const (
	ContentStatusPending    = "pending"
	ContentStatusProcessing = "processing"
	ContentStatusCompleted  = "completed"
	ContentStatusFailed     = "failed"

	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"

	MaxContentNameLength      = 255
	MaxKeyConcepts            = 5
	MaxMessageLength          = 10000
	ContentPreviewLength      = 300
	PayloadPreviewLength      = 200
	DefaultContentPageSize    = 20
	MaxContentPageSize        = 100
	DefaultMessagePageSize    = 50
	SessionTitleTimeLayout    = "2006-01-02 15:04"
	DefaultSessionTitlePrefix = "Conversation "
)
