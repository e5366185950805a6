package ticket

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FeedbackType classifies what the submitter is reporting.
type FeedbackType string

const (
	TypeBug      FeedbackType = "bug"
	TypeFeedback FeedbackType = "feedback"
	TypeIdea     FeedbackType = "idea"
)

// ProcessingStatus tracks the video analysis pipeline as seen by clients.
// It mirrors the internal job status: a processing job shows as processing,
// a completed job as analyzed, a failed job as failed.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingRecording ProcessingStatus = "recording"
	ProcessingUploading ProcessingStatus = "uploading"
	Processing          ProcessingStatus = "processing"
	ProcessingAnalyzed  ProcessingStatus = "analyzed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// TicketStatus is the triage state managed by the team.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusInQA       TicketStatus = "in_qa"
	StatusTodo       TicketStatus = "todo"
	StatusBacklog    TicketStatus = "backlog"
	StatusResolved   TicketStatus = "resolved"
)

// Priority of a ticket.
type Priority string

const (
	PriorityUrgent  Priority = "urgent"
	PriorityHigh    Priority = "high"
	PriorityNeutral Priority = "neutral"
	PriorityLow     Priority = "low"
)

// ClosedReason records why a ticket was closed.
type ClosedReason string

const (
	ClosedResolved    ClosedReason = "resolved"
	ClosedNotRelevant ClosedReason = "not-relevant"
)

// FeedbackTicket is one feedback submission from an end user. It owns at
// most one analysis job and, after a successful analysis, one report.
type FeedbackTicket struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID        *uuid.UUID       `gorm:"type:uuid;index" json:"project_id"`
	CustomerID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	AnalysisJobID    *uuid.UUID       `gorm:"type:uuid" json:"analysis_job_id"`
	VideoStoragePath *string          `gorm:"type:text" json:"video_storage_path"`
	VideoSizeBytes   *int64           `json:"video_size_bytes"`
	DurationSeconds  *int             `json:"duration_seconds"`
	TaskDescription  *string          `gorm:"type:text" json:"task_description"`
	Status           ProcessingStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	FeedbackType     FeedbackType     `gorm:"size:20;not null;default:'bug'" json:"feedback_type"`
	TicketStatus     TicketStatus     `gorm:"size:20;not null;default:'open'" json:"ticket_status"`
	Priority         Priority         `gorm:"size:20;not null;default:'neutral'" json:"priority"`
	Category         *string          `gorm:"size:100" json:"category"`
	SubmitterEmail   *string          `gorm:"size:255" json:"submitter_email"`
	SubmitterName    *string          `gorm:"size:255" json:"submitter_name"`
	PageURL          *string          `gorm:"type:text" json:"page_url"`
	BrowserInfo      datatypes.JSON   `gorm:"type:jsonb" json:"browser_info"`
	AssigneeID       *uuid.UUID       `gorm:"type:uuid" json:"assignee_id"`
	DueDate          *time.Time       `json:"due_date"`
	ClosedAt         *time.Time       `json:"closed_at"`
	ClosedReason     *ClosedReason    `gorm:"size:20" json:"closed_reason"`
	RecordedAt       *time.Time       `json:"recorded_at"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the database table name
func (FeedbackTicket) TableName() string {
	return "tickets"
}

func (t *FeedbackTicket) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
