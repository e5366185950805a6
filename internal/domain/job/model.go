package job

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status represents the current state of an analysis job.
type Status string

const (
	StatusPending    Status = "pending"    // Waiting in queue
	StatusProcessing Status = "processing" // Claimed by a worker
	StatusCompleted  Status = "completed"  // Finished successfully
	StatusFailed     Status = "failed"     // Analysis failed
)

// Job represents one queued unit of video-analysis work.
type Job struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           *uuid.UUID `gorm:"type:uuid;column:user_id" json:"user_id"`
	TicketID         *uuid.UUID `gorm:"type:uuid;column:ticket_id;index" json:"ticket_id"`
	Status           Status     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	VideoStoragePath string     `gorm:"type:text;not null" json:"video_storage_path"`
	VideoSizeBytes   int64      `gorm:"not null;default:0" json:"video_size_bytes"`
	Prompt           *string    `gorm:"type:text" json:"prompt"`
	AnalysisResult   *string    `gorm:"type:text" json:"analysis_result"`
	ErrorMessage     *string    `gorm:"type:text" json:"error_message"`
	RetryCount       int        `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	StartedAt        *time.Time `gorm:"column:started_at" json:"started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the database table name
func (Job) TableName() string {
	return "analysis_jobs"
}

func (j *Job) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the job has reached a final state.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
