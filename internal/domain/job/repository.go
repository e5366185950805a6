package job

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFailed is returned by Retry when the job is not currently failed.
var ErrNotFailed = errors.New("job is not in failed state")

// CreateJobRequest carries the fields for a new queue entry.
type CreateJobRequest struct {
	VideoStoragePath string     `json:"video_storage_path"`
	VideoSizeBytes   int64      `json:"video_size_bytes"`
	Prompt           *string    `json:"prompt"`
	UserID           *uuid.UUID `json:"user_id"`
	TicketID         *uuid.UUID `json:"ticket_id"`
}

// Queue defines the durable work queue contract.
//
// Dequeue must atomically claim the oldest pending job so that concurrent
// pollers never receive the same job; it returns (nil, nil) when the queue
// is empty. Retry policy lives with the caller: Fail records the error and
// bumps the retry counter, Retry resets a failed job back to pending.
type Queue interface {
	Enqueue(req CreateJobRequest) (uuid.UUID, error)
	Dequeue() (*Job, error)
	Complete(id uuid.UUID, result string) error
	Fail(id uuid.UUID, errMsg string) error
	Retry(id uuid.UUID) error
	GetByID(id uuid.UUID) (*Job, error)
	GetByTicketID(ticketID uuid.UUID) (*Job, error)
}
