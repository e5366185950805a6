package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ortrace/ortrace-go/internal/domain/job"
)

// JobQueue matches the domain queue contract.
type JobQueue interface {
	job.Queue
	WithTx(tx *gorm.DB) JobQueue
}

type DBJobQueue struct {
	db *gorm.DB
}

func NewJobQueue(db *gorm.DB) *DBJobQueue {
	return &DBJobQueue{
		db: db,
	}
}

func (q *DBJobQueue) Enqueue(req job.CreateJobRequest) (uuid.UUID, error) {
	j := &job.Job{
		UserID:           req.UserID,
		TicketID:         req.TicketID,
		Status:           job.StatusPending,
		VideoStoragePath: req.VideoStoragePath,
		VideoSizeBytes:   req.VideoSizeBytes,
		Prompt:           req.Prompt,
	}
	if err := q.db.Create(j).Error; err != nil {
		return uuid.Nil, err
	}
	return j.ID, nil
}

// Dequeue claims the oldest pending job. The select and the transition to
// processing run in one transaction with FOR UPDATE SKIP LOCKED, so
// concurrent pollers never claim the same row and a held row lock never
// blocks claims of other rows. Returns (nil, nil) when the queue is empty.
func (q *DBJobQueue) Dequeue() (*job.Job, error) {
	var claimed *job.Job
	err := q.db.Transaction(func(tx *gorm.DB) error {
		var j job.Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", job.StatusPending).
			Order("created_at ASC").
			First(&j).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&job.Job{}).
			Where("id = ?", j.ID).
			Updates(map[string]any{"status": job.StatusProcessing, "started_at": now}).Error; err != nil {
			return err
		}

		j.Status = job.StatusProcessing
		j.StartedAt = &now
		claimed = &j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (q *DBJobQueue) Complete(id uuid.UUID, result string) error {
	return q.db.Model(&job.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          job.StatusCompleted,
			"analysis_result": result,
			"completed_at":    time.Now().UTC(),
		}).Error
}

func (q *DBJobQueue) Fail(id uuid.UUID, errMsg string) error {
	return q.db.Model(&job.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        job.StatusFailed,
			"error_message": errMsg,
			"completed_at":  time.Now().UTC(),
			"retry_count":   gorm.Expr("retry_count + 1"),
		}).Error
}

// Retry resets a failed job back to pending. Only failed jobs transition;
// anything else reports job.ErrNotFailed.
func (q *DBJobQueue) Retry(id uuid.UUID) error {
	result := q.db.Model(&job.Job{}).
		Where("id = ? AND status = ?", id, job.StatusFailed).
		Updates(map[string]any{
			"status":        job.StatusPending,
			"error_message": nil,
			"started_at":    nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return job.ErrNotFailed
	}
	return nil
}

func (q *DBJobQueue) GetByID(id uuid.UUID) (*job.Job, error) {
	var j job.Job
	err := q.db.First(&j, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (q *DBJobQueue) GetByTicketID(ticketID uuid.UUID) (*job.Job, error) {
	var j job.Job
	err := q.db.Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (q *DBJobQueue) WithTx(tx *gorm.DB) JobQueue {
	if tx == nil {
		return q
	}
	return &DBJobQueue{
		db: tx,
	}
}
