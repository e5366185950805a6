package repository

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/ticket"
)

// TicketRepo matches the domain ticket repository contract.
type TicketRepo interface {
	ticket.Repository
	WithTx(tx *gorm.DB) TicketRepo
}

type DBTicketRepo struct {
	db *gorm.DB
}

func NewTicketRepo(db *gorm.DB) *DBTicketRepo {
	return &DBTicketRepo{
		db: db,
	}
}

func (r *DBTicketRepo) Create(t *ticket.FeedbackTicket) error {
	return r.db.Create(t).Error
}

func (r *DBTicketRepo) FindByID(id uuid.UUID) (*ticket.FeedbackTicket, error) {
	var t ticket.FeedbackTicket
	err := r.db.First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *DBTicketRepo) FindAll(filter ticket.ListFilter) ([]ticket.FeedbackTicket, error) {
	query := r.db.Order("created_at DESC")
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.TicketStatus != nil {
		query = query.Where("ticket_status = ?", *filter.TicketStatus)
	}
	if filter.FeedbackType != nil {
		query = query.Where("feedback_type = ?", *filter.FeedbackType)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var tickets []ticket.FeedbackTicket
	err := query.Find(&tickets).Error
	return tickets, err
}

func (r *DBTicketRepo) Update(t *ticket.FeedbackTicket) error {
	return r.db.Save(t).Error
}

func (r *DBTicketRepo) MarkProcessing(id uuid.UUID) error {
	return r.updateStatus(id, ticket.Processing)
}

func (r *DBTicketRepo) MarkAnalyzed(id uuid.UUID) error {
	return r.updateStatus(id, ticket.ProcessingAnalyzed)
}

func (r *DBTicketRepo) MarkFailed(id uuid.UUID) error {
	return r.updateStatus(id, ticket.ProcessingFailed)
}

func (r *DBTicketRepo) Close(id uuid.UUID, reason ticket.ClosedReason) error {
	return r.db.Model(&ticket.FeedbackTicket{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ticket_status": ticket.StatusResolved,
			"closed_at":     time.Now().UTC(),
			"closed_reason": reason,
		}).Error
}

type overviewRow struct {
	FeedbackCount   int64 `gorm:"column:feedback_count"`
	BugCount        int64 `gorm:"column:bug_count"`
	IdeaCount       int64 `gorm:"column:idea_count"`
	OpenCount       int64 `gorm:"column:open_count"`
	InProgressCount int64 `gorm:"column:in_progress_count"`
	InQACount       int64 `gorm:"column:in_qa_count"`
	TodoCount       int64 `gorm:"column:todo_count"`
	BacklogCount    int64 `gorm:"column:backlog_count"`
	ResolvedCount   int64 `gorm:"column:resolved_count"`
	TotalCount      int64 `gorm:"column:total_count"`
}

// Overview aggregates ticket counts in one pass over the table.
func (r *DBTicketRepo) Overview() (*ticket.OverviewStats, error) {
	var row overviewRow
	err := r.db.Raw(`
		SELECT
			COUNT(*) FILTER (WHERE feedback_type = 'feedback') AS feedback_count,
			COUNT(*) FILTER (WHERE feedback_type = 'bug') AS bug_count,
			COUNT(*) FILTER (WHERE feedback_type = 'idea') AS idea_count,
			COUNT(*) FILTER (WHERE ticket_status = 'open') AS open_count,
			COUNT(*) FILTER (WHERE ticket_status = 'in_progress') AS in_progress_count,
			COUNT(*) FILTER (WHERE ticket_status = 'in_qa') AS in_qa_count,
			COUNT(*) FILTER (WHERE ticket_status = 'todo') AS todo_count,
			COUNT(*) FILTER (WHERE ticket_status = 'backlog') AS backlog_count,
			COUNT(*) FILTER (WHERE ticket_status = 'resolved') AS resolved_count,
			COUNT(*) AS total_count
		FROM tickets`).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	pct := func(count int64) int64 {
		total := row.TotalCount
		if total < 1 {
			total = 1
		}
		return int64(math.Round(float64(count) / float64(total) * 100))
	}
	return &ticket.OverviewStats{
		FeedbackCount:   row.FeedbackCount,
		BugCount:        row.BugCount,
		IdeaCount:       row.IdeaCount,
		OpenCount:       row.OpenCount,
		OpenPct:         pct(row.OpenCount),
		InProgressCount: row.InProgressCount,
		InProgressPct:   pct(row.InProgressCount),
		InQACount:       row.InQACount,
		InQAPct:         pct(row.InQACount),
		TodoCount:       row.TodoCount,
		TodoPct:         pct(row.TodoCount),
		BacklogCount:    row.BacklogCount,
		BacklogPct:      pct(row.BacklogCount),
		ResolvedCount:   row.ResolvedCount,
		ResolvedPct:     pct(row.ResolvedCount),
		TotalCount:      row.TotalCount,
	}, nil
}

func (r *DBTicketRepo) updateStatus(id uuid.UUID, status ticket.ProcessingStatus) error {
	return r.db.Model(&ticket.FeedbackTicket{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status}).Error
}

func (r *DBTicketRepo) WithTx(tx *gorm.DB) TicketRepo {
	if tx == nil {
		return r
	}
	return &DBTicketRepo{
		db: tx,
	}
}
