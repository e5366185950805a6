package ticket

import "github.com/google/uuid"

// ListFilter narrows the ticket list; nil fields match everything.
type ListFilter struct {
	ProjectID    *uuid.UUID
	TicketStatus *TicketStatus
	FeedbackType *FeedbackType
	Priority     *Priority
	AssigneeID   *uuid.UUID
}

// OverviewStats aggregates ticket counts for the dashboard. Percentages
// are of the total, rounded to whole numbers.
type OverviewStats struct {
	FeedbackCount   int64 `json:"feedback_count"`
	BugCount        int64 `json:"bug_count"`
	IdeaCount       int64 `json:"idea_count"`
	OpenCount       int64 `json:"open_count"`
	OpenPct         int64 `json:"open_pct"`
	InProgressCount int64 `json:"in_progress_count"`
	InProgressPct   int64 `json:"in_progress_pct"`
	InQACount       int64 `json:"in_qa_count"`
	InQAPct         int64 `json:"in_qa_pct"`
	TodoCount       int64 `json:"todo_count"`
	TodoPct         int64 `json:"todo_pct"`
	BacklogCount    int64 `json:"backlog_count"`
	BacklogPct      int64 `json:"backlog_pct"`
	ResolvedCount   int64 `json:"resolved_count"`
	ResolvedPct     int64 `json:"resolved_pct"`
	TotalCount      int64 `json:"total_count"`
}

// Repository defines data access for tickets. The status-mutation methods
// must be idempotent: the worker may call them again after a retry.
type Repository interface {
	Create(t *FeedbackTicket) error
	FindByID(id uuid.UUID) (*FeedbackTicket, error)
	FindAll(filter ListFilter) ([]FeedbackTicket, error)
	Update(t *FeedbackTicket) error
	MarkProcessing(id uuid.UUID) error
	MarkAnalyzed(id uuid.UUID) error
	MarkFailed(id uuid.UUID) error
	Close(id uuid.UUID, reason ClosedReason) error
	Overview() (*OverviewStats, error)
}
