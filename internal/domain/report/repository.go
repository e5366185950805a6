package report

import "github.com/google/uuid"

// Repository defines data access for reports and their issues.
type Repository interface {
	// CreateWithIssues persists a report and its issues in one transaction.
	CreateWithIssues(r *Report, issues []Issue) error
	FindByTicketID(ticketID uuid.UUID) (*Report, error)
	FindIssues(reportID uuid.UUID) ([]Issue, error)
}
