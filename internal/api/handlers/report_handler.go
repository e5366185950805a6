package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/report"
	"github.com/ortrace/ortrace-go/internal/state"
)

type ReportHandler struct {
	ready *state.Ready
}

// issueView is an issue with its semi-structured fields normalized for
// clients, regardless of whether the model returned arrays or bare strings.
type issueView struct {
	ID                uuid.UUID             `json:"id"`
	Title             string                `json:"title"`
	Severity          report.Severity       `json:"severity"`
	Tags              []string              `json:"tags"`
	ObservedBehavior  *string               `json:"observed_behavior"`
	ExpectedBehavior  *string               `json:"expected_behavior"`
	Evidence          []report.EvidenceItem `json:"evidence"`
	Screenshots       []string              `json:"screenshots"`
	Impact            []string              `json:"impact"`
	ReproductionSteps []string              `json:"reproduction_steps"`
	Confidence        *int                  `json:"confidence"`
	ExternalTicketURL *string               `json:"external_ticket_url"`
}

type reportView struct {
	ID                  uuid.UUID               `json:"id"`
	TicketID            uuid.UUID               `json:"ticket_id"`
	Outcome             report.Outcome          `json:"outcome"`
	Confidence          int                     `json:"confidence"`
	Overview            *string                 `json:"overview"`
	TaskCompletionRate  int                     `json:"task_completion_rate"`
	TotalHesitationTime int                     `json:"total_hesitation_time"`
	RetriesCount        int                     `json:"retries_count"`
	AbandonmentPoint    *string                 `json:"abandonment_point"`
	QuestionAnalysis    []report.QuestionAnswer `json:"question_analysis"`
	SuggestedActions    []string                `json:"suggested_actions"`
	PossibleSolutions   []string                `json:"possible_solutions"`
	Issues              []issueView             `json:"issues"`
}

// GetByTicket returns the normalized report for a ticket. A missing report
// is ambiguous for the client: analysis may simply not have finished yet.
func (h *ReportHandler) GetByTicket(c *gin.Context) {
	s := appState(c, h.ready)
	if s == nil {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	if _, err := s.Repos.Ticket.FindByID(ticketID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ticket"})
		return
	}

	r, err := s.Repos.Report.FindByTicketID(ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found - analysis may still be processing"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		return
	}

	issues, err := s.Repos.Report.FindIssues(r.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load issues"})
		return
	}

	c.JSON(http.StatusOK, buildReportView(r, issues))
}

func buildReportView(r *report.Report, issues []report.Issue) reportView {
	view := reportView{
		ID:                  r.ID,
		TicketID:            r.TicketID,
		Outcome:             report.OutcomePartial,
		Overview:            r.Overview,
		AbandonmentPoint:    r.AbandonmentPoint,
		QuestionAnalysis:    report.QuestionAnswersFromJSON(r.QuestionAnalysis),
		SuggestedActions:    report.StringListFromJSON(r.SuggestedActions),
		PossibleSolutions:   report.StringListFromJSON(r.PossibleSolutions),
		Issues:              make([]issueView, 0, len(issues)),
	}
	if r.Outcome != nil {
		view.Outcome = *r.Outcome
	}
	if r.Confidence != nil {
		view.Confidence = *r.Confidence
	}
	if r.TaskCompletionRate != nil {
		view.TaskCompletionRate = *r.TaskCompletionRate
	}
	if r.TotalHesitationTime != nil {
		view.TotalHesitationTime = *r.TotalHesitationTime
	}
	if r.RetriesCount != nil {
		view.RetriesCount = *r.RetriesCount
	}

	for _, i := range issues {
		view.Issues = append(view.Issues, issueView{
			ID:                i.ID,
			Title:             i.Title,
			Severity:          i.Severity,
			Tags:              report.StringListFromJSON(i.Tags),
			ObservedBehavior:  i.ObservedBehavior,
			ExpectedBehavior:  i.ExpectedBehavior,
			Evidence:          report.EvidenceFromJSON(i.Evidence),
			Screenshots:       report.StringListFromJSON(i.Screenshots),
			Impact:            report.StringListFromJSON(i.Impact),
			ReproductionSteps: report.StringListFromJSON(i.ReproductionSteps),
			Confidence:        i.Confidence,
			ExternalTicketURL: i.ExternalTicketURL,
		})
	}
	return view
}
