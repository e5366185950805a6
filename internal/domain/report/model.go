package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outcome is the overall verdict of an analysis.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// Severity of a detected issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Report is the structured outcome of analyzing a ticket's video, created
// exactly once per successful analysis. The semi-structured fields are kept
// as raw JSON exactly as the model returned them (array or bare string);
// normalization happens at read time via the helpers below.
type Report struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID            uuid.UUID      `gorm:"type:uuid;column:ticket_id;not null;uniqueIndex" json:"ticket_id"`
	Outcome             *Outcome       `gorm:"size:20" json:"outcome"`
	Confidence          *int           `json:"confidence"`
	Overview            *string        `gorm:"type:text" json:"overview"`
	TaskCompletionRate  *int           `json:"task_completion_rate"`
	TotalHesitationTime *int           `json:"total_hesitation_time"`
	RetriesCount        *int           `json:"retries_count"`
	AbandonmentPoint    *string        `gorm:"type:text" json:"abandonment_point"`
	QuestionAnalysis    datatypes.JSON `gorm:"type:jsonb" json:"question_analysis"`
	SuggestedActions    datatypes.JSON `gorm:"type:jsonb" json:"suggested_actions"`
	PossibleSolutions   datatypes.JSON `gorm:"type:jsonb" json:"possible_solutions"`
	RawAnalysis         string         `gorm:"type:text" json:"raw_analysis"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the database table name
func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Issue is one discrete problem detected within a report.
type Issue struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	Title             string         `gorm:"size:255;not null" json:"title"`
	Severity          Severity       `gorm:"size:20;not null;default:'medium'" json:"severity"`
	Tags              datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	ObservedBehavior  *string        `gorm:"type:text" json:"observed_behavior"`
	ExpectedBehavior  *string        `gorm:"type:text" json:"expected_behavior"`
	Evidence          datatypes.JSON `gorm:"type:jsonb" json:"evidence"`
	Screenshots       datatypes.JSON `gorm:"type:jsonb" json:"screenshots"`
	Impact            datatypes.JSON `gorm:"type:jsonb" json:"impact"`
	ReproductionSteps datatypes.JSON `gorm:"type:jsonb" json:"reproduction_steps"`
	Confidence        *int           `json:"confidence"`
	ExternalTicketURL *string        `gorm:"type:text" json:"external_ticket_url"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the database table name
func (Issue) TableName() string {
	return "issues"
}

func (i *Issue) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// EvidenceItem is one piece of evidence attached to an issue.
type EvidenceItem struct {
	Type        string  `json:"type"` // "screenshot", "timestamp" or "observation"
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}

// QuestionAnswer is one entry of the per-question analysis.
type QuestionAnswer struct {
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Observations []string `json:"observations"`
	Confidence   int      `json:"confidence"`
	Timestamp    *string  `json:"timestamp"`
}

// StringListFromJSON normalizes a stored JSON value into a string list.
// The upstream model returns either an array or a bare string for fields
// like tags, impact and reproduction_steps; arrays are filtered to their
// string elements, a bare string becomes a singleton list.
func StringListFromJSON(raw datatypes.JSON) []string {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{val}
	default:
		return nil
	}
}

// EvidenceFromJSON normalizes a stored JSON value into evidence items.
// A bare string becomes a single synthetic "observation" item.
func EvidenceFromJSON(raw datatypes.JSON) []EvidenceItem {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	switch val := v.(type) {
	case []any:
		out := make([]EvidenceItem, 0, len(val))
		for _, item := range val {
			b, err := json.Marshal(item)
			if err != nil {
				continue
			}
			var e EvidenceItem
			if json.Unmarshal(b, &e) == nil {
				out = append(out, e)
			}
		}
		return out
	case string:
		return []EvidenceItem{{Type: "observation", Value: val}}
	default:
		return nil
	}
}

// QuestionAnswersFromJSON normalizes a stored JSON value into question
// analysis entries. A bare string becomes one entry with an empty question
// and the string as the answer.
func QuestionAnswersFromJSON(raw datatypes.JSON) []QuestionAnswer {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	switch val := v.(type) {
	case []any:
		out := make([]QuestionAnswer, 0, len(val))
		for _, item := range val {
			b, err := json.Marshal(item)
			if err != nil {
				continue
			}
			var q QuestionAnswer
			if json.Unmarshal(b, &q) == nil {
				out = append(out, q)
			}
		}
		return out
	case string:
		return []QuestionAnswer{{Answer: val}}
	default:
		return nil
	}
}
