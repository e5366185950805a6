package project

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ortrace/ortrace-go/internal/domain/ticket"
)

// AnalysisQuestion is one question the model is asked to answer for a
// feedback type. Disabled questions stay configured but are not sent.
type AnalysisQuestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Enabled  bool   `json:"enabled"`
	IsCustom bool   `json:"is_custom"`
}

// AnalysisQuestions holds the per-feedback-type question lists.
type AnalysisQuestions struct {
	Bug      []AnalysisQuestion `json:"bug"`
	Feedback []AnalysisQuestion `json:"feedback"`
	Idea     []AnalysisQuestion `json:"idea"`
}

// DefaultAnalysisQuestions returns the built-in question set used when a
// project has not customized its settings.
func DefaultAnalysisQuestions() AnalysisQuestions {
	return AnalysisQuestions{
		Bug: []AnalysisQuestion{
			{ID: "bug-blocked", Text: "Is the user completely blocked from completing the task?", Enabled: true},
			{ID: "bug-workarounds", Text: "Did the user try alternative paths or workarounds?", Enabled: true},
			{ID: "bug-user-error", Text: "Is this likely a user error or a product bug?", Enabled: true},
		},
		Feedback: []AnalysisQuestion{
			{ID: "feedback-friction", Text: "Where does the user experience friction in the flow?", Enabled: true},
			{ID: "feedback-expectation", Text: "What expectation did the user have that was not met?", Enabled: true},
			{ID: "feedback-smoother", Text: "What would make this experience feel smoother?", Enabled: true},
		},
		Idea: []AnalysisQuestion{
			{ID: "idea-problem", Text: "What problem is the user trying to solve?", Enabled: true},
			{ID: "idea-benefit", Text: "What benefit would this feature provide?", Enabled: true},
			{ID: "idea-urgency", Text: "How urgent is this request in their workflow?", Enabled: true},
		},
	}
}

// EnabledForType returns the enabled question texts for a feedback type.
func (q AnalysisQuestions) EnabledForType(ft ticket.FeedbackType) []string {
	var list []AnalysisQuestion
	switch ft {
	case ticket.TypeBug:
		list = q.Bug
	case ticket.TypeFeedback:
		list = q.Feedback
	case ticket.TypeIdea:
		list = q.Idea
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item.Enabled {
			out = append(out, item.Text)
		}
	}
	return out
}

// Project is one customer site the widget is embedded on.
type Project struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Domain    *string        `gorm:"size:255" json:"domain"`
	Settings  datatypes.JSON `gorm:"type:jsonb" json:"settings"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the database table name
func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AnalysisQuestions parses the question configuration out of the settings
// JSONB, falling back to the defaults when absent or malformed.
func (p *Project) AnalysisQuestions() AnalysisQuestions {
	var settings struct {
		AnalysisQuestions *AnalysisQuestions `json:"analysis_questions"`
	}
	if len(p.Settings) > 0 && json.Unmarshal(p.Settings, &settings) == nil && settings.AnalysisQuestions != nil {
		return *settings.AnalysisQuestions
	}
	return DefaultAnalysisQuestions()
}

// Repository defines data access for projects.
type Repository interface {
	Create(p *Project) error
	FindByID(id uuid.UUID) (*Project, error)
	FindByOwnerID(ownerID uuid.UUID) ([]Project, error)
	Update(p *Project) error
}
