package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/ortrace/ortrace-go/internal/domain/ticket"
)

func TestAnalysisQuestionsDefaultsWhenUnset(t *testing.T) {
	p := &Project{}
	got := p.AnalysisQuestions()
	assert.Equal(t, DefaultAnalysisQuestions(), got)
}

func TestAnalysisQuestionsDefaultsWhenMalformed(t *testing.T) {
	p := &Project{Settings: datatypes.JSON(`{not json`)}
	assert.Equal(t, DefaultAnalysisQuestions(), p.AnalysisQuestions())

	p = &Project{Settings: datatypes.JSON(`{"theme": "dark"}`)}
	assert.Equal(t, DefaultAnalysisQuestions(), p.AnalysisQuestions())
}

func TestAnalysisQuestionsFromSettings(t *testing.T) {
	p := &Project{Settings: datatypes.JSON(`{"analysis_questions": {"bug": [
		{"id": "custom-1", "text": "Is the console showing errors?", "enabled": true, "is_custom": true}
	]}}`)}

	got := p.AnalysisQuestions()
	require.Len(t, got.Bug, 1)
	assert.Equal(t, "Is the console showing errors?", got.Bug[0].Text)
	assert.True(t, got.Bug[0].IsCustom)
	assert.Empty(t, got.Feedback)
}

func TestEnabledForTypeFiltersDisabled(t *testing.T) {
	q := AnalysisQuestions{
		Bug: []AnalysisQuestion{
			{ID: "a", Text: "enabled one", Enabled: true},
			{ID: "b", Text: "disabled one", Enabled: false},
			{ID: "c", Text: "enabled two", Enabled: true},
		},
	}
	assert.Equal(t, []string{"enabled one", "enabled two"}, q.EnabledForType(ticket.TypeBug))
	assert.Empty(t, q.EnabledForType(ticket.TypeFeedback))
}

func TestDefaultQuestionsEnabledPerType(t *testing.T) {
	defaults := DefaultAnalysisQuestions()
	assert.Contains(t, defaults.EnabledForType(ticket.TypeBug), "Is the user completely blocked from completing the task?")
	assert.Len(t, defaults.EnabledForType(ticket.TypeFeedback), 3)
	assert.Len(t, defaults.EnabledForType(ticket.TypeIdea), 3)
}
