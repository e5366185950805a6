package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ortrace/ortrace-go/internal/domain/ticket"
)

func TestBuildPromptForTicketByType(t *testing.T) {
	cases := []struct {
		feedbackType ticket.FeedbackType
		wantLabel    string
	}{
		{ticket.TypeBug, "bug report"},
		{ticket.TypeFeedback, "usability feedback"},
		{ticket.TypeIdea, "feature idea"},
	}
	for _, tc := range cases {
		tk := &ticket.FeedbackTicket{FeedbackType: tc.feedbackType}
		prompt := buildPromptForTicket(tk, nil)
		assert.Contains(t, prompt, tc.wantLabel)
		assert.Contains(t, prompt, `"outcome"`)
		assert.Contains(t, prompt, "question_analysis")
	}
}

func TestBuildPromptIncludesQuestions(t *testing.T) {
	tk := &ticket.FeedbackTicket{FeedbackType: ticket.TypeFeedback}
	questions := []string{"Where does the user hesitate?", "What did they expect?"}

	prompt := buildPromptForTicket(tk, questions)
	assert.Contains(t, prompt, "Answer these questions in your analysis")
	for _, q := range questions {
		assert.Contains(t, prompt, q)
	}
}

func TestBuildPromptOmitsQuestionBlockWhenEmpty(t *testing.T) {
	tk := &ticket.FeedbackTicket{FeedbackType: ticket.TypeBug}
	prompt := buildPromptForTicket(tk, nil)
	assert.NotContains(t, prompt, "Answer these questions")
}

func TestBuildPromptIncludesTaskDescription(t *testing.T) {
	desc := "uploading a profile photo"
	tk := &ticket.FeedbackTicket{FeedbackType: ticket.TypeIdea, TaskDescription: &desc}
	prompt := buildPromptForTicket(tk, nil)
	assert.Contains(t, prompt, "uploading a profile photo")
}

func TestDefaultPrompt(t *testing.T) {
	prompt := defaultPrompt()
	assert.Contains(t, prompt, "screen recording")
	assert.Contains(t, prompt, `"issues"`)
}
