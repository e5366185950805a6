package worker

import (
	"fmt"
	"strings"

	"github.com/ortrace/ortrace-go/internal/domain/ticket"
)

const bugGuidance = `Focus on identifying the defect: what action triggered it, what the user
expected, and what actually happened. Note any error messages, broken UI
states, or failed network activity visible in the recording. Capture exact
reproduction steps in order.`

const feedbackGuidance = `Focus on the user's experience: moments of hesitation, confusion or
frustration, places where the flow slowed them down, and what they seemed
to expect instead. Judge overall task completion and friction.`

const ideaGuidance = `Focus on the underlying need: what the user is trying to accomplish, why
the current product falls short, and what capability would close the gap.
Assess how central this is to their workflow.`

const jsonStructure = `Respond with a single JSON object and nothing else, using this structure:
{
  "outcome": "success" | "partial" | "failed",
  "confidence": 0-100,
  "overview": "short summary of what happened in the video",
  "task_completion_rate": 0-100,
  "total_hesitation_time": seconds,
  "retries_count": number,
  "abandonment_point": "where the user gave up, or null",
  "question_analysis": [{"question": "...", "answer": "...", "observations": ["..."], "confidence": 0-100, "timestamp": "mm:ss"}],
  "suggested_actions": ["..."],
  "possible_solutions": ["..."],
  "issues": [{
    "title": "...",
    "severity": "critical" | "high" | "medium" | "low",
    "tags": ["..."],
    "observed_behavior": "...",
    "expected_behavior": "...",
    "evidence": [{"type": "timestamp" | "observation", "value": "...", "description": "..."}],
    "impact": ["..."],
    "reproduction_steps": ["..."],
    "confidence": 0-100
  }]
}`

// buildPromptForTicket assembles the analysis prompt from the ticket's
// feedback type, its task description and the project's enabled questions.
func buildPromptForTicket(t *ticket.FeedbackTicket, questions []string) string {
	var guidance, label string
	switch t.FeedbackType {
	case ticket.TypeBug:
		label, guidance = "bug report", bugGuidance
	case ticket.TypeFeedback:
		label, guidance = "usability feedback", feedbackGuidance
	case ticket.TypeIdea:
		label, guidance = "feature idea", ideaGuidance
	default:
		label, guidance = "feedback submission", feedbackGuidance
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are analyzing a screen recording submitted as a %s.\n\n", label)
	sb.WriteString(guidance)
	sb.WriteString("\n\n")

	if t.TaskDescription != nil && *t.TaskDescription != "" {
		fmt.Fprintf(&sb, "The user described their task as: %q\n\n", *t.TaskDescription)
	}

	if len(questions) > 0 {
		sb.WriteString("Answer these questions in your analysis (include each in question_analysis):\n")
		for _, q := range questions {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(jsonStructure)
	return sb.String()
}

// defaultPrompt covers jobs enqueued without an associated ticket.
func defaultPrompt() string {
	return "You are analyzing a screen recording of a user interacting with a web application.\n\n" +
		feedbackGuidance + "\n\n" + jsonStructure
}
