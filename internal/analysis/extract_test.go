package analysis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortrace/ortrace-go/internal/domain/report"
)

func TestExtractJSONRawObject(t *testing.T) {
	parsed, err := ExtractJSON(`{"outcome": "success", "confidence": 90}`)
	require.NoError(t, err)
	assert.Equal(t, "success", parsed["outcome"])
	assert.Equal(t, float64(90), parsed["confidence"])
}

func TestExtractJSONMarkdownFence(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"outcome\": \"partial\"}\n```\nLet me know if you need more."
	parsed, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "partial", parsed["outcome"])
}

func TestExtractJSONFenceCaseInsensitive(t *testing.T) {
	text := "```JSON\n{\"outcome\": \"failed\"}\n```"
	parsed, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "failed", parsed["outcome"])
}

func TestExtractJSONBraceFallback(t *testing.T) {
	text := `The user struggled with checkout. {"outcome": "failed", "overview": "cart kept emptying {sic}"} Hope this helps.`
	parsed, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "failed", parsed["outcome"])
	assert.Equal(t, "cart kept emptying {sic}", parsed["overview"])
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	text := `noise {"overview": "clicked \"save {draft}\" twice", "outcome": "partial"} trailing`
	parsed, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "partial", parsed["outcome"])
}

func TestExtractJSONProseOnly(t *testing.T) {
	_, err := ExtractJSON("The user completed the task without any problems.")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSONEmpty(t *testing.T) {
	_, err := ExtractJSON("")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestBuildReportDefaults(t *testing.T) {
	ticketID := uuid.New()
	r, issues := BuildReport(ticketID, map[string]any{}, "raw text")

	assert.Equal(t, ticketID, r.TicketID)
	assert.Nil(t, r.Outcome)
	assert.Nil(t, r.Confidence)
	assert.Equal(t, "raw text", r.RawAnalysis)
	assert.Equal(t, "[]", string(r.SuggestedActions))
	assert.Empty(t, issues)
}

func TestBuildReportFullObject(t *testing.T) {
	ticketID := uuid.New()
	parsed := map[string]any{
		"outcome":              "failed",
		"confidence":           float64(85),
		"overview":             "user abandoned checkout",
		"task_completion_rate": float64(40),
		"suggested_actions":    []any{"fix the cart"},
		"issues": []any{
			map[string]any{
				"title":    "Cart resets on refresh",
				"severity": "critical",
				"tags":     []any{"ux", "cart"},
			},
			map[string]any{
				"severity": "nonsense",
			},
		},
	}

	r, issues := BuildReport(ticketID, parsed, "raw")
	require.NotNil(t, r.Outcome)
	assert.Equal(t, report.OutcomeFailed, *r.Outcome)
	require.NotNil(t, r.Confidence)
	assert.Equal(t, 85, *r.Confidence)
	require.NotNil(t, r.TaskCompletionRate)
	assert.Equal(t, 40, *r.TaskCompletionRate)
	assert.JSONEq(t, `["fix the cart"]`, string(r.SuggestedActions))

	require.Len(t, issues, 2)
	assert.Equal(t, "Cart resets on refresh", issues[0].Title)
	assert.Equal(t, report.SeverityCritical, issues[0].Severity)
	assert.JSONEq(t, `["ux","cart"]`, string(issues[0].Tags))

	assert.Equal(t, "Unknown Issue", issues[1].Title)
	assert.Equal(t, report.SeverityMedium, issues[1].Severity)
}

func TestBuildReportBareStringFieldKeptVerbatim(t *testing.T) {
	parsed := map[string]any{
		"issues": []any{
			map[string]any{
				"title": "Slow page",
				"tags":  "performance",
			},
		},
	}
	_, issues := BuildReport(uuid.New(), parsed, "raw")
	require.Len(t, issues, 1)
	assert.Equal(t, `"performance"`, string(issues[0].Tags))
}

func TestBuildReportUnknownOutcomeDropped(t *testing.T) {
	r, _ := BuildReport(uuid.New(), map[string]any{"outcome": "maybe"}, "raw")
	assert.Nil(t, r.Outcome)
}
