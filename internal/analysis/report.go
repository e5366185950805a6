package analysis

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ortrace/ortrace-go/internal/domain/report"
)

// BuildReport maps a parsed analysis object onto a report row plus its
// issue rows. Semi-structured fields are stored as the raw JSON the model
// produced; missing or malformed values fall back to defaults rather than
// failing the whole report.
func BuildReport(ticketID uuid.UUID, parsed map[string]any, rawText string) (*report.Report, []report.Issue) {
	r := &report.Report{
		TicketID:            ticketID,
		Outcome:             outcomeField(parsed, "outcome"),
		Confidence:          intField(parsed, "confidence"),
		Overview:            stringField(parsed, "overview"),
		TaskCompletionRate:  intField(parsed, "task_completion_rate"),
		TotalHesitationTime: intField(parsed, "total_hesitation_time"),
		RetriesCount:        intField(parsed, "retries_count"),
		AbandonmentPoint:    stringField(parsed, "abandonment_point"),
		QuestionAnalysis:    jsonField(parsed, "question_analysis"),
		SuggestedActions:    jsonField(parsed, "suggested_actions"),
		PossibleSolutions:   jsonField(parsed, "possible_solutions"),
		RawAnalysis:         rawText,
	}

	var issues []report.Issue
	rawIssues, _ := parsed["issues"].([]any)
	for _, item := range rawIssues {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		issues = append(issues, buildIssue(obj))
	}
	return r, issues
}

func buildIssue(obj map[string]any) report.Issue {
	title := "Unknown Issue"
	if s := stringField(obj, "title"); s != nil && *s != "" {
		title = *s
	}
	return report.Issue{
		Title:             title,
		Severity:          severityField(obj),
		Tags:              jsonField(obj, "tags"),
		ObservedBehavior:  stringField(obj, "observed_behavior"),
		ExpectedBehavior:  stringField(obj, "expected_behavior"),
		Evidence:          jsonField(obj, "evidence"),
		Screenshots:       jsonField(obj, "screenshots"),
		Impact:            jsonField(obj, "impact"),
		ReproductionSteps: jsonField(obj, "reproduction_steps"),
		Confidence:        intField(obj, "confidence"),
	}
}

func stringField(obj map[string]any, key string) *string {
	if s, ok := obj[key].(string); ok {
		return &s
	}
	return nil
}

func intField(obj map[string]any, key string) *int {
	if f, ok := obj[key].(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func outcomeField(obj map[string]any, key string) *report.Outcome {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	switch o := report.Outcome(strings.ToLower(s)); o {
	case report.OutcomeSuccess, report.OutcomePartial, report.OutcomeFailed:
		return &o
	default:
		return nil
	}
}

func severityField(obj map[string]any) report.Severity {
	s, ok := obj["severity"].(string)
	if !ok {
		return report.SeverityMedium
	}
	switch sev := report.Severity(strings.ToLower(s)); sev {
	case report.SeverityCritical, report.SeverityHigh, report.SeverityMedium, report.SeverityLow:
		return sev
	default:
		return report.SeverityMedium
	}
}

// jsonField re-encodes the value exactly as it appeared in the parsed
// object. Array-or-string tolerance is handled at read time, so nothing
// is reshaped here; absent keys become an empty array.
func jsonField(obj map[string]any, key string) datatypes.JSON {
	v, ok := obj[key]
	if !ok || v == nil {
		return datatypes.JSON("[]")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}
