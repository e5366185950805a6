package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestStringListFromJSONArray(t *testing.T) {
	got := StringListFromJSON(datatypes.JSON(`["a", "b", 3, "c"]`))
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestStringListFromJSONBareString(t *testing.T) {
	got := StringListFromJSON(datatypes.JSON(`"single value"`))
	assert.Equal(t, []string{"single value"}, got)
}

func TestStringListFromJSONEmptyAndInvalid(t *testing.T) {
	assert.Nil(t, StringListFromJSON(nil))
	assert.Nil(t, StringListFromJSON(datatypes.JSON(`not json`)))
	assert.Nil(t, StringListFromJSON(datatypes.JSON(`{"k": "v"}`)))
}

func TestEvidenceFromJSONArray(t *testing.T) {
	raw := datatypes.JSON(`[{"type": "timestamp", "value": "01:23", "description": "error toast appears"}]`)
	got := EvidenceFromJSON(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "timestamp", got[0].Type)
	assert.Equal(t, "01:23", got[0].Value)
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "error toast appears", *got[0].Description)
}

func TestEvidenceFromJSONBareString(t *testing.T) {
	got := EvidenceFromJSON(datatypes.JSON(`"user hovered over the button repeatedly"`))
	require.Len(t, got, 1)
	assert.Equal(t, "observation", got[0].Type)
	assert.Equal(t, "user hovered over the button repeatedly", got[0].Value)
	assert.Nil(t, got[0].Description)
}

func TestQuestionAnswersFromJSONArray(t *testing.T) {
	raw := datatypes.JSON(`[{"question": "Was the user blocked?", "answer": "Yes", "observations": ["retried twice"], "confidence": 80}]`)
	got := QuestionAnswersFromJSON(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "Was the user blocked?", got[0].Question)
	assert.Equal(t, "Yes", got[0].Answer)
	assert.Equal(t, []string{"retried twice"}, got[0].Observations)
	assert.Equal(t, 80, got[0].Confidence)
}

func TestQuestionAnswersFromJSONBareString(t *testing.T) {
	got := QuestionAnswersFromJSON(datatypes.JSON(`"the user was not blocked"`))
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Question)
	assert.Equal(t, "the user was not blocked", got[0].Answer)
}
