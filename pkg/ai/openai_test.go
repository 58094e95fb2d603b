package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGradeResponse(t *testing.T) {
	outcome, err := parseGradeResponse(`{"assigned_grade": 82, "feedback": "Good work", "justification": "Matches key"}`)
	require.NoError(t, err)
	require.Equal(t, 82, outcome.AssignedGrade)
	require.Equal(t, "Good work", outcome.Feedback)
	require.Equal(t, "Matches key", outcome.Justification)
}

func TestParseGradeResponseClampsRange(t *testing.T) {
	outcome, err := parseGradeResponse(`{"assigned_grade": 140, "feedback": "", "justification": ""}`)
	require.NoError(t, err)
	require.Equal(t, 100, outcome.AssignedGrade)

	outcome, err = parseGradeResponse(`{"assigned_grade": -5}`)
	require.NoError(t, err)
	require.Equal(t, 0, outcome.AssignedGrade)
}

func TestParseGradeResponseRejectsMalformed(t *testing.T) {
	_, err := parseGradeResponse("the grade is 90")
	require.Error(t, err)
}

func TestBuildGradePromptIncludesAnswerKey(t *testing.T) {
	prompt := buildGradePrompt(GradeRequest{
		CourseName:      "Biology",
		AssignmentTitle: "Cell Structure Essay",
		StudentName:     "Ana",
		SubmissionID:    "sub-1",
		AnswerKey:       AnswerKey{Kind: AnswerKeyKindText, Value: "Mitochondria produce ATP."},
	})

	require.Contains(t, prompt, "Biology")
	require.Contains(t, prompt, "Cell Structure Essay")
	require.Contains(t, prompt, "Mitochondria produce ATP.")
}
