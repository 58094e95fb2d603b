package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dteguh/gradeflow-api/internal/session"
)

type captureUploader struct {
	name    string
	content []byte
}

func (c *captureUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	c.name = name
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	c.content = content
	return "https://files.test/" + name, nil
}

func TestExportServiceWritesCSV(t *testing.T) {
	uploader := &captureUploader{}
	svc := NewExportService(uploader, testLogger())

	rows := []session.ExportRow{
		{StudentName: "Ana", AssignedGrade: 91, Feedback: "great work"},
		{StudentName: "Ben, Jr.", AssignedGrade: 75, Feedback: "needs \"citations\""},
	}

	result, err := svc.Export(context.Background(), "Biology", "Cell Essay", rows)
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	require.Equal(t, "https://files.test/"+uploader.name, result.DestinationURL)
	require.Contains(t, uploader.name, "Biology")
	require.Contains(t, uploader.name, "Cell Essay")

	parsed, err := csv.NewReader(bytes.NewReader(uploader.content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	require.Equal(t, []string{"Student Name", "Grade", "Feedback"}, parsed[0])
	require.Equal(t, []string{"Ana", "91", "great work"}, parsed[1])
	require.Equal(t, []string{"Ben, Jr.", "75", `needs "citations"`}, parsed[2])
}
