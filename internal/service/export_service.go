package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/session"
)

// FileUploader pushes a rendered file to external storage and returns its
// public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ExportService renders completed grades to a CSV spreadsheet and uploads it,
// implementing session.Exporter.
type ExportService struct {
	uploader FileUploader
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(uploader FileUploader, logger zerolog.Logger) *ExportService {
	return &ExportService{
		uploader: uploader,
		logger:   logger.With().Str("component", "export_service").Logger(),
		now:      time.Now,
	}
}

// Export writes the snapshot rows as CSV and uploads the file. The rows are a
// point-in-time capture handed over by the session; this service never reads
// live session state.
func (s *ExportService) Export(ctx context.Context, courseName, assignmentTitle string, rows []session.ExportRow) (session.ExportResult, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"Student Name", "Grade", "Feedback"}
	if err := writer.Write(header); err != nil {
		return session.ExportResult{}, fmt.Errorf("write export header: %w", err)
	}

	for _, row := range rows {
		record := []string{row.StudentName, strconv.Itoa(row.AssignedGrade), row.Feedback}
		if err := writer.Write(record); err != nil {
			return session.ExportResult{}, fmt.Errorf("write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return session.ExportResult{}, fmt.Errorf("flush export: %w", err)
	}

	name := fmt.Sprintf("%s - %s - %s.csv", courseName, assignmentTitle, s.now().UTC().Format("2006-01-02 15-04-05"))
	url, err := s.uploader.Upload(ctx, name, buffer)
	if err != nil {
		return session.ExportResult{}, fmt.Errorf("upload export: %w", err)
	}

	s.logger.Info().
		Str("destination", url).
		Int("rows", len(rows)).
		Msg("grades exported")

	return session.ExportResult{DestinationURL: url, Count: len(rows)}, nil
}
