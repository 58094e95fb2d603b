package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dteguh/gradeflow-api/internal/models"
)

func setupHistoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GradeRecord{}))
	return db
}

func TestGradeHistoryRepositoryFilters(t *testing.T) {
	db := setupHistoryDB(t)
	repo := NewGradeHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	seed := []models.GradeRecord{
		{CourseID: "c1", CourseName: "Biology", AssignmentID: "a1", AssignmentTitle: "Quiz 1", SubmissionID: "s1", StudentName: "Ana", AssignedGrade: 90, GradedAt: base},
		{CourseID: "c1", CourseName: "Biology", AssignmentID: "a2", AssignmentTitle: "Quiz 2", SubmissionID: "s2", StudentName: "Ben", AssignedGrade: 75, GradedAt: base.AddDate(0, 0, 1)},
		{CourseID: "c2", CourseName: "Algebra", AssignmentID: "a3", AssignmentTitle: "Homework", SubmissionID: "s3", StudentName: "Ana", AssignedGrade: 60, GradedAt: base.AddDate(0, 0, 2)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	all, err := repo.List(ctx, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Chronological ascending.
	require.Equal(t, "s1", all[0].SubmissionID)
	require.Equal(t, "s3", all[2].SubmissionID)

	byCourse, err := repo.List(ctx, HistoryFilter{CourseID: "c1"})
	require.NoError(t, err)
	require.Len(t, byCourse, 2)

	byStudent, err := repo.List(ctx, HistoryFilter{CourseID: "c1", StudentName: "Ana"})
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	require.Equal(t, 90, byStudent[0].AssignedGrade)

	byAssignment, err := repo.List(ctx, HistoryFilter{AssignmentID: "a2"})
	require.NoError(t, err)
	require.Len(t, byAssignment, 1)
	require.Equal(t, "Ben", byAssignment[0].StudentName)
}
