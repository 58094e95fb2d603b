package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dteguh/gradeflow-api/internal/models"
)

func record(courseID, courseName, student, title string, grade int, gradedAt time.Time) models.GradeRecord {
	return models.GradeRecord{
		CourseID:        courseID,
		CourseName:      courseName,
		AssignmentTitle: title,
		StudentName:     student,
		AssignedGrade:   grade,
		GradedAt:        gradedAt,
	}
}

func TestComputeStatsEmptyInput(t *testing.T) {
	stats := ComputeStats(nil)
	require.Equal(t, Stats{}, stats)

	stats = ComputeStats([]float64{})
	require.Zero(t, stats.Count)
	require.Zero(t, stats.Mean)
	require.Zero(t, stats.Median)
	require.Zero(t, stats.StdDev)
	require.Zero(t, stats.Min)
	require.Zero(t, stats.Max)
}

func TestComputeStatsPopulationStdDev(t *testing.T) {
	stats := ComputeStats([]float64{70, 80, 90})

	require.Equal(t, 3, stats.Count)
	require.InDelta(t, 80.00, stats.Mean, 1e-9)
	require.InDelta(t, 80.00, stats.Median, 1e-9)
	require.InDelta(t, 8.16, stats.StdDev, 1e-9)
	require.InDelta(t, 70, stats.Min, 1e-9)
	require.InDelta(t, 90, stats.Max, 1e-9)
}

func TestComputeStatsEvenCountMedian(t *testing.T) {
	stats := ComputeStats([]float64{60, 90, 70, 80})
	require.InDelta(t, 75, stats.Median, 1e-9)
}

func TestComputeStatsDoesNotMutateInput(t *testing.T) {
	grades := []float64{90, 60, 75}
	ComputeStats(grades)
	require.Equal(t, []float64{90, 60, 75}, grades)
}

func TestBucketDistributionBoundaries(t *testing.T) {
	now := time.Now()
	records := make([]models.GradeRecord, 0)
	for _, grade := range []int{50, 51, 70, 71, 85, 86, 100} {
		records = append(records, record("c1", "Biology", "Ana", "Quiz", grade, now))
	}

	distribution := BucketDistribution(records)

	require.Equal(t, 1, distribution["0-50"])
	require.Equal(t, 2, distribution["51-70"])
	require.Equal(t, 2, distribution["71-85"])
	require.Equal(t, 2, distribution["86-100"])
}

func TestBucketDistributionEmptyKeepsAllBands(t *testing.T) {
	distribution := BucketDistribution(nil)
	for _, band := range DistributionBands {
		count, ok := distribution[band]
		require.True(t, ok)
		require.Zero(t, count)
	}
}

func TestGroupByCourseUniqueStudentsByName(t *testing.T) {
	now := time.Now()
	records := []models.GradeRecord{
		record("c1", "Biology", "Ana", "Quiz 1", 80, now),
		record("c1", "Biology", "Ben", "Quiz 1", 60, now),
		record("c1", "Biology", "Ana", "Quiz 2", 90, now),
		record("c2", "Algebra", "Cleo", "Homework", 100, now),
	}

	courses := GroupByCourse(records)
	require.Len(t, courses, 2)

	// Ordered by course name.
	require.Equal(t, "Algebra", courses[0].CourseName)
	require.Equal(t, "Biology", courses[1].CourseName)

	biology := courses[1]
	require.Equal(t, 3, biology.SubmissionCount)
	require.Equal(t, 2, biology.UniqueStudents)
	require.InDelta(t, 76.67, biology.Stats.Mean, 1e-9)
}

func TestGroupByStudentOrderedByDescendingMean(t *testing.T) {
	now := time.Now()
	records := []models.GradeRecord{
		record("c1", "Biology", "A", "Quiz 1", 60, now.Add(-time.Hour)),
		record("c1", "Biology", "B", "Quiz 1", 90, now.Add(-2*time.Hour)),
		record("c1", "Biology", "B", "Quiz 2", 90, now.Add(-time.Hour)),
	}

	students := GroupByStudent(records)
	require.Len(t, students, 2)
	require.Equal(t, "B", students[0].StudentName)
	require.Equal(t, "A", students[1].StudentName)
}

func TestGroupByStudentAssignmentsChronological(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.GradeRecord{
		record("c1", "Biology", "Ana", "Quiz 3", 70, base.AddDate(0, 0, 14)),
		record("c1", "Biology", "Ana", "Quiz 1", 80, base),
		record("c1", "Biology", "Ana", "Quiz 2", 90, base.AddDate(0, 0, 7)),
	}

	students := GroupByStudent(records)
	require.Len(t, students, 1)

	titles := make([]string, 0, 3)
	for _, assignment := range students[0].Assignments {
		titles = append(titles, assignment.Title)
	}
	require.Equal(t, []string{"Quiz 1", "Quiz 2", "Quiz 3"}, titles)
}

func TestRecentActivityNewestFirstStableTies(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.GradeRecord{
		record("c1", "Biology", "Ana", "Old", 70, base.AddDate(0, 0, -3)),
		record("c1", "Biology", "Ben", "Tie A", 80, base),
		record("c1", "Biology", "Cleo", "Tie B", 85, base),
		record("c1", "Biology", "Dan", "Newest", 90, base.AddDate(0, 0, 1)),
	}

	recent := RecentActivity(records, 3)
	require.Len(t, recent, 3)
	require.Equal(t, "Newest", recent[0].AssignmentTitle)
	require.Equal(t, "Tie A", recent[1].AssignmentTitle)
	require.Equal(t, "Tie B", recent[2].AssignmentTitle)

	// Input order preserved.
	require.Equal(t, "Old", records[0].AssignmentTitle)
}

func TestRecentActivityZeroLimit(t *testing.T) {
	require.Empty(t, RecentActivity([]models.GradeRecord{record("c1", "Biology", "Ana", "Quiz", 80, time.Now())}, 0))
}

func TestCompareCoursesKeepsRequestedOrder(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	records := []models.GradeRecord{
		record("c1", "Biology", "Ana", "Quiz 1", 80, now),
		record("c1", "Biology", "Ben", "Quiz 1", 85, now),
		record("c2", "Algebra", "Cleo", "Homework", 60, now),
	}

	entries := CompareCourses(records, []string{"c2", "c1", "c9"})
	require.Len(t, entries, 2)
	require.Equal(t, "c2", entries[0].ID)
	require.Equal(t, "Algebra", entries[0].Label)
	require.Equal(t, 60.0, entries[0].AverageGrade)
	require.Equal(t, 1, entries[0].TotalGraded)
	require.Equal(t, "c1", entries[1].ID)
	require.Equal(t, 82.5, entries[1].AverageGrade)
	require.Equal(t, 2, entries[1].TotalGraded)
}

func TestCompareAssignmentsByAssignmentID(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	first := record("c1", "Biology", "Ana", "Quiz 1", 70, now)
	first.AssignmentID = "a1"
	second := record("c1", "Biology", "Ben", "Quiz 1", 90, now)
	second.AssignmentID = "a1"
	other := record("c1", "Biology", "Ana", "Quiz 2", 50, now)
	other.AssignmentID = "a2"

	entries := CompareAssignments([]models.GradeRecord{first, second, other}, []string{"a1"})
	require.Len(t, entries, 1)
	require.Equal(t, "Quiz 1", entries[0].Label)
	require.Equal(t, 80.0, entries[0].AverageGrade)
	require.Equal(t, 2, entries[0].TotalGraded)
}

func TestTrendOverPeriodFiltersWindow(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	records := []models.GradeRecord{
		record("c1", "Biology", "Ana", "Recent B", 85, now.AddDate(0, 0, -1)),
		record("c1", "Biology", "Ana", "Too Old", 50, now.AddDate(0, 0, -10)),
		record("c1", "Biology", "Ana", "Recent A", 80, now.AddDate(0, 0, -3)),
	}

	points, direction := TrendOverPeriod(records, PeriodWeek, now)
	require.Len(t, points, 2)
	require.Equal(t, "Recent A", points[0].Assignment)
	require.Equal(t, "Recent B", points[1].Assignment)
	require.Equal(t, TrendInsufficientData, direction)

	points, _ = TrendOverPeriod(records, PeriodAll, now)
	require.Len(t, points, 3)
	require.Equal(t, "Too Old", points[0].Assignment)
}

func TestTrendOverPeriodClassification(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	series := func(grades ...int) []models.GradeRecord {
		records := make([]models.GradeRecord, 0, len(grades))
		for i, grade := range grades {
			records = append(records, record("c1", "Biology", "Ana", "Quiz", grade, now.AddDate(0, 0, -len(grades)+i)))
		}
		return records
	}

	_, direction := TrendOverPeriod(series(60, 70, 80), PeriodAll, now)
	require.Equal(t, TrendImproving, direction)

	_, direction = TrendOverPeriod(series(90, 80, 60), PeriodAll, now)
	require.Equal(t, TrendDeclining, direction)

	// A five point shift is not enough; the movement must exceed it.
	_, direction = TrendOverPeriod(series(80, 82, 85), PeriodAll, now)
	require.Equal(t, TrendStable, direction)

	_, direction = TrendOverPeriod(nil, PeriodAll, now)
	require.Equal(t, TrendNoData, direction)

	_, direction = TrendOverPeriod(series(80, 90), PeriodAll, now)
	require.Equal(t, TrendInsufficientData, direction)
}
