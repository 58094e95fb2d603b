// Package analytics turns flat lists of historical grade records into the
// statistics, groupings and trends shown on the instructor dashboard. Every
// function is pure: no I/O, no mutation of the input slice.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/dteguh/gradeflow-api/internal/models"
)

// Stats summarises a list of grade values. All values are rounded to two
// decimal places for display; intermediate computation keeps full precision.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// DistributionBands lists the fixed grade bands in ascending order. Band upper
// bounds are inclusive: a grade of exactly 50 belongs to "0-50".
var DistributionBands = []string{"0-50", "51-70", "71-85", "86-100"}

// CourseStats aggregates all records belonging to one course.
type CourseStats struct {
	CourseID        string `json:"course_id"`
	CourseName      string `json:"course_name"`
	Stats           Stats  `json:"stats"`
	SubmissionCount int    `json:"submission_count"`
	// UniqueStudents deduplicates by display name. Two students sharing a
	// name collapse into one; callers should treat this as approximate.
	UniqueStudents int `json:"unique_students"`
}

// AssignmentGrade is one point on a student's performance trend.
type AssignmentGrade struct {
	Title string    `json:"title"`
	Grade int       `json:"grade"`
	Date  time.Time `json:"date"`
}

// StudentStats aggregates one student's records within a single course.
type StudentStats struct {
	StudentName string            `json:"student_name"`
	Stats       Stats             `json:"stats"`
	Assignments []AssignmentGrade `json:"assignments"`
}

// ComputeStats derives summary statistics from raw grade values. An empty
// input yields the canonical zero-value result rather than NaN or an error.
// The standard deviation is the population form (divide by N, not N-1).
func ComputeStats(grades []float64) Stats {
	if len(grades) == 0 {
		return Stats{}
	}

	sorted := append([]float64(nil), grades...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, grade := range sorted {
		sum += grade
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, grade := range sorted {
		deviation := grade - mean
		variance += deviation * deviation
	}
	variance /= float64(len(sorted))

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return Stats{
		Count:  len(sorted),
		Mean:   round2(mean),
		Median: round2(median),
		StdDev: round2(math.Sqrt(variance)),
		Min:    round2(sorted[0]),
		Max:    round2(sorted[len(sorted)-1]),
	}
}

// BucketDistribution partitions records into the fixed grade bands. Every
// band key is present in the result even when its count is zero.
func BucketDistribution(records []models.GradeRecord) map[string]int {
	distribution := make(map[string]int, len(DistributionBands))
	for _, band := range DistributionBands {
		distribution[band] = 0
	}

	for _, record := range records {
		distribution[bandFor(record.AssignedGrade)]++
	}

	return distribution
}

func bandFor(grade int) string {
	switch {
	case grade <= 50:
		return "0-50"
	case grade <= 70:
		return "51-70"
	case grade <= 85:
		return "71-85"
	default:
		return "86-100"
	}
}

// GroupByCourse aggregates records per course, ordered by course name for a
// stable table layout.
func GroupByCourse(records []models.GradeRecord) []CourseStats {
	type courseGroup struct {
		name     string
		grades   []float64
		students map[string]struct{}
	}

	groups := make(map[string]*courseGroup)
	order := make([]string, 0)
	for _, record := range records {
		group, ok := groups[record.CourseID]
		if !ok {
			group = &courseGroup{
				name:     record.CourseName,
				students: make(map[string]struct{}),
			}
			groups[record.CourseID] = group
			order = append(order, record.CourseID)
		}
		group.grades = append(group.grades, float64(record.AssignedGrade))
		group.students[record.StudentName] = struct{}{}
	}

	results := make([]CourseStats, 0, len(groups))
	for _, courseID := range order {
		group := groups[courseID]
		results = append(results, CourseStats{
			CourseID:        courseID,
			CourseName:      group.name,
			Stats:           ComputeStats(group.grades),
			SubmissionCount: len(group.grades),
			UniqueStudents:  len(group.students),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CourseName < results[j].CourseName
	})

	return results
}

// GroupByStudent aggregates records already filtered to a single course by
// student name. Each student's assignments are ordered chronologically
// ascending for trend charts; students are ordered by descending mean grade,
// best performers first.
func GroupByStudent(records []models.GradeRecord) []StudentStats {
	groups := make(map[string][]models.GradeRecord)
	order := make([]string, 0)
	for _, record := range records {
		if _, ok := groups[record.StudentName]; !ok {
			order = append(order, record.StudentName)
		}
		groups[record.StudentName] = append(groups[record.StudentName], record)
	}

	results := make([]StudentStats, 0, len(groups))
	for _, name := range order {
		studentRecords := groups[name]

		grades := make([]float64, 0, len(studentRecords))
		assignments := make([]AssignmentGrade, 0, len(studentRecords))
		for _, record := range studentRecords {
			grades = append(grades, float64(record.AssignedGrade))
			assignments = append(assignments, AssignmentGrade{
				Title: record.AssignmentTitle,
				Grade: record.AssignedGrade,
				Date:  record.GradedAt,
			})
		}

		sort.SliceStable(assignments, func(i, j int) bool {
			return assignments[i].Date.Before(assignments[j].Date)
		})

		results = append(results, StudentStats{
			StudentName: name,
			Stats:       ComputeStats(grades),
			Assignments: assignments,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Stats.Mean > results[j].Stats.Mean
	})

	return results
}

// ComparisonEntry is one compared course or assignment, reduced to the two
// numbers the comparison chart plots.
type ComparisonEntry struct {
	ID           string  `json:"id"`
	Label        string  `json:"label"`
	AverageGrade float64 `json:"average_grade"`
	TotalGraded  int     `json:"total_graded"`
}

// CompareCourses reduces each requested course to its grade average. Entries
// keep the requested id order; ids with no records are omitted rather than
// reported as zero.
func CompareCourses(records []models.GradeRecord, courseIDs []string) []ComparisonEntry {
	return compare(records, courseIDs,
		func(r models.GradeRecord) (string, string) { return r.CourseID, r.CourseName })
}

// CompareAssignments is CompareCourses over the assignment dimension.
func CompareAssignments(records []models.GradeRecord, assignmentIDs []string) []ComparisonEntry {
	return compare(records, assignmentIDs,
		func(r models.GradeRecord) (string, string) { return r.AssignmentID, r.AssignmentTitle })
}

func compare(records []models.GradeRecord, ids []string, key func(models.GradeRecord) (id, label string)) []ComparisonEntry {
	type group struct {
		label string
		sum   int
		count int
	}

	groups := make(map[string]*group)
	for _, record := range records {
		id, label := key(record)
		g, ok := groups[id]
		if !ok {
			g = &group{label: label}
			groups[id] = g
		}
		g.sum += record.AssignedGrade
		g.count++
	}

	entries := make([]ComparisonEntry, 0, len(ids))
	for _, id := range ids {
		g, ok := groups[id]
		if !ok {
			continue
		}
		entries = append(entries, ComparisonEntry{
			ID:           id,
			Label:        g.label,
			AverageGrade: round2(float64(g.sum) / float64(g.count)),
			TotalGraded:  g.count,
		})
	}

	return entries
}

// TrendPeriod names the lookback window for trend queries.
type TrendPeriod string

const (
	// PeriodWeek covers the last 7 days.
	PeriodWeek TrendPeriod = "week"
	// PeriodMonth covers the last 30 days.
	PeriodMonth TrendPeriod = "month"
	// PeriodSemester covers the last 120 days.
	PeriodSemester TrendPeriod = "semester"
	// PeriodAll applies no time cutoff.
	PeriodAll TrendPeriod = "all"
)

// TrendDirection classifies how grades moved across the window.
type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendDeclining        TrendDirection = "declining"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
	TrendNoData           TrendDirection = "no_data"
)

// TrendPoint is one graded record on the trend chart.
type TrendPoint struct {
	Date       time.Time `json:"date"`
	Grade      int       `json:"grade"`
	Assignment string    `json:"assignment"`
}

// TrendOverPeriod filters records to the period's lookback window (relative
// to now), orders them chronologically and classifies the overall movement:
// with at least three points, the average of the last third is compared to
// the average of the first third, and a shift of more than five points in
// either direction counts as improving or declining.
func TrendOverPeriod(records []models.GradeRecord, period TrendPeriod, now time.Time) ([]TrendPoint, TrendDirection) {
	var cutoff time.Time
	switch period {
	case PeriodWeek:
		cutoff = now.AddDate(0, 0, -7)
	case PeriodMonth:
		cutoff = now.AddDate(0, 0, -30)
	case PeriodSemester:
		cutoff = now.AddDate(0, 0, -120)
	}

	filtered := make([]models.GradeRecord, 0, len(records))
	for _, record := range records {
		if !cutoff.IsZero() && record.GradedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].GradedAt.Before(filtered[j].GradedAt)
	})

	points := make([]TrendPoint, 0, len(filtered))
	for _, record := range filtered {
		points = append(points, TrendPoint{
			Date:       record.GradedAt,
			Grade:      record.AssignedGrade,
			Assignment: record.AssignmentTitle,
		})
	}

	return points, classifyTrend(points)
}

func classifyTrend(points []TrendPoint) TrendDirection {
	if len(points) == 0 {
		return TrendNoData
	}
	if len(points) < 3 {
		return TrendInsufficientData
	}

	third := len(points) / 3
	firstSum, lastSum := 0, 0
	for _, point := range points[:third] {
		firstSum += point.Grade
	}
	for _, point := range points[len(points)-third:] {
		lastSum += point.Grade
	}

	firstAvg := float64(firstSum) / float64(third)
	lastAvg := float64(lastSum) / float64(third)

	switch {
	case lastAvg > firstAvg+5:
		return TrendImproving
	case lastAvg < firstAvg-5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// RecentActivity returns the limit most recent records, newest first. Ties on
// the timestamp keep their original input order.
func RecentActivity(records []models.GradeRecord, limit int) []models.GradeRecord {
	if limit <= 0 {
		return []models.GradeRecord{}
	}

	sorted := append([]models.GradeRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GradedAt.After(sorted[j].GradedAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return sorted
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
