package dto

import (
	"time"

	"github.com/dteguh/gradeflow-api/internal/analytics"
	"github.com/dteguh/gradeflow-api/internal/models"
)

// AnalyticsSummaryResponse is the dashboard-wide aggregation of grading
// history.
type AnalyticsSummaryResponse struct {
	TotalGraded       int                     `json:"total_graded"`
	Overall           analytics.Stats         `json:"overall"`
	GradeDistribution map[string]int          `json:"grade_distribution"`
	Courses           []analytics.CourseStats `json:"courses"`
	RecentActivity    []models.GradeRecord    `json:"recent_activity"`
	GeneratedAt       time.Time               `json:"generated_at"`
	CacheHit          bool                    `json:"cache_hit,omitempty"`
}

// CourseStudentsResponse lists per-student aggregates within one course,
// ordered by descending mean grade.
type CourseStudentsResponse struct {
	CourseID string                   `json:"course_id"`
	Students []analytics.StudentStats `json:"students"`
}

// StudentDetailResponse is one student's performance within one course.
type StudentDetailResponse struct {
	CourseID    string                      `json:"course_id"`
	StudentName string                      `json:"student_name"`
	Stats       analytics.Stats             `json:"stats"`
	Trend       []analytics.AssignmentGrade `json:"trend"`
	Records     []models.GradeRecord        `json:"records"`
}

// CompareQuery selects the comparison dimension and the ids to compare.
type CompareQuery struct {
	Type string `query:"type"`
	IDs  string `query:"ids"`
}

// ComparisonResponse carries comparative averages for charting.
type ComparisonResponse struct {
	Type string                      `json:"type"`
	Data []analytics.ComparisonEntry `json:"data"`
}

// TrendsQuery filters the trend series by course, student and lookback window.
type TrendsQuery struct {
	CourseID    string `query:"course_id"`
	StudentName string `query:"student_name"`
	Period      string `query:"period"`
}

// TrendsResponse is the chronological grade series plus its classification.
type TrendsResponse struct {
	TrendData       []analytics.TrendPoint   `json:"trend_data"`
	OverallTrend    analytics.TrendDirection `json:"overall_trend"`
	TotalDataPoints int                      `json:"total_data_points"`
}

// HistoryQuery describes query string filters for the raw history listing.
type HistoryQuery struct {
	CourseID     string `query:"course_id"`
	AssignmentID string `query:"assignment_id"`
	StudentName  string `query:"student_name"`
}
