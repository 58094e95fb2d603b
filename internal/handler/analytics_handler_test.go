package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/dteguh/gradeflow-api/internal/analytics"
	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/handler"
	"github.com/dteguh/gradeflow-api/internal/service"
)

type mockAnalyticsService struct {
	summary    dto.AnalyticsSummaryResponse
	students   dto.CourseStudentsResponse
	detail     dto.StudentDetailResponse
	comparison dto.ComparisonResponse
	trends     dto.TrendsResponse
	summaryErr error
	detailErr  error

	lastCourseID    string
	lastStudent     string
	lastCompareType string
	lastCompareIDs  []string
	lastTrendsQuery dto.TrendsQuery
}

func (m *mockAnalyticsService) Summary(_ context.Context) (dto.AnalyticsSummaryResponse, error) {
	return m.summary, m.summaryErr
}

func (m *mockAnalyticsService) CourseStudents(_ context.Context, courseID string) (dto.CourseStudentsResponse, error) {
	m.lastCourseID = courseID
	return m.students, nil
}

func (m *mockAnalyticsService) StudentDetail(_ context.Context, courseID, studentName string) (dto.StudentDetailResponse, error) {
	m.lastCourseID = courseID
	m.lastStudent = studentName
	return m.detail, m.detailErr
}

func (m *mockAnalyticsService) Compare(_ context.Context, compareType string, ids []string) (dto.ComparisonResponse, error) {
	m.lastCompareType = compareType
	m.lastCompareIDs = ids
	return m.comparison, nil
}

func (m *mockAnalyticsService) Trends(_ context.Context, query dto.TrendsQuery) (dto.TrendsResponse, error) {
	m.lastTrendsQuery = query
	return m.trends, nil
}

func newAnalyticsApp(svc service.AnalyticsService) *fiber.App {
	app := fiber.New()
	handler.NewAnalyticsHandler(svc, testLogger()).Register(app.Group("/api/v1/analytics"))
	return app
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	svc := &mockAnalyticsService{summary: dto.AnalyticsSummaryResponse{
		TotalGraded:       5,
		Overall:           analytics.Stats{Count: 5, Mean: 80.4},
		GradeDistribution: map[string]int{"0-50": 0, "51-70": 1, "71-85": 3, "86-100": 1},
	}}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                         `json:"success"`
		Data    dto.AnalyticsSummaryResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, 5, response.Data.TotalGraded)
	require.Equal(t, 3, response.Data.GradeDistribution["71-85"])
}

func TestAnalyticsHandler_CourseStudents(t *testing.T) {
	svc := &mockAnalyticsService{students: dto.CourseStudentsResponse{
		CourseID: "c1",
		Students: []analytics.StudentStats{{StudentName: "Ana"}},
	}}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/courses/c1/students", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "c1", svc.lastCourseID)
}

func TestAnalyticsHandler_CompareSplitsIDs(t *testing.T) {
	svc := &mockAnalyticsService{comparison: dto.ComparisonResponse{
		Type: "courses",
		Data: []analytics.ComparisonEntry{{ID: "c1", Label: "Biology", AverageGrade: 82.5, TotalGraded: 4}},
	}}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/compare?type=courses&ids=c1,%20c2,", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "courses", svc.lastCompareType)
	require.Equal(t, []string{"c1", "c2"}, svc.lastCompareIDs)

	var response struct {
		Data dto.ComparisonResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data.Data, 1)
	require.Equal(t, 82.5, response.Data.Data[0].AverageGrade)
}

func TestAnalyticsHandler_CompareRejectsUnknownType(t *testing.T) {
	svc := &mockAnalyticsService{}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/compare?type=students&ids=a", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.lastCompareType)
}

func TestAnalyticsHandler_TrendsDefaultsPeriod(t *testing.T) {
	svc := &mockAnalyticsService{trends: dto.TrendsResponse{OverallTrend: analytics.TrendNoData}}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trends?course_id=c1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "all", svc.lastTrendsQuery.Period)
	require.Equal(t, "c1", svc.lastTrendsQuery.CourseID)
}

func TestAnalyticsHandler_TrendsRejectsUnknownPeriod(t *testing.T) {
	svc := &mockAnalyticsService{}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trends?period=decade", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAnalyticsHandler_StudentDetailNotFound(t *testing.T) {
	svc := &mockAnalyticsService{detailErr: service.ErrNoStudentHistory}
	app := newAnalyticsApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/courses/c1/students/Ana", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Ana", svc.lastStudent)
}
