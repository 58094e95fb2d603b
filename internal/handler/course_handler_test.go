package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/dteguh/gradeflow-api/internal/handler"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
)

type mockClassroom struct {
	courses     []classroom.Course
	assignments []classroom.Assignment
	err         error
}

func (m *mockClassroom) ListCourses(_ context.Context) ([]classroom.Course, error) {
	return m.courses, m.err
}

func (m *mockClassroom) ListAssignments(_ context.Context, _ string) ([]classroom.Assignment, error) {
	return m.assignments, m.err
}

func (m *mockClassroom) ListSubmissions(_ context.Context, _, _ string) ([]classroom.Submission, error) {
	return nil, m.err
}

func newCourseApp(client *mockClassroom) *fiber.App {
	app := fiber.New()
	handler.NewCourseHandler(client, testLogger()).Register(app.Group("/api/v1/courses"))
	return app
}

func TestCourseHandler_ListCourses(t *testing.T) {
	client := &mockClassroom{courses: []classroom.Course{{ID: "c1", Name: "Biology"}}}
	app := newCourseApp(client)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []classroom.Course `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 1)
	require.Equal(t, "Biology", response.Data[0].Name)
}

func TestCourseHandler_UnauthorizedResetsConnection(t *testing.T) {
	client := &mockClassroom{err: classroom.ErrUnauthorized}
	app := newCourseApp(client)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/courses/c1/assignments", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
