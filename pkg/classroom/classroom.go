// Package classroom is a thin client for the external classroom platform API
// that owns courses, assignments and student submissions. The data it returns
// is read only for this service.
package classroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnauthorized indicates the platform rejected our credentials. Callers
// are expected to escalate this into a full session reset rather than report
// it inline.
var ErrUnauthorized = errors.New("classroom: unauthorized")

// Course is one course the instructor teaches.
type Course struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section,omitempty"`
}

// Assignment is one piece of coursework within a course.
type Assignment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Attachment references an externally hosted document turned in with a
// submission.
type Attachment struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Submission is one student's turned-in work for one assignment.
type Submission struct {
	ID          string       `json:"id"`
	StudentName string       `json:"student_name"`
	State       string       `json:"state"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Config holds connection settings for the classroom platform.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the classroom platform REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// New constructs a classroom client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("classroom base url must be provided")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "classroom").Logger(),
	}, nil
}

// ListCourses returns the courses visible to the authenticated instructor.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.get(ctx, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListAssignments returns the assignments of one course.
func (c *Client) ListAssignments(ctx context.Context, courseID string) ([]Assignment, error) {
	var assignments []Assignment
	path := fmt.Sprintf("/courses/%s/assignments", url.PathEscape(courseID))
	if err := c.get(ctx, path, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListSubmissions returns every submission for one assignment. The list is
// stable for the lifetime of a grading session.
func (c *Client) ListSubmissions(ctx context.Context, courseID, assignmentID string) ([]Submission, error) {
	var submissions []Submission
	path := fmt.Sprintf("/courses/%s/assignments/%s/submissions", url.PathEscape(courseID), url.PathEscape(assignmentID))
	if err := c.get(ctx, path, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("classroom request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("classroom request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("classroom credentials rejected")
		return ErrUnauthorized
	case resp.StatusCode >= http.StatusBadRequest:
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error == "" {
			failure.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("classroom %s: %s", path, failure.Error)
	}

	// Malformed payloads become typed errors here instead of propagating
	// half-decoded values downstream.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("classroom decode %s: %w", path, err)
	}

	return nil
}
