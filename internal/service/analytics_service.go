package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dteguh/gradeflow-api/internal/analytics"
	"github.com/dteguh/gradeflow-api/internal/dto"
	"github.com/dteguh/gradeflow-api/internal/repository"
)

const recentActivityLimit = 10

// ErrNoStudentHistory indicates the student has no graded work in the course.
var ErrNoStudentHistory = errors.New("no grading history for student in course")

// AnalyticsService aggregates grading history for the instructor dashboard.
type AnalyticsService interface {
	Summary(ctx context.Context) (dto.AnalyticsSummaryResponse, error)
	CourseStudents(ctx context.Context, courseID string) (dto.CourseStudentsResponse, error)
	StudentDetail(ctx context.Context, courseID, studentName string) (dto.StudentDetailResponse, error)
	Compare(ctx context.Context, compareType string, ids []string) (dto.ComparisonResponse, error)
	Trends(ctx context.Context, query dto.TrendsQuery) (dto.TrendsResponse, error)
}

type analyticsService struct {
	repo     repository.GradeHistoryRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs the analytics service. The cache client may
// be nil, in which case every summary is recomputed.
func NewAnalyticsService(repo repository.GradeHistoryRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *analyticsService) Summary(ctx context.Context) (dto.AnalyticsSummaryResponse, error) {
	const cacheKey = "analytics:summary"
	tracer := otel.Tracer("github.com/dteguh/gradeflow-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.summary")
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AnalyticsSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
	}

	records, err := s.repo.List(ctx, repository.HistoryFilter{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "history_query_failed")
		return dto.AnalyticsSummaryResponse{}, err
	}

	grades := make([]float64, 0, len(records))
	for _, record := range records {
		grades = append(grades, float64(record.AssignedGrade))
	}

	summary := dto.AnalyticsSummaryResponse{
		TotalGraded:       len(records),
		Overall:           analytics.ComputeStats(grades),
		GradeDistribution: analytics.BucketDistribution(records),
		Courses:           analytics.GroupByCourse(records),
		RecentActivity:    analytics.RecentActivity(records, recentActivityLimit),
		GeneratedAt:       s.now().UTC(),
	}
	span.SetAttributes(attribute.Int("analytics.record_count", len(records)))

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func (s *analyticsService) CourseStudents(ctx context.Context, courseID string) (dto.CourseStudentsResponse, error) {
	records, err := s.repo.List(ctx, repository.HistoryFilter{CourseID: courseID})
	if err != nil {
		return dto.CourseStudentsResponse{}, err
	}

	return dto.CourseStudentsResponse{
		CourseID: courseID,
		Students: analytics.GroupByStudent(records),
	}, nil
}

func (s *analyticsService) StudentDetail(ctx context.Context, courseID, studentName string) (dto.StudentDetailResponse, error) {
	records, err := s.repo.List(ctx, repository.HistoryFilter{CourseID: courseID, StudentName: studentName})
	if err != nil {
		return dto.StudentDetailResponse{}, err
	}

	if len(records) == 0 {
		return dto.StudentDetailResponse{}, ErrNoStudentHistory
	}

	students := analytics.GroupByStudent(records)
	student := students[0]

	return dto.StudentDetailResponse{
		CourseID:    courseID,
		StudentName: studentName,
		Stats:       student.Stats,
		Trend:       student.Assignments,
		Records:     records,
	}, nil
}

// Compare reduces the requested courses or assignments to their grade
// averages. compareType has already been checked by the handler.
func (s *analyticsService) Compare(ctx context.Context, compareType string, ids []string) (dto.ComparisonResponse, error) {
	tracer := otel.Tracer("github.com/dteguh/gradeflow-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.compare", trace.WithAttributes(
		attribute.String("analytics.compare_type", compareType),
		attribute.Int("analytics.compare_ids", len(ids)),
	))
	defer span.End()

	records, err := s.repo.List(ctx, repository.HistoryFilter{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "history_query_failed")
		return dto.ComparisonResponse{}, err
	}

	var data []analytics.ComparisonEntry
	if compareType == "assignments" {
		data = analytics.CompareAssignments(records, ids)
	} else {
		data = analytics.CompareCourses(records, ids)
	}

	return dto.ComparisonResponse{Type: compareType, Data: data}, nil
}

// Trends returns the chronological grade series within the query's lookback
// window, optionally narrowed to one course or student.
func (s *analyticsService) Trends(ctx context.Context, query dto.TrendsQuery) (dto.TrendsResponse, error) {
	records, err := s.repo.List(ctx, repository.HistoryFilter{
		CourseID:    query.CourseID,
		StudentName: query.StudentName,
	})
	if err != nil {
		return dto.TrendsResponse{}, err
	}

	points, direction := analytics.TrendOverPeriod(records, analytics.TrendPeriod(query.Period), s.now())

	return dto.TrendsResponse{
		TrendData:       points,
		OverallTrend:    direction,
		TotalDataPoints: len(points),
	}, nil
}
