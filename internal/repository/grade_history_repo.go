package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dteguh/gradeflow-api/internal/models"
)

// HistoryFilter narrows grade history queries. Empty fields match everything.
type HistoryFilter struct {
	CourseID     string
	AssignmentID string
	StudentName  string
}

// GradeHistoryRepository defines data operations for the append-only grade
// history store.
type GradeHistoryRepository interface {
	Create(ctx context.Context, record *models.GradeRecord) error
	List(ctx context.Context, filter HistoryFilter) ([]models.GradeRecord, error)
}

type gradeHistoryRepository struct {
	db *gorm.DB
}

// NewGradeHistoryRepository instantiates the repository.
func NewGradeHistoryRepository(db *gorm.DB) GradeHistoryRepository {
	return &gradeHistoryRepository{db: db}
}

func (r *gradeHistoryRepository) Create(ctx context.Context, record *models.GradeRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gradeHistoryRepository) List(ctx context.Context, filter HistoryFilter) ([]models.GradeRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.GradeRecord{})

	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}

	if filter.AssignmentID != "" {
		query = query.Where("assignment_id = ?", filter.AssignmentID)
	}

	if filter.StudentName != "" {
		query = query.Where("student_name = ?", filter.StudentName)
	}

	var records []models.GradeRecord
	if err := query.Order("graded_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
