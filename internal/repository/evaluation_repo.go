package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vittoclass/libel-IA/internal/models"
)

// EvaluationRepository defines data operations for persisted evaluations.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	ListByStudent(ctx context.Context, student string) ([]models.Evaluation, error)
	ListAll(ctx context.Context) ([]models.Evaluation, error)
	Delete(ctx context.Context, id uint) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).First(&evaluation, id).Error; err != nil {
		return models.Evaluation{}, err
	}

	return evaluation, nil
}

// ListByStudent matches the student name case-insensitively and partially,
// newest first.
func (r *evaluationRepository) ListByStudent(ctx context.Context, student string) ([]models.Evaluation, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(student)) + "%"

	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).
		Where("LOWER(estudiante) LIKE ?", pattern).
		Order("fecha DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *evaluationRepository) ListAll(ctx context.Context) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).
		Order("fecha DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *evaluationRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Evaluation{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
