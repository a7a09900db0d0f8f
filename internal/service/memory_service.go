package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vittoclass/libel-IA/internal/dto"
	"github.com/vittoclass/libel-IA/internal/models"
	"github.com/vittoclass/libel-IA/internal/repository"
)

// ErrEvaluationNotFound indicates the stored evaluation was not located.
var ErrEvaluationNotFound = errors.New("evaluation not found")

const memoryAllCacheKey = "memoria:all"

// MemoryService manages the teacher's history of saved evaluations.
type MemoryService interface {
	Save(ctx context.Context, payload dto.SaveEvaluationRequest) (dto.EvaluationRecordResponse, error)
	ListByStudent(ctx context.Context, student string) ([]dto.EvaluationRecordResponse, error)
	ListAll(ctx context.Context) ([]dto.EvaluationRecordResponse, error)
	Delete(ctx context.Context, id uint) error
}

type memoryService struct {
	repo      repository.EvaluationRepository
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewMemoryService builds the evaluation history service. A nil cache
// client disables caching.
func NewMemoryService(repo repository.EvaluationRepository, validate *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MemoryService {
	return &memoryService{
		repo:      repo,
		validator: validate,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "memory_service").Logger(),
		now:       time.Now,
	}
}

func (s *memoryService) Save(ctx context.Context, payload dto.SaveEvaluationRequest) (dto.EvaluationRecordResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationRecordResponse{}, err
	}

	evaluation := models.Evaluation{
		Fecha:      s.now(),
		Estudiante: strings.TrimSpace(payload.Estudiante),
		Curso:      payload.Curso,
		Prueba:     payload.Prueba,
		Nota:       payload.Nota,
		Texto:      payload.Texto,
		Rubrica:    payload.Rubrica,
		Resultado:  datatypes.JSON(payload.Resultado),
	}

	if err := s.repo.Create(ctx, &evaluation); err != nil {
		return dto.EvaluationRecordResponse{}, err
	}

	s.invalidate(ctx, evaluation.Estudiante)
	s.logger.Info().Uint("evaluation_id", evaluation.ID).Str("estudiante", evaluation.Estudiante).Msg("evaluation saved")

	return dto.NewEvaluationRecordResponse(evaluation), nil
}

func (s *memoryService) ListByStudent(ctx context.Context, student string) ([]dto.EvaluationRecordResponse, error) {
	cacheKey := studentCacheKey(student)

	if cached, ok := s.readCache(ctx, cacheKey); ok {
		return cached, nil
	}

	evaluations, err := s.repo.ListByStudent(ctx, student)
	if err != nil {
		return nil, err
	}

	response := dto.NewEvaluationRecordResponseSlice(evaluations)
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *memoryService) ListAll(ctx context.Context) ([]dto.EvaluationRecordResponse, error) {
	if cached, ok := s.readCache(ctx, memoryAllCacheKey); ok {
		return cached, nil
	}

	evaluations, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	response := dto.NewEvaluationRecordResponseSlice(evaluations)
	s.writeCache(ctx, memoryAllCacheKey, response)

	return response, nil
}

func (s *memoryService) Delete(ctx context.Context, id uint) error {
	evaluation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvaluationNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvaluationNotFound
		}
		return err
	}

	s.invalidate(ctx, evaluation.Estudiante)
	s.logger.Info().Uint("evaluation_id", id).Msg("evaluation deleted")

	return nil
}

func (s *memoryService) readCache(ctx context.Context, key string) ([]dto.EvaluationRecordResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read memory cache")
		}
		return nil, false
	}

	var response []dto.EvaluationRecordResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return nil, false
	}

	s.logger.Debug().Str("key", key).Msg("memory cache hit")
	return response, true
}

func (s *memoryService) writeCache(ctx context.Context, key string, response []dto.EvaluationRecordResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store memory cache")
	}
}

func (s *memoryService) invalidate(ctx context.Context, student string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, memoryAllCacheKey, studentCacheKey(student)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate memory cache")
	}
}

func studentCacheKey(student string) string {
	return "memoria:estudiante:" + strings.ToLower(strings.TrimSpace(student))
}
