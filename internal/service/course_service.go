package service

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-enrollments/internal/dto"
	"github.com/noah-isme/campus-enrollments/internal/models"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

type courseRepository interface {
	Stream(ctx context.Context) iter.Seq2[models.Course, error]
	FindByCourseID(ctx context.Context, courseID string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// courseFieldErrors maps the first failing field/tag pair to its error. A
// present but blank string counts as missing.
var courseFieldErrors = map[string]*appErrors.Error{
	"CourseNumber.required": appErrors.ErrMissingCourseNumber,
	"CourseNumber.min":      appErrors.ErrMissingCourseNumber,
	"CourseName.required":   appErrors.ErrMissingCourseName,
	"CourseName.min":        appErrors.ErrMissingCourseName,
	"NumCredits.required":   appErrors.ErrMissingNumCredits,
	"NumCredits.gt":         appErrors.ErrInvalidCredits,
	"NumHours.required":     appErrors.ErrMissingNumHours,
	"NumHours.gt":           appErrors.ErrInvalidHours,
}

var errCourseStreamConsumed = appErrors.Clone(appErrors.ErrInternal, "course stream already consumed")

// CourseService manages the course catalogue.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	newID     func() string
}

// NewCourseService constructs CourseService. cache may be nil.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger, newID: uuid.NewString}
}

// List streams the catalogue in store order. Single use.
func (s *CourseService) List(ctx context.Context) iter.Seq2[dto.CourseResponse, error] {
	var consumed atomic.Bool
	return func(yield func(dto.CourseResponse, error) bool) {
		if consumed.Swap(true) {
			yield(dto.CourseResponse{}, errCourseStreamConsumed)
			return
		}
		for course, err := range s.repo.Stream(ctx) {
			if err != nil {
				s.logger.Error("stream courses", zap.Error(err))
				yield(dto.CourseResponse{}, internalError(err, "failed to list courses"))
				return
			}
			if !yield(dto.NewCourseResponse(course), nil) {
				return
			}
		}
	}
}

// Get returns one course, served from cache when enabled. A fill racing an
// Update or Delete may write back the pre-write value; it lives until the TTL.
func (s *CourseService) Get(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	var cached dto.CourseResponse
	if s.cache.Get(ctx, courseCacheKey(courseID), &cached) {
		return &cached, nil
	}

	course, err := s.find(ctx, courseID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCourseResponse(*course)
	s.cache.Set(ctx, courseCacheKey(courseID), resp)
	return &resp, nil
}

// Create validates and stores a new course under a generated id.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	course := buildCourse(0, s.newID(), req)
	if err := s.repo.Create(ctx, &course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

// Update overwrites an existing course in place.
func (s *CourseService) Update(ctx context.Context, courseID string, req dto.CourseRequest) (*dto.CourseResponse, error) {
	existing, err := s.find(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	course := buildCourse(existing.ID, existing.CourseID, req)
	if err := s.repo.Update(ctx, &course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.CourseNotFound(courseID)
		}
		return nil, internalError(err, "failed to update course")
	}
	s.cache.Invalidate(ctx, courseCacheKey(courseID))
	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

// Delete removes a course and returns it as it was.
func (s *CourseService) Delete(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	existing, err := s.find(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.CourseNotFound(courseID)
		}
		return nil, internalError(err, "failed to delete course")
	}
	s.cache.Invalidate(ctx, courseCacheKey(courseID))
	resp := dto.NewCourseResponse(*existing)
	return &resp, nil
}

func (s *CourseService) find(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.repo.FindByCourseID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.CourseNotFound(courseID)
		}
		return nil, internalError(err, "failed to load course")
	}
	return course, nil
}

// validate reports the first violation in field declaration order.
func (s *CourseService) validate(req dto.CourseRequest) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		if mapped, ok := courseFieldErrors[first.StructField()+"."+first.Tag()]; ok {
			return mapped
		}
		return appErrors.InvalidInput(first.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid course payload")
}

func buildCourse(id int64, courseID string, req dto.CourseRequest) models.Course {
	return models.Course{
		ID:           id,
		CourseID:     courseID,
		CourseNumber: *req.CourseNumber,
		CourseName:   *req.CourseName,
		NumHours:     *req.NumHours,
		NumCredits:   *req.NumCredits,
		Department:   req.Department,
	}
}

func courseCacheKey(courseID string) string {
	return "course:" + courseID
}
