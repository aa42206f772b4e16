package service

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-enrollments/internal/dto"
	"github.com/noah-isme/campus-enrollments/internal/models"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

type enrollmentRepository interface {
	Stream(ctx context.Context) iter.Seq2[models.Enrollment, error]
	FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id int64) error
}

// StudentLookup confirms that a student exists.
type StudentLookup interface {
	FetchByStudentID(ctx context.Context, studentID string) (*models.StudentSnapshot, error)
}

// CourseLookup confirms that a course exists.
type CourseLookup interface {
	FetchByCourseID(ctx context.Context, courseID string) (*models.CourseSnapshot, error)
}

// Orchestration stages, logged as they are reached.
const (
	stageValidating = "validating"
	stageConfirming = "confirming"
	stageAssembling = "assembling"
	stagePersisting = "persisting"
	stageDone       = "done"
	stageFailed     = "failed"
)

var errStreamConsumed = appErrors.Clone(appErrors.ErrInternal, "enrollment stream already consumed")

// EnrollmentService creates and maintains enrollments after confirming the
// referenced student and course with their owning services.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  StudentLookup
	courses   CourseLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// EnrollmentOption customises an EnrollmentService.
type EnrollmentOption func(*EnrollmentService)

// WithClock overrides the clock used for the enrollment year window.
func WithClock(now func() time.Time) EnrollmentOption {
	return func(s *EnrollmentService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides enrollment id generation.
func WithIDGenerator(newID func() string) EnrollmentOption {
	return func(s *EnrollmentService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students StudentLookup, courses CourseLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, opts ...EnrollmentOption) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EnrollmentService{
		repo:      repo,
		students:  students,
		courses:   courses,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// List streams every enrollment in store order. The returned sequence may be
// ranged over once; a second pass yields a single error.
func (s *EnrollmentService) List(ctx context.Context) iter.Seq2[dto.EnrollmentResponse, error] {
	var consumed atomic.Bool
	return func(yield func(dto.EnrollmentResponse, error) bool) {
		if consumed.Swap(true) {
			yield(dto.EnrollmentResponse{}, errStreamConsumed)
			return
		}
		for enrollment, err := range s.repo.Stream(ctx) {
			if err != nil {
				s.logger.Error("stream enrollments", zap.Error(err))
				yield(dto.EnrollmentResponse{}, internalError(err, "failed to list enrollments"))
				return
			}
			if !yield(dto.NewEnrollmentResponse(enrollment), nil) {
				return
			}
		}
	}
}

// Get returns one enrollment by its public id.
func (s *EnrollmentService) Get(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error) {
	existing, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEnrollmentResponse(*existing)
	return &resp, nil
}

// Create validates the request, confirms student and course, and stores a new
// enrollment with a freshly generated id.
func (s *EnrollmentService) Create(ctx context.Context, req dto.EnrollmentRequest) (resp *dto.EnrollmentResponse, err error) {
	defer s.track("create", &err)()

	rc, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	s.stage(ctx, stageAssembling)
	enrollment := rc.assemble(0, s.newID())

	s.stage(ctx, stagePersisting)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &enrollment); err != nil {
		return nil, internalError(err, "failed to create enrollment")
	}

	s.stage(ctx, stageDone, zap.String("enrollment_id", enrollment.EnrollmentID))
	out := dto.NewEnrollmentResponse(enrollment)
	return &out, nil
}

// Update replaces the mutable fields of an existing enrollment. The storage id
// and enrollment id are preserved.
func (s *EnrollmentService) Update(ctx context.Context, enrollmentID string, req dto.EnrollmentRequest) (resp *dto.EnrollmentResponse, err error) {
	defer s.track("update", &err)()

	existing, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	rc, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	s.stage(ctx, stageAssembling)
	enrollment := rc.assemble(existing.ID, existing.EnrollmentID)

	s.stage(ctx, stagePersisting)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &enrollment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.EnrollmentNotFound(enrollmentID)
		}
		return nil, internalError(err, "failed to update enrollment")
	}

	s.stage(ctx, stageDone, zap.String("enrollment_id", enrollment.EnrollmentID))
	out := dto.NewEnrollmentResponse(enrollment)
	return &out, nil
}

// Delete removes an enrollment and returns it as it was before removal.
func (s *EnrollmentService) Delete(ctx context.Context, enrollmentID string) (resp *dto.EnrollmentResponse, err error) {
	defer s.track("delete", &err)()

	existing, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.EnrollmentNotFound(enrollmentID)
		}
		return nil, internalError(err, "failed to delete enrollment")
	}
	out := dto.NewEnrollmentResponse(*existing)
	return &out, nil
}

// prepare runs validation and the student/course confirmation.
func (s *EnrollmentService) prepare(ctx context.Context, req dto.EnrollmentRequest) (requestContext, error) {
	rc := newRequestContext(req)

	s.stage(ctx, stageValidating)
	if err := validateEnrollment(s.validator, req, s.now()); err != nil {
		s.stage(ctx, stageFailed, zap.Error(err))
		return rc, err
	}

	s.stage(ctx, stageConfirming, zap.String("student_id", req.StudentID), zap.String("course_id", req.CourseID))
	rc, err := s.confirm(ctx, rc)
	if err != nil {
		s.stage(ctx, stageFailed, zap.Error(err))
		return rc, err
	}
	return rc, nil
}

// confirm looks up the student and the course concurrently. Both must succeed;
// the first failure cancels the other lookup and is the one reported.
func (s *EnrollmentService) confirm(ctx context.Context, rc requestContext) (requestContext, error) {
	var (
		student *models.StudentSnapshot
		course  *models.CourseSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.students.FetchByStudentID(gctx, rc.request.StudentID)
		if err != nil {
			return err
		}
		student = found
		return nil
	})
	g.Go(func() error {
		found, err := s.courses.FetchByCourseID(gctx, rc.request.CourseID)
		if err != nil {
			return err
		}
		course = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return rc, err
	}

	rc = rc.withStudent(student).withCourse(course)
	if !rc.confirmed() {
		return rc, appErrors.Clone(appErrors.ErrInternal, "student or course confirmation incomplete")
	}
	return rc, nil
}

func (s *EnrollmentService) find(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	existing, err := s.repo.FindByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.EnrollmentNotFound(enrollmentID)
		}
		return nil, internalError(err, "failed to load enrollment")
	}
	return existing, nil
}

func (s *EnrollmentService) stage(ctx context.Context, stage string, fields ...zap.Field) {
	if ce := s.logger.Check(zap.DebugLevel, "enrollment stage"); ce != nil {
		ce.Write(append([]zap.Field{zap.String("stage", stage), zap.Bool("cancelled", ctx.Err() != nil)}, fields...)...)
	}
}

// track counts the operation by its result code once it returns.
func (s *EnrollmentService) track(operation string, errp *error) func() {
	return func() {
		result := "ok"
		if *errp != nil {
			result = appErrors.FromError(*errp).Code
		}
		s.metrics.CountOperation(operation, result)
	}
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
