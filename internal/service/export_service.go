package service

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-enrollments/internal/dto"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
	"github.com/noah-isme/campus-enrollments/pkg/export"
)

type enrollmentLister interface {
	List(ctx context.Context) iter.Seq2[dto.EnrollmentResponse, error]
}

// ExportFile is a rendered roster ready to be served as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the enrollment roster as CSV or PDF.
type ExportService struct {
	enrollments enrollmentLister
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs ExportService.
func NewExportService(enrollments enrollmentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{enrollments: enrollments, logger: logger, now: time.Now}
}

// Roster renders every enrollment in the requested format.
func (s *ExportService) Roster(ctx context.Context, format string) (*ExportFile, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.InvalidInput(err.Error())
	}

	dataset, err := s.buildRosterDataset(ctx)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render enrollment roster", zap.String("format", renderer.Extension()), zap.Error(err))
		return nil, internalError(err, "failed to render enrollment roster")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("enrollments-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) buildRosterDataset(ctx context.Context) (export.Dataset, error) {
	dataset := export.Dataset{
		Title:   "Enrollment Roster",
		Headers: []string{"Enrollment ID", "Student ID", "Course ID", "Semester", "Year"},
	}
	for enrollment, err := range s.enrollments.List(ctx) {
		if err != nil {
			return export.Dataset{}, err
		}
		dataset.Rows = append(dataset.Rows, []string{
			enrollment.EnrollmentID,
			enrollment.StudentID,
			enrollment.CourseID,
			string(enrollment.Semester),
			strconv.Itoa(enrollment.EnrollmentYear),
		})
	}
	return dataset, nil
}
