package service

import (
	"github.com/noah-isme/campus-enrollments/internal/dto"
	"github.com/noah-isme/campus-enrollments/internal/models"
)

// requestContext carries one orchestration call through its stages. It is
// passed by value and each stage returns an extended copy.
type requestContext struct {
	request dto.EnrollmentRequest
	student *models.StudentSnapshot
	course  *models.CourseSnapshot
}

func newRequestContext(req dto.EnrollmentRequest) requestContext {
	return requestContext{request: req}
}

func (rc requestContext) withStudent(student *models.StudentSnapshot) requestContext {
	rc.student = student
	return rc
}

func (rc requestContext) withCourse(course *models.CourseSnapshot) requestContext {
	rc.course = course
	return rc
}

func (rc requestContext) confirmed() bool {
	return rc.student != nil && rc.course != nil
}

// assemble builds the record to persist. Only called after validation, so the
// optional request fields are present.
func (rc requestContext) assemble(id int64, enrollmentID string) models.Enrollment {
	return models.Enrollment{
		ID:             id,
		EnrollmentID:   enrollmentID,
		StudentID:      rc.request.StudentID,
		CourseID:       rc.request.CourseID,
		Semester:       *rc.request.Semester,
		EnrollmentYear: *rc.request.EnrollmentYear,
	}
}
