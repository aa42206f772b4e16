package service

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-enrollments/internal/dto"
	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

const (
	minEnrollmentYear = 2000
	identifierLength  = 36

	invalidStudentIDFormat = "Invalid student ID format must be 36 characters"
	invalidCourseIDFormat  = "Invalid course ID format must be 36 characters"
)

// enrollmentRule is one ordered check; failure returns the rule's error.
type enrollmentRule struct {
	name  string
	check func(v *validator.Validate, req dto.EnrollmentRequest, now time.Time) error
}

var enrollmentRules = []enrollmentRule{
	{name: "student_id_present", check: func(v *validator.Validate, req dto.EnrollmentRequest, _ time.Time) error {
		return ruleError(v.Var(req.StudentID, "required"), appErrors.ErrMissingStudentID)
	}},
	{name: "student_id_length", check: func(v *validator.Validate, req dto.EnrollmentRequest, _ time.Time) error {
		return ruleError(v.Var(req.StudentID, fmt.Sprintf("len=%d", identifierLength)), appErrors.InvalidStudentID(invalidStudentIDFormat))
	}},
	{name: "course_id_present", check: func(v *validator.Validate, req dto.EnrollmentRequest, _ time.Time) error {
		return ruleError(v.Var(req.CourseID, "required"), appErrors.ErrMissingCourseID)
	}},
	{name: "course_id_length", check: func(v *validator.Validate, req dto.EnrollmentRequest, _ time.Time) error {
		return ruleError(v.Var(req.CourseID, fmt.Sprintf("len=%d", identifierLength)), appErrors.InvalidCourseID(invalidCourseIDFormat))
	}},
	{name: "semester_present", check: func(v *validator.Validate, req dto.EnrollmentRequest, _ time.Time) error {
		// Presence only: an explicit empty semester is stored as given.
		return ruleError(v.Var(req.Semester, "required"), appErrors.ErrMissingSemester)
	}},
	{name: "enrollment_year_range", check: func(v *validator.Validate, req dto.EnrollmentRequest, now time.Time) error {
		if req.EnrollmentYear == nil {
			return appErrors.ErrInvalidEnrollmentYear
		}
		tag := fmt.Sprintf("min=%d,max=%d", minEnrollmentYear, now.Year()+1)
		return ruleError(v.Var(*req.EnrollmentYear, tag), appErrors.ErrInvalidEnrollmentYear)
	}},
}

// validateEnrollment applies the rules in order and reports the first failure.
func validateEnrollment(v *validator.Validate, req dto.EnrollmentRequest, now time.Time) error {
	for _, rule := range enrollmentRules {
		if err := rule.check(v, req, now); err != nil {
			return err
		}
	}
	return nil
}

func ruleError(err error, failure *appErrors.Error) error {
	if err == nil {
		return nil
	}
	return failure
}
