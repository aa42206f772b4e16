package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones with custom
// messages still match their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Validation failures.
var (
	ErrMissingStudentID      = New("MISSING_STUDENT_ID", http.StatusUnprocessableEntity, "Student ID is required")
	ErrInvalidStudentID      = New("INVALID_STUDENT_ID", http.StatusUnprocessableEntity, "Invalid student ID")
	ErrMissingCourseID       = New("MISSING_COURSE_ID", http.StatusUnprocessableEntity, "Course ID is required")
	ErrInvalidCourseID       = New("INVALID_COURSE_ID", http.StatusUnprocessableEntity, "Invalid course ID")
	ErrMissingSemester       = New("MISSING_SEMESTER", http.StatusUnprocessableEntity, "Semester is required")
	ErrInvalidEnrollmentYear = New("INVALID_ENROLLMENT_YEAR", http.StatusUnprocessableEntity, "Invalid enrollment year")
	ErrInvalidInput          = New("INVALID_INPUT", http.StatusUnprocessableEntity, "invalid input")

	ErrMissingCourseNumber = New("MISSING_COURSE_NUMBER", http.StatusUnprocessableEntity, "Course number is required")
	ErrMissingCourseName   = New("MISSING_COURSE_NAME", http.StatusUnprocessableEntity, "Course name is required")
	ErrMissingNumCredits   = New("MISSING_NUM_CREDITS", http.StatusUnprocessableEntity, "Number of credits is required")
	ErrInvalidCredits      = New("INVALID_COURSE_CREDITS", http.StatusUnprocessableEntity, "Course credits must be positive")
	ErrMissingNumHours     = New("MISSING_NUM_HOURS", http.StatusUnprocessableEntity, "Number of hours is required")
	ErrInvalidHours        = New("INVALID_COURSE_HOURS", http.StatusUnprocessableEntity, "Course hours must be positive")
)

// Lookup and infrastructure failures.
var (
	ErrEnrollmentNotFound  = New("ENROLLMENT_NOT_FOUND", http.StatusNotFound, "enrollment not found")
	ErrStudentNotFound     = New("STUDENT_NOT_FOUND", http.StatusNotFound, "student not found")
	ErrCourseNotFound      = New("COURSE_NOT_FOUND", http.StatusNotFound, "course not found")
	ErrUpstreamUnavailable = New("UPSTREAM_UNAVAILABLE", http.StatusServiceUnavailable, "upstream service unavailable")
	ErrBadRequest          = New("BAD_REQUEST", http.StatusBadRequest, "malformed request body")
	ErrRateLimited         = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// EnrollmentNotFound reports a store miss for the given enrollment id.
func EnrollmentNotFound(enrollmentID string) *Error {
	return Clone(ErrEnrollmentNotFound, "Enrollment id not found: "+enrollmentID)
}

// StudentNotFound reports that the student service has no such student.
func StudentNotFound(studentID string) *Error {
	return Clone(ErrStudentNotFound, "Student id not found: "+studentID)
}

// CourseNotFound reports that the course service has no such course.
func CourseNotFound(courseID string) *Error {
	return Clone(ErrCourseNotFound, "Course id not found: "+courseID)
}

// InvalidStudentID carries either a format message or the rejected id.
func InvalidStudentID(detail string) *Error {
	return Clone(ErrInvalidStudentID, detail)
}

// InvalidCourseID carries either a format message or the rejected id.
func InvalidCourseID(detail string) *Error {
	return Clone(ErrInvalidCourseID, detail)
}

// InvalidInput reports a malformed path identifier.
func InvalidInput(message string) *Error {
	return Clone(ErrInvalidInput, message)
}

// UpstreamUnavailable wraps a transport failure talking to a peer service.
func UpstreamUnavailable(service string, err error) *Error {
	return Wrap(err, ErrUpstreamUnavailable.Code, ErrUpstreamUnavailable.Status, service+" service unavailable")
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
