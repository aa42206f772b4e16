package dto

import "github.com/noah-isme/campus-enrollments/internal/models"

// EnrollmentRequest is the create/update payload. Semester and EnrollmentYear are
// pointers so an absent field is distinguishable from a zero value.
type EnrollmentRequest struct {
	StudentID      string           `json:"studentId"`
	CourseID       string           `json:"courseId"`
	Semester       *models.Semester `json:"semester"`
	EnrollmentYear *int             `json:"enrollmentYear"`
}

// EnrollmentResponse is the externally visible projection of an enrollment.
type EnrollmentResponse struct {
	EnrollmentID   string          `json:"enrollmentId"`
	StudentID      string          `json:"studentId"`
	CourseID       string          `json:"courseId"`
	Semester       models.Semester `json:"semester"`
	EnrollmentYear int             `json:"enrollmentYear"`
}

// NewEnrollmentResponse maps a stored enrollment to its response.
func NewEnrollmentResponse(e models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID:   e.EnrollmentID,
		StudentID:      e.StudentID,
		CourseID:       e.CourseID,
		Semester:       e.Semester,
		EnrollmentYear: e.EnrollmentYear,
	}
}
