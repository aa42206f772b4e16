package dto

import "github.com/noah-isme/campus-enrollments/internal/models"

// CourseRequest is the create/update payload of the course service.
// Field order matches the order in which violations are reported.
type CourseRequest struct {
	CourseNumber *string  `json:"courseNumber" validate:"required,min=1"`
	CourseName   *string  `json:"courseName" validate:"required,min=1"`
	NumCredits   *float64 `json:"numCredits" validate:"required,gt=0"`
	NumHours     *int     `json:"numHours" validate:"required,gt=0"`
	Department   string   `json:"department"`
}

// CourseResponse is the externally visible projection of a course.
type CourseResponse struct {
	CourseID     string  `json:"courseId"`
	CourseNumber string  `json:"courseNumber"`
	CourseName   string  `json:"courseName"`
	NumHours     int     `json:"numHours"`
	NumCredits   float64 `json:"numCredits"`
	Department   string  `json:"department"`
}

// NewCourseResponse maps a stored course to its response.
func NewCourseResponse(c models.Course) CourseResponse {
	return CourseResponse{
		CourseID:     c.CourseID,
		CourseNumber: c.CourseNumber,
		CourseName:   c.CourseName,
		NumHours:     c.NumHours,
		NumCredits:   c.NumCredits,
		Department:   c.Department,
	}
}
