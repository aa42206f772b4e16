package models

// Course is a catalogue entry owned by the course service.
type Course struct {
	ID           int64   `db:"id" json:"-"`
	CourseID     string  `db:"course_id" json:"courseId"`
	CourseNumber string  `db:"course_number" json:"courseNumber"`
	CourseName   string  `db:"course_name" json:"courseName"`
	NumHours     int     `db:"num_hours" json:"numHours"`
	NumCredits   float64 `db:"num_credits" json:"numCredits"`
	Department   string  `db:"department" json:"department"`
}

// CourseSchema creates the courses table.
const CourseSchema = `CREATE TABLE IF NOT EXISTS courses (
    id BIGSERIAL PRIMARY KEY,
    course_id VARCHAR(36) NOT NULL UNIQUE,
    course_number VARCHAR(32) NOT NULL,
    course_name VARCHAR(255) NOT NULL,
    num_hours INTEGER NOT NULL,
    num_credits NUMERIC(4,2) NOT NULL,
    department VARCHAR(255)
)`

// CourseSnapshot is the course projection returned by the course service.
type CourseSnapshot struct {
	CourseID     string  `json:"courseId"`
	CourseNumber string  `json:"courseNumber"`
	CourseName   string  `json:"courseName"`
	NumHours     int     `json:"numHours"`
	NumCredits   float64 `json:"numCredits"`
	Department   string  `json:"department"`
}
