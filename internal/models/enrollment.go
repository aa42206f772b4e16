package models

// Semester is the academic term token carried on an enrollment. Values are
// stored as provided; the constants name the ones the registrar issues.
type Semester string

// Known semesters.
const (
	SemesterFall   Semester = "FALL"
	SemesterWinter Semester = "WINTER"
	SemesterSummer Semester = "SUMMER"
)

// Enrollment links one student to one course for a semester and year.
// ID is the storage key and never leaves the service; EnrollmentID is the
// public identifier and does not change after creation.
type Enrollment struct {
	ID             int64    `db:"id" json:"-"`
	EnrollmentID   string   `db:"enrollment_id" json:"enrollmentId"`
	StudentID      string   `db:"student_id" json:"studentId"`
	CourseID       string   `db:"course_id" json:"courseId"`
	Semester       Semester `db:"semester" json:"semester"`
	EnrollmentYear int      `db:"enrollment_year" json:"enrollmentYear"`
}

// EnrollmentSchema creates the enrollments table.
const EnrollmentSchema = `CREATE TABLE IF NOT EXISTS enrollments (
    id BIGSERIAL PRIMARY KEY,
    enrollment_id VARCHAR(36) NOT NULL UNIQUE,
    student_id VARCHAR(36) NOT NULL,
    course_id VARCHAR(36) NOT NULL,
    semester VARCHAR(32) NOT NULL,
    enrollment_year INTEGER NOT NULL
)`
