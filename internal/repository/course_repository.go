package repository

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-enrollments/internal/models"
)

const courseColumns = `id, course_id, course_number, course_name, num_hours, num_credits, department`

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewCourseRepository constructs the repository. metrics may be nil.
func NewCourseRepository(db *sqlx.DB, metrics QueryObserver) *CourseRepository {
	return &CourseRepository{db: db, metrics: observerOrNoop(metrics)}
}

// Stream yields every course in table order.
func (r *CourseRepository) Stream(ctx context.Context) iter.Seq2[models.Course, error] {
	return func(yield func(models.Course, error) bool) {
		defer timed(r.metrics, "courses.stream")()
		rows, err := r.db.QueryxContext(ctx, `SELECT `+courseColumns+` FROM courses`)
		if err != nil {
			yield(models.Course{}, fmt.Errorf("stream courses: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var c models.Course
			if err := rows.StructScan(&c); err != nil {
				yield(models.Course{}, fmt.Errorf("scan course: %w", err))
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Course{}, fmt.Errorf("iterate courses: %w", err))
		}
	}
}

// FindByCourseID returns the course with the given public id or sql.ErrNoRows.
func (r *CourseRepository) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	defer timed(r.metrics, "courses.find")()
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE course_id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a course and records its storage id.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	defer timed(r.metrics, "courses.create")()
	const query = `INSERT INTO courses (course_id, course_number, course_name, num_hours, num_credits, department)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		course.CourseID,
		course.CourseNumber,
		course.CourseName,
		course.NumHours,
		course.NumCredits,
		course.Department,
	).Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update overwrites the row matching both storage id and course id.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	defer timed(r.metrics, "courses.update")()
	const query = `UPDATE courses
SET course_number = :course_number, course_name = :course_name, num_hours = :num_hours,
    num_credits = :num_credits, department = :department
WHERE id = :id AND course_id = :course_id`
	result, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the course with the given storage id.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	defer timed(r.metrics, "courses.delete")()
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
