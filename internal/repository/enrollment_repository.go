package repository

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-enrollments/internal/models"
)

const enrollmentColumns = `id, enrollment_id, student_id, course_id, semester, enrollment_year`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewEnrollmentRepository constructs the repository. metrics may be nil.
func NewEnrollmentRepository(db *sqlx.DB, metrics QueryObserver) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, metrics: observerOrNoop(metrics)}
}

// Stream yields every enrollment in table order. The query runs when iteration
// starts and the cursor is closed when iteration stops.
func (r *EnrollmentRepository) Stream(ctx context.Context) iter.Seq2[models.Enrollment, error] {
	return func(yield func(models.Enrollment, error) bool) {
		defer timed(r.metrics, "enrollments.stream")()
		rows, err := r.db.QueryxContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments`)
		if err != nil {
			yield(models.Enrollment{}, fmt.Errorf("stream enrollments: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var e models.Enrollment
			if err := rows.StructScan(&e); err != nil {
				yield(models.Enrollment{}, fmt.Errorf("scan enrollment: %w", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Enrollment{}, fmt.Errorf("iterate enrollments: %w", err))
		}
	}
}

// FindByEnrollmentID returns the enrollment with the given public id or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	defer timed(r.metrics, "enrollments.find")()
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE enrollment_id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, enrollmentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create inserts a new enrollment and stores the generated storage id on it.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	defer timed(r.metrics, "enrollments.create")()
	const query = `INSERT INTO enrollments (enrollment_id, student_id, course_id, semester, enrollment_year)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		enrollment.EnrollmentID,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.Semester,
		enrollment.EnrollmentYear,
	).Scan(&enrollment.ID); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update overwrites the row matching both storage id and enrollment id.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	defer timed(r.metrics, "enrollments.update")()
	const query = `UPDATE enrollments
SET student_id = :student_id, course_id = :course_id, semester = :semester, enrollment_year = :enrollment_year
WHERE id = :id AND enrollment_id = :enrollment_id`
	result, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the enrollment with the given storage id.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	defer timed(r.metrics, "enrollments.delete")()
	result, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
