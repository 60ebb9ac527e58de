package repository

import (
	"context"
	"fmt"

	"teacher-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TeacherRepository handles database operations for teachers
type TeacherRepository struct {
	db *pgxpool.Pool
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Create inserts a new teacher and returns the stored row
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	query := `
		INSERT INTO teachers (id, first_name, last_name, description, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, first_name, last_name, description, photo_url, created_at
	`
	var stored models.Teacher
	var description, photoURL *string
	err := r.db.QueryRow(ctx, query,
		teacher.ID, teacher.FirstName, teacher.LastName,
		nullable(teacher.Description), nullable(teacher.PhotoURL), teacher.CreatedAt,
	).Scan(
		&stored.ID, &stored.FirstName, &stored.LastName,
		&description, &photoURL, &stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	stored.Description = deref(description)
	stored.PhotoURL = deref(photoURL)
	return &stored, nil
}

// List retrieves all teachers ordered by creation time, newest first
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := `
		SELECT id, first_name, last_name, description, photo_url, created_at
		FROM teachers
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	defer rows.Close()

	var teachers []models.Teacher
	for rows.Next() {
		var teacher models.Teacher
		var description, photoURL *string
		err := rows.Scan(
			&teacher.ID, &teacher.FirstName, &teacher.LastName,
			&description, &photoURL, &teacher.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		teacher.Description = deref(description)
		teacher.PhotoURL = deref(photoURL)
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teachers: %w", err)
	}

	return teachers, nil
}

// Update updates a teacher's names and description. The photo is never
// touched through this path.
func (r *TeacherRepository) Update(ctx context.Context, id, firstName, lastName, description string) error {
	query := `UPDATE teachers SET first_name = $1, last_name = $2, description = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, firstName, lastName, nullable(description), id)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("teacher not found: %w", pgx.ErrNoRows)
	}
	return nil
}

// Delete deletes a teacher by ID
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM teachers WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
