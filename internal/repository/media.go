package repository

import (
	"context"
	"fmt"

	"teacher-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MediaRepository handles database operations for media
type MediaRepository struct {
	db *pgxpool.Pool
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a new media row
func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	query := `
		INSERT INTO media (id, teacher_id, category, file_path, file_url, file_type, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		media.ID, media.TeacherID, string(media.Category),
		media.BlobRef, media.URL, media.MimeType, media.OriginalName, media.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create media: %w", err)
	}
	return nil
}

// ListByTeacher retrieves media rows for a teacher, newest first. An empty
// category matches all categories.
func (r *MediaRepository) ListByTeacher(ctx context.Context, teacherID string, category models.MediaCategory) ([]models.Media, error) {
	query := `
		SELECT id, teacher_id, category, file_path, file_url, file_type, file_name, created_at
		FROM media
		WHERE teacher_id = $1 AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, teacherID, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		var media models.Media
		err := rows.Scan(
			&media.ID, &media.TeacherID, &media.Category, &media.BlobRef,
			&media.URL, &media.MimeType, &media.OriginalName, &media.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, media)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}

	return items, nil
}

// ListRecent retrieves the newest media rows across all teachers, joined
// with the owner's name.
func (r *MediaRepository) ListRecent(ctx context.Context, limit int) ([]models.RecentMedia, error) {
	query := `
		SELECT m.id, m.teacher_id, m.category, m.file_path, m.file_url, m.file_type, m.file_name, m.created_at,
		       t.first_name, t.last_name
		FROM media m
		JOIN teachers t ON t.id = m.teacher_id
		ORDER BY m.created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent media: %w", err)
	}
	defer rows.Close()

	var items []models.RecentMedia
	for rows.Next() {
		var item models.RecentMedia
		var firstName, lastName string
		err := rows.Scan(
			&item.ID, &item.TeacherID, &item.Category, &item.BlobRef,
			&item.URL, &item.MimeType, &item.OriginalName, &item.CreatedAt,
			&firstName, &lastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent media: %w", err)
		}
		item.TeacherName = firstName + " " + lastName
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent media: %w", err)
	}

	return items, nil
}

// Delete deletes a media row by ID
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM media WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}

// DeleteByTeacher deletes all media rows owned by a teacher
func (r *MediaRepository) DeleteByTeacher(ctx context.Context, teacherID string) error {
	query := `DELETE FROM media WHERE teacher_id = $1`
	if _, err := r.db.Exec(ctx, query, teacherID); err != nil {
		return fmt.Errorf("failed to delete media for teacher: %w", err)
	}
	return nil
}
