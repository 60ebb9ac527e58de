package repository

import (
	"context"
	"fmt"

	"teacher-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuoteRepository handles database operations for quotes
type QuoteRepository struct {
	db *pgxpool.Pool
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a new quote
func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	query := `
		INSERT INTO quotes (id, teacher_id, quote_text, quote_author, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		quote.ID, quote.TeacherID, quote.Text, nullable(quote.Author), quote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// ListByTeacher retrieves quotes for a teacher, newest first
func (r *QuoteRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Quote, error) {
	query := `
		SELECT id, teacher_id, quote_text, quote_author, created_at
		FROM quotes
		WHERE teacher_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		var author *string
		err := rows.Scan(&quote.ID, &quote.TeacherID, &quote.Text, &author, &quote.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quote.Author = deref(author)
		quotes = append(quotes, quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotes: %w", err)
	}

	return quotes, nil
}

// Delete deletes a quote by ID
func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM quotes WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return nil
}

// DeleteByTeacher deletes all quotes owned by a teacher
func (r *QuoteRepository) DeleteByTeacher(ctx context.Context, teacherID string) error {
	query := `DELETE FROM quotes WHERE teacher_id = $1`
	if _, err := r.db.Exec(ctx, query, teacherID); err != nil {
		return fmt.Errorf("failed to delete quotes for teacher: %w", err)
	}
	return nil
}
