package adapter

import (
	"context"
	"time"

	"teacher-gallery-backend/internal/blob"
	"teacher-gallery-backend/internal/models"
	"teacher-gallery-backend/internal/repository"

	"github.com/google/uuid"
)

// RemoteAdapter persists the directory in the relational store and keeps
// blobs in object storage.
type RemoteAdapter struct {
	teachers *repository.TeacherRepository
	media    *repository.MediaRepository
	quotes   *repository.QuoteRepository
	blobs    blob.Store
}

// NewRemoteAdapter creates a remote-backed persistence adapter
func NewRemoteAdapter(
	teachers *repository.TeacherRepository,
	media *repository.MediaRepository,
	quotes *repository.QuoteRepository,
	blobs blob.Store,
) *RemoteAdapter {
	return &RemoteAdapter{
		teachers: teachers,
		media:    media,
		quotes:   quotes,
		blobs:    blobs,
	}
}

// ListTeachers retrieves all teachers, newest first
func (a *RemoteAdapter) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	return a.teachers.List(ctx)
}

// InsertTeacher stores a new teacher and returns the stored row
func (a *RemoteAdapter) InsertTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	if teacher.ID == "" {
		teacher.ID = uuid.New().String()
	}
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = time.Now().UTC()
	}
	return a.teachers.Create(ctx, teacher)
}

// UpdateTeacher updates names and description of an existing teacher
func (a *RemoteAdapter) UpdateTeacher(ctx context.Context, id, firstName, lastName, description string) error {
	return a.teachers.Update(ctx, id, firstName, lastName, description)
}

// DeleteTeacher deletes a teacher row
func (a *RemoteAdapter) DeleteTeacher(ctx context.Context, id string) error {
	return a.teachers.Delete(ctx, id)
}

// InsertMedia stores a new media row
func (a *RemoteAdapter) InsertMedia(ctx context.Context, media *models.Media) error {
	if media.ID == "" {
		media.ID = uuid.New().String()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}
	return a.media.Create(ctx, media)
}

// ListMedia retrieves media for a teacher, newest first
func (a *RemoteAdapter) ListMedia(ctx context.Context, teacherID string, category models.MediaCategory) ([]models.Media, error) {
	return a.media.ListByTeacher(ctx, teacherID, category)
}

// RecentMedia retrieves the newest uploads across all teachers
func (a *RemoteAdapter) RecentMedia(ctx context.Context, limit int) ([]models.RecentMedia, error) {
	return a.media.ListRecent(ctx, limit)
}

// DeleteMedia deletes a media row
func (a *RemoteAdapter) DeleteMedia(ctx context.Context, id string) error {
	return a.media.Delete(ctx, id)
}

// DeleteMediaByTeacher deletes all media rows owned by a teacher
func (a *RemoteAdapter) DeleteMediaByTeacher(ctx context.Context, teacherID string) error {
	return a.media.DeleteByTeacher(ctx, teacherID)
}

// InsertQuote stores a new quote
func (a *RemoteAdapter) InsertQuote(ctx context.Context, quote *models.Quote) error {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}
	return a.quotes.Create(ctx, quote)
}

// ListQuotes retrieves quotes for a teacher, newest first
func (a *RemoteAdapter) ListQuotes(ctx context.Context, teacherID string) ([]models.Quote, error) {
	return a.quotes.ListByTeacher(ctx, teacherID)
}

// DeleteQuote deletes a quote row
func (a *RemoteAdapter) DeleteQuote(ctx context.Context, id string) error {
	return a.quotes.Delete(ctx, id)
}

// DeleteQuotesByTeacher deletes all quotes owned by a teacher
func (a *RemoteAdapter) DeleteQuotesByTeacher(ctx context.Context, teacherID string) error {
	return a.quotes.DeleteByTeacher(ctx, teacherID)
}

// PutBlob uploads file data to object storage
func (a *RemoteAdapter) PutBlob(ctx context.Context, key string, data []byte, contentType string) (string, string, error) {
	return a.blobs.Put(ctx, key, data, contentType)
}

// RemoveBlob deletes a blob from object storage
func (a *RemoteAdapter) RemoveBlob(ctx context.Context, ref string) error {
	return a.blobs.Remove(ctx, ref)
}
