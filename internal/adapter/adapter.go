// Package adapter abstracts the persistence backend behind one capability
// set: the three directory collections plus blob storage. The remote
// implementation composes the pgx repositories and the S3 blob store; the
// local implementation keeps the whole directory in a single JSON document
// on disk with blobs inlined as data URLs.
package adapter

import (
	"context"

	"teacher-gallery-backend/internal/models"
)

// Adapter is the persistence backend active for the process.
type Adapter interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	InsertTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error)
	UpdateTeacher(ctx context.Context, id, firstName, lastName, description string) error
	DeleteTeacher(ctx context.Context, id string) error

	InsertMedia(ctx context.Context, media *models.Media) error
	ListMedia(ctx context.Context, teacherID string, category models.MediaCategory) ([]models.Media, error)
	RecentMedia(ctx context.Context, limit int) ([]models.RecentMedia, error)
	DeleteMedia(ctx context.Context, id string) error
	DeleteMediaByTeacher(ctx context.Context, teacherID string) error

	InsertQuote(ctx context.Context, quote *models.Quote) error
	ListQuotes(ctx context.Context, teacherID string) ([]models.Quote, error)
	DeleteQuote(ctx context.Context, id string) error
	DeleteQuotesByTeacher(ctx context.Context, teacherID string) error

	// PutBlob stores raw file data and returns the storage ref and the
	// resolved retrieval URL. RemoveBlob deletes by ref; the local adapter
	// treats it as a no-op because its blobs live inline in the document.
	PutBlob(ctx context.Context, key string, data []byte, contentType string) (ref string, url string, err error)
	RemoveBlob(ctx context.Context, ref string) error
}
