// Package directory owns the in-memory teacher collection and orchestrates
// all reads and mutations against the active persistence adapter. The store
// starts remote-backed when a remote adapter is supplied and downgrades to
// the local fallback once, permanently, if the initial load fails.
package directory

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"teacher-gallery-backend/internal/adapter"
	"teacher-gallery-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// MaxUploadSize is the per-file media upload limit.
const MaxUploadSize = 50 * 1024 * 1024

const defaultRecentLimit = 6

// Event is a directory change notification pushed to connected clients.
type Event struct {
	Type      string `json:"type"`
	TeacherID string `json:"teacher_id,omitempty"`
	MediaID   string `json:"media_id,omitempty"`
	QuoteID   string `json:"quote_id,omitempty"`
}

// Event types. EventTeacherDeleted doubles as the signal that any open
// selection of that teacher is now invalid.
const (
	EventTeacherAdded   = "teacher_added"
	EventTeacherUpdated = "teacher_updated"
	EventTeacherDeleted = "teacher_deleted"
	EventMediaUploaded  = "media_uploaded"
	EventMediaDeleted   = "media_deleted"
	EventQuoteAdded     = "quote_added"
	EventQuoteDeleted   = "quote_deleted"
)

// Notifier receives directory change events.
type Notifier interface {
	Notify(event Event)
}

// Upload carries one file through the store.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store orchestrates CRUD against the active adapter and keeps the
// in-memory teacher collection consistent with it. All methods serialize
// behind one mutex, so overlapping calls (a second Load before the first
// finishes included) queue rather than interleave.
type Store struct {
	mu       sync.Mutex
	active   adapter.Adapter
	fallback adapter.Adapter
	fellBack bool
	teachers []models.Teacher
	notifier Notifier
}

// NewStore creates a remote-backed store with a local fallback.
func NewStore(remote adapter.Adapter, fallback adapter.Adapter, notifier Notifier) *Store {
	return &Store{active: remote, fallback: fallback, notifier: notifier}
}

// NewLocalStore creates a store that only ever uses the local backend.
func NewLocalStore(local adapter.Adapter, notifier Notifier) *Store {
	return &Store{active: local, notifier: notifier}
}

// FellBack reports whether the store has downgraded to the local fallback.
func (s *Store) FellBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fellBack
}

// Load fetches all teachers from the active adapter, newest first. On a
// remote failure it switches to the local fallback for the remainder of the
// process and retries there; the downgrade is never reversed.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teachers, err := s.active.ListTeachers(ctx)
	if err != nil {
		if s.fallback == nil || s.fellBack {
			return &AdapterError{Op: "load teachers", Err: err}
		}
		log.Warn().Err(err).Msg("Remote store unavailable, falling back to local storage")
		s.active = s.fallback
		s.fellBack = true
		teachers, err = s.active.ListTeachers(ctx)
		if err != nil {
			return &AdapterError{Op: "load teachers", Err: err}
		}
	}

	s.teachers = teachers
	return nil
}

// Teachers returns a snapshot of the in-memory collection in order.
func (s *Store) Teachers() []models.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]models.Teacher, len(s.teachers))
	copy(snapshot, s.teachers)
	return snapshot
}

// Teacher returns the cached teacher for an id, or nil.
func (s *Store) Teacher(id string) *models.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findLocked(id); t != nil {
		copied := *t
		return &copied
	}
	return nil
}

func (s *Store) findLocked(id string) *models.Teacher {
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			return &s.teachers[i]
		}
	}
	return nil
}

// AddTeacher validates input, uploads the optional photo, stores the record
// and inserts it at the head of the collection. A photo upload failure
// aborts the whole operation; a record insert failure after a successful
// upload leaves the photo orphaned, which the error text calls out.
func (s *Store) AddTeacher(ctx context.Context, firstName, lastName, description string, photo *Upload) (*models.Teacher, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	description = strings.TrimSpace(description)
	if firstName == "" || lastName == "" {
		return nil, &ValidationError{Message: "first name and last name are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var photoURL string
	if photo != nil {
		key := fmt.Sprintf("profiles/%d_%s", time.Now().UnixNano(), path.Base(photo.Name))
		_, url, err := s.active.PutBlob(ctx, key, photo.Data, photo.ContentType)
		if err != nil {
			return nil, &AdapterError{Op: "upload photo", Err: err}
		}
		photoURL = url
	}

	stored, err := s.active.InsertTeacher(ctx, &models.Teacher{
		FirstName:   firstName,
		LastName:    lastName,
		Description: description,
		PhotoURL:    photoURL,
	})
	if err != nil {
		if photoURL != "" {
			err = fmt.Errorf("%w (the uploaded photo may be left orphaned in storage)", err)
		}
		return nil, &AdapterError{Op: "add teacher", Err: err}
	}

	// Head insertion, then re-sort: a remote-assigned creation time must
	// still land the record in most-recent-first position.
	s.teachers = append([]models.Teacher{*stored}, s.teachers...)
	sort.SliceStable(s.teachers, func(i, j int) bool {
		return s.teachers[i].CreatedAt.After(s.teachers[j].CreatedAt)
	})

	s.notify(Event{Type: EventTeacherAdded, TeacherID: stored.ID})
	return stored, nil
}

// UpdateTeacher updates names and description on the backend and in the
// cache. The photo is immutable through this path.
func (s *Store) UpdateTeacher(ctx context.Context, id, firstName, lastName, description string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	description = strings.TrimSpace(description)
	if firstName == "" || lastName == "" {
		return &ValidationError{Message: "first name and last name are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active.UpdateTeacher(ctx, id, firstName, lastName, description); err != nil {
		return &AdapterError{Op: "update teacher", Err: err}
	}

	if teacher := s.findLocked(id); teacher != nil {
		teacher.FirstName = firstName
		teacher.LastName = lastName
		teacher.Description = description
	}

	s.notify(Event{Type: EventTeacherUpdated, TeacherID: id})
	return nil
}

// DeleteTeacher cascades: media blobs best-effort per item, then media rows,
// quote rows, the teacher row, and finally the cache entry. An unknown id is
// a no-op. The emitted event tells the UI layer any open selection of this
// teacher is invalid.
func (s *Store) DeleteTeacher(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		log.Debug().Str("teacher_id", id).Msg("Delete requested for unknown teacher")
		return nil
	}

	media, err := s.active.ListMedia(ctx, id, "")
	if err != nil {
		return &AdapterError{Op: "delete teacher", Err: err}
	}
	for _, m := range media {
		if err := s.active.RemoveBlob(ctx, m.BlobRef); err != nil {
			// One failed blob removal never aborts the cascade; the orphan
			// is acceptable and logged.
			log.Warn().Err(err).
				Str("teacher_id", id).
				Str("blob_ref", m.BlobRef).
				Msg("Failed to remove media blob during cascade delete")
		}
	}

	if err := s.active.DeleteMediaByTeacher(ctx, id); err != nil {
		return &AdapterError{Op: "delete teacher media", Err: err}
	}
	if err := s.active.DeleteQuotesByTeacher(ctx, id); err != nil {
		return &AdapterError{Op: "delete teacher quotes", Err: err}
	}
	if err := s.active.DeleteTeacher(ctx, id); err != nil {
		return &AdapterError{Op: "delete teacher", Err: err}
	}

	kept := s.teachers[:0]
	for _, t := range s.teachers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.teachers = kept

	s.notify(Event{Type: EventTeacherDeleted, TeacherID: id})
	return nil
}

// UploadMedia validates the file, puts the blob, resolves its URL and then
// writes the metadata row, in that order.
func (s *Store) UploadMedia(ctx context.Context, teacherID string, file Upload, category models.MediaCategory) (*models.Media, error) {
	if !category.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown media category %q", category)}
	}
	if !strings.HasPrefix(file.ContentType, "image/") && !strings.HasPrefix(file.ContentType, "video/") {
		return nil, &ValidationError{Message: "only image and video files are allowed"}
	}
	if len(file.Data) > MaxUploadSize {
		return nil, &ValidationError{Message: "file size must not exceed 50 MB"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(teacherID) == nil {
		return nil, &NotFoundError{Kind: "teacher", ID: teacherID}
	}

	key := fmt.Sprintf("%s/%s/%d_%s", teacherID, category, time.Now().UnixNano(), path.Base(file.Name))
	ref, url, err := s.active.PutBlob(ctx, key, file.Data, file.ContentType)
	if err != nil {
		return nil, &AdapterError{Op: "upload media", Err: err}
	}

	media := &models.Media{
		TeacherID:    teacherID,
		Category:     category,
		BlobRef:      ref,
		URL:          url,
		MimeType:     file.ContentType,
		OriginalName: file.Name,
	}
	if err := s.active.InsertMedia(ctx, media); err != nil {
		err = fmt.Errorf("%w (the uploaded file may be left orphaned in storage)", err)
		return nil, &AdapterError{Op: "store media record", Err: err}
	}

	s.notify(Event{Type: EventMediaUploaded, TeacherID: teacherID, MediaID: media.ID})
	return media, nil
}

// ListMedia returns a teacher's media, newest first. An empty category
// selects all categories.
func (s *Store) ListMedia(ctx context.Context, teacherID string, category models.MediaCategory) ([]models.Media, error) {
	if category != "" && !category.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown media category %q", category)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	media, err := s.active.ListMedia(ctx, teacherID, category)
	if err != nil {
		return nil, &AdapterError{Op: "list media", Err: err}
	}
	return media, nil
}

// RecentMedia returns the newest uploads across the whole directory.
func (s *Store) RecentMedia(ctx context.Context, limit int) ([]models.RecentMedia, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.active.RecentMedia(ctx, limit)
	if err != nil {
		return nil, &AdapterError{Op: "list recent media", Err: err}
	}
	return items, nil
}

// DeleteMedia removes the blob first and only then the metadata row. A
// failed blob removal aborts the delete: a metadata row pointing at a live
// blob stays retryable, the reverse would dangle.
func (s *Store) DeleteMedia(ctx context.Context, id, blobRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active.RemoveBlob(ctx, blobRef); err != nil {
		return &AdapterError{Op: "remove media blob", Err: err}
	}
	if err := s.active.DeleteMedia(ctx, id); err != nil {
		return &AdapterError{Op: "delete media", Err: err}
	}

	s.notify(Event{Type: EventMediaDeleted, MediaID: id})
	return nil
}

// AddQuote stores a quote for a teacher. Text is required after trimming.
func (s *Store) AddQuote(ctx context.Context, teacherID, text, author string) (*models.Quote, error) {
	text = strings.TrimSpace(text)
	author = strings.TrimSpace(author)
	if text == "" {
		return nil, &ValidationError{Message: "quote text is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(teacherID) == nil {
		return nil, &NotFoundError{Kind: "teacher", ID: teacherID}
	}

	quote := &models.Quote{TeacherID: teacherID, Text: text, Author: author}
	if err := s.active.InsertQuote(ctx, quote); err != nil {
		return nil, &AdapterError{Op: "add quote", Err: err}
	}

	s.notify(Event{Type: EventQuoteAdded, TeacherID: teacherID, QuoteID: quote.ID})
	return quote, nil
}

// ListQuotes returns a teacher's quotes, newest first.
func (s *Store) ListQuotes(ctx context.Context, teacherID string) ([]models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.active.ListQuotes(ctx, teacherID)
	if err != nil {
		return nil, &AdapterError{Op: "list quotes", Err: err}
	}
	return quotes, nil
}

// DeleteQuote removes a quote.
func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active.DeleteQuote(ctx, id); err != nil {
		return &AdapterError{Op: "delete quote", Err: err}
	}

	s.notify(Event{Type: EventQuoteDeleted, QuoteID: id})
	return nil
}

// FilterTeachers is a pure in-memory search: case-insensitive substring
// match against the concatenated full name and, independently, against the
// description. An empty query returns the whole collection in order.
func (s *Store) FilterTeachers(query string) []models.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		snapshot := make([]models.Teacher, len(s.teachers))
		copy(snapshot, s.teachers)
		return snapshot
	}

	var matched []models.Teacher
	for _, t := range s.teachers {
		name := strings.ToLower(t.FullName())
		description := strings.ToLower(t.Description)
		if strings.Contains(name, query) || strings.Contains(description, query) {
			matched = append(matched, t)
		}
	}
	return matched
}

func (s *Store) notify(event Event) {
	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}
