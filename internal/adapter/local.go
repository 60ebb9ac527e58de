package adapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"teacher-gallery-backend/internal/models"

	"github.com/google/uuid"
)

// document is the single serialized form the local adapter persists: the
// whole directory, nested media and quotes included, under one fixed file.
type document struct {
	Teachers []models.Teacher `json:"teachers"`
}

// LocalAdapter is the full-fidelity fallback backend. It keeps the entire
// directory in memory and rewrites one JSON document on every mutation.
// Blobs are retained inline as data URLs, so RemoveBlob has nothing to do.
type LocalAdapter struct {
	mu     sync.Mutex
	path   string
	doc    document
	loaded bool
}

// NewLocalAdapter creates a local adapter persisting to the given file
func NewLocalAdapter(path string) *LocalAdapter {
	return &LocalAdapter{path: path}
}

// load reads the document from disk once. A missing file is an empty
// directory, not an error.
func (a *LocalAdapter) load() error {
	if a.loaded {
		return nil
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			a.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read data file: %w", err)
	}
	if err := json.Unmarshal(data, &a.doc); err != nil {
		return fmt.Errorf("failed to parse data file: %w", err)
	}
	a.loaded = true
	return nil
}

// persist writes the document atomically (temp file, then rename).
func (a *LocalAdapter) persist() error {
	data, err := json.Marshal(&a.doc)
	if err != nil {
		return fmt.Errorf("failed to serialize data file: %w", err)
	}
	tmp := a.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

func (a *LocalAdapter) findTeacher(id string) *models.Teacher {
	for i := range a.doc.Teachers {
		if a.doc.Teachers[i].ID == id {
			return &a.doc.Teachers[i]
		}
	}
	return nil
}

// ListTeachers returns a copy of the directory, newest first
func (a *LocalAdapter) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return nil, err
	}
	teachers := make([]models.Teacher, len(a.doc.Teachers))
	copy(teachers, a.doc.Teachers)
	sort.SliceStable(teachers, func(i, j int) bool {
		return teachers[i].CreatedAt.After(teachers[j].CreatedAt)
	})
	return teachers, nil
}

// InsertTeacher stores a new teacher at the head of the directory
func (a *LocalAdapter) InsertTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return nil, err
	}

	stored := *teacher
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Media = []models.Media{}
	stored.Quotes = []models.Quote{}

	a.doc.Teachers = append([]models.Teacher{stored}, a.doc.Teachers...)
	if err := a.persist(); err != nil {
		a.doc.Teachers = a.doc.Teachers[1:]
		return nil, err
	}
	return &stored, nil
}

// UpdateTeacher updates names and description of an existing teacher
func (a *LocalAdapter) UpdateTeacher(ctx context.Context, id, firstName, lastName, description string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	teacher := a.findTeacher(id)
	if teacher == nil {
		return fmt.Errorf("teacher %s not found", id)
	}
	teacher.FirstName = firstName
	teacher.LastName = lastName
	teacher.Description = description
	return a.persist()
}

// DeleteTeacher removes a teacher and everything nested under it
func (a *LocalAdapter) DeleteTeacher(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	kept := a.doc.Teachers[:0]
	for _, t := range a.doc.Teachers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	a.doc.Teachers = kept
	return a.persist()
}

// InsertMedia attaches a media record to its owning teacher
func (a *LocalAdapter) InsertMedia(ctx context.Context, media *models.Media) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	teacher := a.findTeacher(media.TeacherID)
	if teacher == nil {
		return fmt.Errorf("teacher %s not found", media.TeacherID)
	}
	if media.ID == "" {
		media.ID = uuid.New().String()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}
	teacher.Media = append(teacher.Media, *media)
	return a.persist()
}

// ListMedia filters the nested media collection, newest first
func (a *LocalAdapter) ListMedia(ctx context.Context, teacherID string, category models.MediaCategory) ([]models.Media, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return nil, err
	}
	teacher := a.findTeacher(teacherID)
	if teacher == nil {
		return nil, nil
	}
	var items []models.Media
	for _, m := range teacher.Media {
		if category == "" || m.Category == category {
			items = append(items, m)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// RecentMedia flattens all nested media, newest first, up to limit
func (a *LocalAdapter) RecentMedia(ctx context.Context, limit int) ([]models.RecentMedia, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return nil, err
	}
	var items []models.RecentMedia
	for i := range a.doc.Teachers {
		teacher := &a.doc.Teachers[i]
		for _, m := range teacher.Media {
			items = append(items, models.RecentMedia{Media: m, TeacherName: teacher.FullName()})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// DeleteMedia removes a media record wherever it lives
func (a *LocalAdapter) DeleteMedia(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	for i := range a.doc.Teachers {
		teacher := &a.doc.Teachers[i]
		for j, m := range teacher.Media {
			if m.ID == id {
				teacher.Media = append(teacher.Media[:j], teacher.Media[j+1:]...)
				return a.persist()
			}
		}
	}
	return a.persist()
}

// DeleteMediaByTeacher clears the nested media collection
func (a *LocalAdapter) DeleteMediaByTeacher(ctx context.Context, teacherID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	if teacher := a.findTeacher(teacherID); teacher != nil {
		teacher.Media = []models.Media{}
	}
	return a.persist()
}

// InsertQuote attaches a quote to its owning teacher
func (a *LocalAdapter) InsertQuote(ctx context.Context, quote *models.Quote) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	teacher := a.findTeacher(quote.TeacherID)
	if teacher == nil {
		return fmt.Errorf("teacher %s not found", quote.TeacherID)
	}
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}
	teacher.Quotes = append(teacher.Quotes, *quote)
	return a.persist()
}

// ListQuotes filters the nested quote collection, newest first
func (a *LocalAdapter) ListQuotes(ctx context.Context, teacherID string) ([]models.Quote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return nil, err
	}
	teacher := a.findTeacher(teacherID)
	if teacher == nil {
		return nil, nil
	}
	quotes := make([]models.Quote, len(teacher.Quotes))
	copy(quotes, teacher.Quotes)
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	return quotes, nil
}

// DeleteQuote removes a quote wherever it lives
func (a *LocalAdapter) DeleteQuote(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	for i := range a.doc.Teachers {
		teacher := &a.doc.Teachers[i]
		for j, q := range teacher.Quotes {
			if q.ID == id {
				teacher.Quotes = append(teacher.Quotes[:j], teacher.Quotes[j+1:]...)
				return a.persist()
			}
		}
	}
	return a.persist()
}

// DeleteQuotesByTeacher clears the nested quote collection
func (a *LocalAdapter) DeleteQuotesByTeacher(ctx context.Context, teacherID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	if teacher := a.findTeacher(teacherID); teacher != nil {
		teacher.Quotes = []models.Quote{}
	}
	return a.persist()
}

// PutBlob keeps the raw file data as a data URL; the key doubles as the ref
func (a *LocalAdapter) PutBlob(ctx context.Context, key string, data []byte, contentType string) (string, string, error) {
	url := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	return key, url, nil
}

// RemoveBlob is a no-op: inline blob data dies with its record
func (a *LocalAdapter) RemoveBlob(ctx context.Context, ref string) error {
	return nil
}
