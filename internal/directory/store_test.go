package directory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"teacher-gallery-backend/internal/adapter"
	"teacher-gallery-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is a spy persistence backend: it records every call and can
// be told to fail specific operations.
type fakeAdapter struct {
	mu       sync.Mutex
	teachers []models.Teacher
	media    []models.Media
	quotes   []models.Quote
	calls    []string
	nextID   int

	failListTeachers  bool
	failInsertTeacher bool
	failPutBlob       bool
	failRemoveBlob    bool
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{}
}

func (f *fakeAdapter) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAdapter) calledWith(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeAdapter) newID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeAdapter) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	f.record("ListTeachers")
	if f.failListTeachers {
		return nil, errors.New("remote store unavailable")
	}
	return append([]models.Teacher(nil), f.teachers...), nil
}

func (f *fakeAdapter) InsertTeacher(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	f.record("InsertTeacher")
	if f.failInsertTeacher {
		return nil, errors.New("insert failed")
	}
	stored := *teacher
	stored.ID = f.newID()
	stored.CreatedAt = time.Now().UTC()
	f.teachers = append(f.teachers, stored)
	return &stored, nil
}

func (f *fakeAdapter) UpdateTeacher(ctx context.Context, id, firstName, lastName, description string) error {
	f.record("UpdateTeacher")
	for i := range f.teachers {
		if f.teachers[i].ID == id {
			f.teachers[i].FirstName = firstName
			f.teachers[i].LastName = lastName
			f.teachers[i].Description = description
		}
	}
	return nil
}

func (f *fakeAdapter) DeleteTeacher(ctx context.Context, id string) error {
	f.record("DeleteTeacher")
	kept := f.teachers[:0]
	for _, t := range f.teachers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.teachers = kept
	return nil
}

func (f *fakeAdapter) InsertMedia(ctx context.Context, media *models.Media) error {
	f.record("InsertMedia")
	media.ID = f.newID()
	media.CreatedAt = time.Now().UTC()
	f.media = append(f.media, *media)
	return nil
}

func (f *fakeAdapter) ListMedia(ctx context.Context, teacherID string, category models.MediaCategory) ([]models.Media, error) {
	f.record("ListMedia")
	var items []models.Media
	for _, m := range f.media {
		if m.TeacherID == teacherID && (category == "" || m.Category == category) {
			items = append(items, m)
		}
	}
	return items, nil
}

func (f *fakeAdapter) RecentMedia(ctx context.Context, limit int) ([]models.RecentMedia, error) {
	f.record("RecentMedia")
	return nil, nil
}

func (f *fakeAdapter) DeleteMedia(ctx context.Context, id string) error {
	f.record("DeleteMedia")
	kept := f.media[:0]
	for _, m := range f.media {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	f.media = kept
	return nil
}

func (f *fakeAdapter) DeleteMediaByTeacher(ctx context.Context, teacherID string) error {
	f.record("DeleteMediaByTeacher")
	kept := f.media[:0]
	for _, m := range f.media {
		if m.TeacherID != teacherID {
			kept = append(kept, m)
		}
	}
	f.media = kept
	return nil
}

func (f *fakeAdapter) InsertQuote(ctx context.Context, quote *models.Quote) error {
	f.record("InsertQuote")
	quote.ID = f.newID()
	quote.CreatedAt = time.Now().UTC()
	f.quotes = append(f.quotes, *quote)
	return nil
}

func (f *fakeAdapter) ListQuotes(ctx context.Context, teacherID string) ([]models.Quote, error) {
	f.record("ListQuotes")
	var quotes []models.Quote
	for _, q := range f.quotes {
		if q.TeacherID == teacherID {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

func (f *fakeAdapter) DeleteQuote(ctx context.Context, id string) error {
	f.record("DeleteQuote")
	kept := f.quotes[:0]
	for _, q := range f.quotes {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	f.quotes = kept
	return nil
}

func (f *fakeAdapter) DeleteQuotesByTeacher(ctx context.Context, teacherID string) error {
	f.record("DeleteQuotesByTeacher")
	kept := f.quotes[:0]
	for _, q := range f.quotes {
		if q.TeacherID != teacherID {
			kept = append(kept, q)
		}
	}
	f.quotes = kept
	return nil
}

func (f *fakeAdapter) PutBlob(ctx context.Context, key string, data []byte, contentType string) (string, string, error) {
	f.record("PutBlob")
	if f.failPutBlob {
		return "", "", errors.New("blob store unavailable")
	}
	return key, "https://blobs.example/" + key, nil
}

func (f *fakeAdapter) RemoveBlob(ctx context.Context, ref string) error {
	f.record("RemoveBlob")
	if f.failRemoveBlob {
		return errors.New("blob removal failed")
	}
	return nil
}

var _ adapter.Adapter = (*fakeAdapter)(nil)

func pngUpload(name string, size int) Upload {
	return Upload{Name: name, ContentType: "image/png", Data: make([]byte, size)}
}

func TestAddTeacherRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "math", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, teacher.ID)
	assert.Equal(t, "Anna", teacher.FirstName)
	assert.Equal(t, "Kowalska", teacher.LastName)
	assert.Equal(t, "math", teacher.Description)
	assert.Empty(t, teacher.PhotoURL)

	cached := store.Teachers()
	require.Len(t, cached, 1)
	assert.Equal(t, teacher.ID, cached[0].ID)
	assert.Equal(t, "Anna", cached[0].FirstName)
}

func TestAddTeacherWithPhoto(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	photo := pngUpload("portrait.png", 128)
	teacher, err := store.AddTeacher(ctx, "Jan", "Nowak", "", &photo)
	require.NoError(t, err)
	assert.Contains(t, teacher.PhotoURL, "https://blobs.example/profiles/")
}

func TestAddTeacherValidationSkipsAdapter(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)

	var validationErr *ValidationError

	_, err := store.AddTeacher(ctx, "", "Kowalska", "", nil)
	require.ErrorAs(t, err, &validationErr)

	_, err = store.AddTeacher(ctx, "Anna", "   ", "", nil)
	require.ErrorAs(t, err, &validationErr)

	assert.Zero(t, fake.callCount(), "validation failures must not reach the adapter")
}

func TestAddTeacherOrphanedPhotoSurfaced(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	fake.failInsertTeacher = true
	store := NewLocalStore(fake, nil)

	photo := pngUpload("portrait.png", 64)
	_, err := store.AddTeacher(ctx, "Jan", "Nowak", "", &photo)
	require.Error(t, err)

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Contains(t, err.Error(), "orphaned")
}

func TestAddTeacherOrdering(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	_, err := store.AddTeacher(ctx, "First", "Teacher", "", nil)
	require.NoError(t, err)
	_, err = store.AddTeacher(ctx, "Second", "Teacher", "", nil)
	require.NoError(t, err)

	teachers := store.Teachers()
	require.Len(t, teachers, 2)
	assert.Equal(t, "Second", teachers[0].FirstName, "newest teacher must come first")
	assert.Equal(t, "First", teachers[1].FirstName)
}

func TestUpdateTeacherValidation(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)

	var validationErr *ValidationError
	err := store.UpdateTeacher(ctx, "any", "", "Kowalska", "")
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, fake.callCount())
}

func TestUpdateTeacherRefreshesCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "math", nil)
	require.NoError(t, err)

	require.NoError(t, store.UpdateTeacher(ctx, teacher.ID, "Anna", "Nowak", "physics"))

	updated := store.Teacher(teacher.ID)
	require.NotNil(t, updated)
	assert.Equal(t, "Nowak", updated.LastName)
	assert.Equal(t, "physics", updated.Description)
}

func TestDeleteTeacherCascade(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "", nil)
	require.NoError(t, err)

	_, err = store.UploadMedia(ctx, teacher.ID, pngUpload("a.png", 32), models.CategoryAI)
	require.NoError(t, err)
	_, err = store.UploadMedia(ctx, teacher.ID, pngUpload("b.png", 32), models.CategoryNatural)
	require.NoError(t, err)
	_, err = store.AddQuote(ctx, teacher.ID, "To live is to learn", "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteTeacher(ctx, teacher.ID))

	media, err := store.ListMedia(ctx, teacher.ID, "")
	require.NoError(t, err)
	assert.Empty(t, media)

	quotes, err := store.ListQuotes(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Empty(t, quotes)

	assert.Empty(t, store.FilterTeachers(""))
	assert.Nil(t, store.Teacher(teacher.ID))
}

func TestDeleteTeacherUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.DeleteTeacher(ctx, "missing"))
	assert.False(t, fake.calledWith("DeleteTeacher"))
}

func TestDeleteTeacherBlobFailureDoesNotAbortCascade(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "", nil)
	require.NoError(t, err)
	_, err = store.UploadMedia(ctx, teacher.ID, pngUpload("a.png", 32), models.CategoryAI)
	require.NoError(t, err)

	fake.failRemoveBlob = true
	require.NoError(t, store.DeleteTeacher(ctx, teacher.ID))

	assert.True(t, fake.calledWith("DeleteMediaByTeacher"))
	assert.True(t, fake.calledWith("DeleteQuotesByTeacher"))
	assert.True(t, fake.calledWith("DeleteTeacher"))
}

func TestUploadMediaValidation(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "", nil)
	require.NoError(t, err)
	before := fake.callCount()

	var validationErr *ValidationError

	_, err = store.UploadMedia(ctx, teacher.ID, pngUpload("big.png", MaxUploadSize+1), models.CategoryAI)
	require.ErrorAs(t, err, &validationErr)

	_, err = store.UploadMedia(ctx, teacher.ID, Upload{Name: "notes.pdf", ContentType: "application/pdf", Data: []byte("x")}, models.CategoryAI)
	require.ErrorAs(t, err, &validationErr)

	_, err = store.UploadMedia(ctx, teacher.ID, pngUpload("a.png", 32), "portrait")
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, before, fake.callCount(), "invalid uploads must not reach the adapter")
}

func TestUploadMediaRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "", nil)
	require.NoError(t, err)

	media, err := store.UploadMedia(ctx, teacher.ID, pngUpload("shot.png", 1024), models.CategoryNatural)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryNatural, media.Category)
	assert.Equal(t, "shot.png", media.OriginalName)
	assert.Equal(t, "image/png", media.MimeType)
	assert.NotEmpty(t, media.ID)
	assert.NotEmpty(t, media.BlobRef)
	assert.NotEmpty(t, media.URL)
}

func TestDeleteMediaBlobFailureKeepsMetadata(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	fake.failRemoveBlob = true
	store := NewLocalStore(fake, nil)

	err := store.DeleteMedia(ctx, "m1", "some/ref")
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.False(t, fake.calledWith("DeleteMedia"), "metadata must survive a failed blob removal")
}

func TestAddQuoteValidation(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)

	var validationErr *ValidationError
	_, err := store.AddQuote(ctx, "t1", "   ", "Anon")
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, fake.callCount())
}

func TestFilterTeachers(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	store := NewLocalStore(fake, nil)
	require.NoError(t, store.Load(ctx))

	_, err := store.AddTeacher(ctx, "Anna", "Kowalska", "math", nil)
	require.NoError(t, err)
	_, err = store.AddTeacher(ctx, "John", "Smith", "physics", nil)
	require.NoError(t, err)

	all := store.FilterTeachers("")
	require.Len(t, all, 2)
	assert.Equal(t, "John", all[0].FirstName, "empty query must preserve order")

	byName := store.FilterTeachers("KOW")
	require.Len(t, byName, 1)
	assert.Equal(t, "Kowalska", byName[0].LastName)

	byDescription := store.FilterTeachers("MAT")
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Kowalska", byDescription[0].LastName)

	acrossName := store.FilterTeachers("na kow")
	require.Len(t, acrossName, 1, "match spans first and last name")

	assert.Empty(t, store.FilterTeachers("chemistry"))
}

func TestLoadFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	remote := newFakeAdapter()
	remote.failListTeachers = true
	local := adapter.NewLocalAdapter(filepath.Join(t.TempDir(), "data.json"))
	store := NewStore(remote, local, nil)

	require.NoError(t, store.Load(ctx), "load must complete despite the remote failure")
	assert.True(t, store.FellBack())
	remoteCalls := remote.callCount()

	_, err := store.AddTeacher(ctx, "Anna", "Kowalska", "", nil)
	require.NoError(t, err)
	_, err = store.AddTeacher(ctx, "John", "Smith", "", nil)
	require.NoError(t, err)

	assert.Equal(t, remoteCalls, remote.callCount(), "the remote adapter must see no calls after the downgrade")

	teachers := store.Teachers()
	require.Len(t, teachers, 2)
	assert.Equal(t, "John", teachers[0].FirstName)
}

func TestEventsEmitted(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdapter()
	notifier := &recordingNotifier{}
	store := NewLocalStore(fake, notifier)
	require.NoError(t, store.Load(ctx))

	teacher, err := store.AddTeacher(ctx, "Anna", "Kowalska", "", nil)
	require.NoError(t, err)
	require.NoError(t, store.DeleteTeacher(ctx, teacher.ID))

	require.Len(t, notifier.events, 2)
	assert.Equal(t, EventTeacherAdded, notifier.events[0].Type)
	assert.Equal(t, EventTeacherDeleted, notifier.events[1].Type)
	assert.Equal(t, teacher.ID, notifier.events[1].TeacherID)
}

type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) Notify(event Event) {
	n.events = append(n.events, event)
}
