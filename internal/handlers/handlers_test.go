package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"teacher-gallery-backend/internal/adapter"
	"teacher-gallery-backend/internal/directory"
	"teacher-gallery-backend/internal/middleware"
	"teacher-gallery-backend/internal/models"
	"teacher-gallery-backend/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "admin123"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	local := adapter.NewLocalAdapter(filepath.Join(t.TempDir(), "gallery.json"))
	store := directory.NewLocalStore(local, nil)
	require.NoError(t, store.Load(context.Background()))

	hasher := &session.BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash(testAdminPassword)
	require.NoError(t, err)
	gate := session.NewLocalGate(hash, hasher, "test-secret")

	sessionHandler := NewSessionHandler(gate)
	teacherHandler := NewTeacherHandler(store)
	mediaHandler := NewMediaHandler(store)
	quoteHandler := NewQuoteHandler(store)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", sessionHandler.Login)
		r.Get("/session", sessionHandler.Restore)
		r.Delete("/session", sessionHandler.Logout)
		r.Get("/teachers", teacherHandler.ListTeachers)
		r.Get("/teachers/{teacher_id}", teacherHandler.GetTeacher)
		r.Get("/teachers/{teacher_id}/media", mediaHandler.ListMedia)
		r.Get("/teachers/{teacher_id}/quotes", quoteHandler.ListQuotes)
		r.Get("/media/recent", mediaHandler.RecentMedia)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(gate))
			r.Post("/teachers", teacherHandler.CreateTeacher)
			r.Put("/teachers/{teacher_id}", teacherHandler.UpdateTeacher)
			r.Delete("/teachers/{teacher_id}", teacherHandler.DeleteTeacher)
			r.Post("/teachers/{teacher_id}/media", mediaHandler.UploadMedia)
			r.Delete("/media/{media_id}", mediaHandler.DeleteMedia)
			r.Post("/teachers/{teacher_id}/quotes", quoteHandler.AddQuote)
			r.Delete("/quotes/{quote_id}", quoteHandler.DeleteQuote)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/session", "", map[string]string{
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sess models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func createTeacher(t *testing.T, router http.Handler, token, firstName, lastName, description string) models.Teacher {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("first_name", firstName))
	require.NoError(t, writer.WriteField("last_name", lastName))
	require.NoError(t, writer.WriteField("description", description))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/teachers", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var teacher models.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teacher))
	return teacher
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/session", "", map[string]string{
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid login or password", resp.Error)
}

func TestLogoutConfirmationFlow(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/session", token, map[string]bool{"confirm": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "an unconfirmed logout must be refused")

	rec = doJSON(t, router, http.MethodGet, "/api/v1/session", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the session must survive an unconfirmed logout")

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/session", token, map[string]bool{"confirm": true})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/teachers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/teachers/t1", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndFilterTeachers(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	createTeacher(t, router, token, "Anna", "Kowalska", "math")
	createTeacher(t, router, token, "John", "Smith", "physics")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/teachers?q=KOW", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Teachers []models.Teacher `json:"teachers"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Kowalska", resp.Teachers[0].LastName)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/teachers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Smith", resp.Teachers[0].LastName, "newest teacher first")
}

func TestCreateTeacherValidation(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("first_name", "Anna"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/teachers", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMediaBatchSkipsInvalidFiles(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)
	teacher := createTeacher(t, router, token, "Anna", "Kowalska", "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("category", "ai"))
	addFile(t, writer, "good.png", "image/png", []byte("pixels"))
	addFile(t, writer, "notes.pdf", "application/pdf", []byte("document"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/teachers/%s/media", teacher.ID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Uploaded int `json:"uploaded"`
		Results  []struct {
			Name  string `json:"name"`
			Error string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Uploaded)
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Results[0].Error)
	assert.NotEmpty(t, resp.Results[1].Error, "the invalid file must be reported, not fatal")

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/teachers/%s/media?category=ai", teacher.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Media []models.Media `json:"media"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Total)
}

func TestQuoteLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router)
	teacher := createTeacher(t, router, token, "Anna", "Kowalska", "")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/teachers/%s/quotes", teacher.ID), token, map[string]string{
		"text":   "To live is to learn",
		"author": "Anon",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var quote models.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/teachers/%s/quotes", teacher.ID), token, map[string]string{
		"text": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/quotes/"+quote.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/teachers/%s/quotes", teacher.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Zero(t, listResp.Total)
}

func addFile(t *testing.T, writer *multipart.Writer, name, contentType string, data []byte) {
	t.Helper()
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
}
