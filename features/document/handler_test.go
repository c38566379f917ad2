package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/pdf"
)

func multipartBody(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadHandler_RejectsNonPDF(t *testing.T) {
	h := NewHandler(NewService(new(MockRepository), stubExtractor("", nil), nil), t.TempDir(), 50)

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only PDF files are allowed")
}

func TestUploadHandler_MissingFile(t *testing.T) {
	h := NewHandler(NewService(new(MockRepository), stubExtractor("", nil), nil), t.TempDir(), 50)

	body, contentType := multipartBody(t, "wrong_field", "doc.pdf", []byte("%PDF-"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_Success(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	uploadDir := t.TempDir()
	h := NewHandler(NewService(repo, stubExtractor("extracted", nil), nil), uploadDir, 50)

	body, contentType := multipartBody(t, "file", "report.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "report.pdf", resp.Data.Filename)

	// The raw upload stays on disk for successful ingests.
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUploadHandler_ExtractionFailureCleansUp(t *testing.T) {
	repo := new(MockRepository)
	extractErr := fmt.Errorf("%w: not a pdf", pdf.ErrExtraction)

	uploadDir := t.TempDir()
	h := NewHandler(NewService(repo, stubExtractor("", extractErr), nil), uploadDir, 50)

	body, contentType := multipartBody(t, "file", "broken.pdf", []byte("not really a pdf"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed uploads must not leave files behind")
}

func TestListHandler(t *testing.T) {
	t.Run("ReturnsDocuments", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("List", mock.Anything).Return([]Document{
			{ID: 1, Filename: "a.pdf"},
			{ID: 2, Filename: "b.pdf"},
		}, nil)

		h := NewHandler(NewService(repo, stubExtractor("", nil), nil), t.TempDir(), 50)

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data []Document     `json:"data"`
			Meta map[string]int `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, 2, resp.Meta["count"])
	})

	t.Run("EmptyListIsArray", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("List", mock.Anything).Return(nil, nil)

		h := NewHandler(NewService(repo, stubExtractor("", nil), nil), t.TempDir(), 50)

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})
}
