package app

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GeminiAPIKey:              "test-key",
		DBHost:                    "localhost",
		DBName:                    "docqa",
		ChunkSize:                 1000,
		ChunkOverlap:              200,
		ChunkSeparator:            "\n",
		RetrievalTopK:             4,
		LLMTimeoutSeconds:         120,
		MinRequestIntervalSeconds: 3,
		BackoffFloorSeconds:       60,
		BackoffCeilingSeconds:     300,
		ServerPort:                8081,
		UploadDir:                 t.TempDir(),
		MaxUploadSizeMB:           50,
	}
}

func newTestApp(t *testing.T) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a, err := New(testConfig(t), db, nil, nil)
	require.NoError(t, err)
	return a, mock
}

func TestApp_Health(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestApp_ListDocumentsRoute(t *testing.T) {
	a, mock := newTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, filename, storage_path, upload_date FROM documents ORDER BY upload_date DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "storage_path", "upload_date"}))

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_UnknownRoute(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_QuestionRouteLoadsDocument(t *testing.T) {
	a, mock := newTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, filename, storage_path, content, upload_date FROM documents WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/qa/question",
		strings.NewReader(`{"document_id": 5, "question": "q"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "the question route must read documents through the store")
}

func TestApp_QuestionRouteValidation(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/qa/question", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
