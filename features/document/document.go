package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"docqa/internal/middleware"
)

// Document is the persisted record for one uploaded PDF: metadata plus the
// full extracted text. Immutable after creation. Content is kept out of API
// responses; only the QA pipeline reads it.
type Document struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	Content     string    `json:"-"`
	UploadDate  time.Time `json:"upload_date"`
}

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context) ([]Document, error)
}

// Extractor turns a stored PDF into its plain text.
type Extractor func(path string) (string, error)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo    Repository
	extract Extractor
	pub     EventPublisher
}

func NewService(repo Repository, extract Extractor, pub EventPublisher) *Service {
	return &Service{repo: repo, extract: extract, pub: pub}
}

// Upload extracts the text of an already-stored PDF and persists the document
// record. Extraction failure aborts before anything is persisted; the handler
// owns cleanup of the stored file.
func (s *Service) Upload(ctx context.Context, path, filename string) (*Document, error) {
	content, err := s.extract(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Filename:    filename,
		StoragePath: path,
		Content:     content,
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.publishIngested(ctx, doc)
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

// publishIngested emits a best-effort event for downstream consumers. A dead
// broker must never fail an upload, so errors are only logged.
func (s *Service) publishIngested(ctx context.Context, doc *Document) {
	if s.pub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"id":             doc.ID,
		"filename":       doc.Filename,
		"content_bytes":  len(doc.Content),
		"correlation_id": middleware.GetCorrelationID(ctx),
	})
	if err := s.pub.Publish("document.ingested", payload); err != nil {
		slog.Error("failed to publish document.ingested event", "error", err, "id", doc.ID)
	} else {
		slog.Info("published document.ingested event", "id", doc.ID, "filename", doc.Filename)
	}
}

// RemoveFile deletes a stored upload, logging instead of failing on error.
func RemoveFile(path string) {
	if err := os.Remove(path); err != nil {
		slog.Warn("failed to clean up uploaded file", "error", err, "path", path)
	}
}
