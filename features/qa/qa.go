package qa

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/features/document"
	"docqa/internal/ratelimit"
)

// Answer is the response for one question against one document.
type Answer struct {
	Answer     string `json:"answer"`
	DocumentID int64  `json:"document_id"`
}

// ThrottledError rejects a request that arrived inside the per-document
// minimum interval. The attempt is not recorded.
type ThrottledError struct {
	Wait float64
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled: retry in %.1fs", e.Wait)
}

// DocumentStore is the slice of the document feature this service needs.
type DocumentStore interface {
	Get(ctx context.Context, id int64) (*document.Document, error)
}

// Answerer runs the retrieval-augmented pipeline over loaded content.
type Answerer interface {
	Answer(ctx context.Context, question, content string) (string, error)
}

type Service struct {
	docs     DocumentStore
	answerer Answerer
	limiter  *ratelimit.Limiter
}

func NewService(docs DocumentStore, answerer Answerer, limiter *ratelimit.Limiter) *Service {
	return &Service{docs: docs, answerer: answerer, limiter: limiter}
}

// Ask answers a question about a stored document. Order matters: admission is
// checked before any downstream work, the request is recorded before the
// pipeline starts so overlapping calls still space out, and the outcome is
// reported after the pipeline finishes so the backoff tracks upstream health.
func (s *Service) Ask(ctx context.Context, documentID int64, question string) (*Answer, error) {
	if wait := s.limiter.Admit(documentID); wait > 0 {
		return nil, &ThrottledError{Wait: wait}
	}

	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	s.limiter.Record(documentID)

	text, err := s.answerer.Answer(ctx, question, doc.Content)
	s.limiter.ReportOutcome(err == nil)
	if err != nil {
		slog.ErrorContext(ctx, "qa pipeline failed", "document_id", documentID, "error", err)
		return nil, err
	}

	return &Answer{Answer: text, DocumentID: documentID}, nil
}

// BackoffSeconds exposes the limiter's current backoff window for retry hints.
func (s *Service) BackoffSeconds() float64 {
	return s.limiter.Backoff()
}
