package qa

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"docqa/internal/ai"
	"docqa/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Question(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID int64  `json:"document_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.DocumentID == 0 {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "document_id is required", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "question is required", http.StatusBadRequest)
		return
	}

	answer, err := h.service.Ask(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		h.writeFailure(r.Context(), w, req.DocumentID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(answer); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeFailure maps pipeline errors onto the HTTP surface. Throttling and
// upstream exhaustion become 429 with a retry hint, transient and embedding
// failures 503, unknown documents 404, everything else a generic 500 with the
// cause logged but not exposed.
func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, documentID int64, err error) {
	var throttled *ThrottledError
	switch {
	case errors.As(err, &throttled):
		h.writeRetry(w, fmt.Sprintf("Please wait %.1f seconds before making another request", throttled.Wait),
			throttled.Wait, http.StatusTooManyRequests)
	case errors.Is(err, sql.ErrNoRows):
		h.writeError(ctx, w, "NOT_FOUND", "Document not found", http.StatusNotFound)
	case errors.Is(err, ai.ErrQuotaExceeded):
		backoff := h.service.BackoffSeconds()
		h.writeRetry(w, fmt.Sprintf("Model API quota exceeded. Please wait %.0f seconds before trying again.", backoff),
			backoff, http.StatusTooManyRequests)
	case errors.Is(err, ai.ErrRateLimited):
		backoff := h.service.BackoffSeconds()
		h.writeRetry(w, fmt.Sprintf("Too many requests. Please wait %.0f seconds before trying again.", backoff),
			backoff, http.StatusTooManyRequests)
	case errors.Is(err, ai.ErrTransient), errors.Is(err, ai.ErrEmbedding):
		backoff := h.service.BackoffSeconds()
		h.writeRetry(w, fmt.Sprintf("Upstream model temporarily unavailable. Please retry in %.0f seconds.", backoff),
			backoff, http.StatusServiceUnavailable)
	default:
		slog.ErrorContext(ctx, "question failed", "document_id", documentID, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "An error occurred while processing your request.", http.StatusInternalServerError)
	}
}

func (h *Handler) writeRetry(w http.ResponseWriter, detail string, retryAfter float64, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]interface{}{
		"detail":              detail,
		"retry_after_seconds": retryAfter,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
