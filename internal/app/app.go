package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docqa/features/document"
	"docqa/features/qa"
	"docqa/internal/adapter/gemini"
	"docqa/internal/answer"
	"docqa/internal/config"
	"docqa/internal/middleware"
	"docqa/internal/pdf"
	"docqa/internal/ratelimit"

	"github.com/google/generative-ai-go/genai"
)

// Database is satisfied by *sql.DB; keeping it as an interface lets tests
// wire sqlmock through New without a real connection.
type Database interface {
	PingContext(ctx context.Context) error
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler         http.Handler
	DocumentService *document.Service
	QAService       *qa.Service

	port int
}

func New(
	cfg *config.Config,
	db Database,
	aiClient *genai.Client,
	pub EventPublisher,
) (*App, error) {

	// Cast db to *sql.DB for repositories that require it.
	// This allows us to use interfaces in the signature (for mocking with sqlmock)
	// while maintaining compatibility with the repositories.
	sqlDB := db.(*sql.DB)

	// Feature: Document
	docRepo := document.NewPostgresRepo(sqlDB)
	docService := document.NewService(docRepo, pdf.Extract, pub)
	docHandler := document.NewHandler(docService, cfg.UploadDir, cfg.MaxUploadSizeMB)

	// Adapters: Gemini
	embedder := gemini.NewEmbedder(aiClient, cfg.EmbeddingModel)
	generator := gemini.NewGenerator(aiClient, cfg.GenerationModel, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)

	// QA pipeline
	answerService := answer.NewService(embedder, generator, answer.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Separator:    cfg.ChunkSeparator,
		TopK:         cfg.RetrievalTopK,
	})

	limiter := ratelimit.New(ratelimit.Options{
		MinInterval: cfg.MinRequestIntervalSeconds,
		Floor:       cfg.BackoffFloorSeconds,
		Ceiling:     cfg.BackoffCeilingSeconds,
	})

	qaService := qa.NewService(docService, answerService, limiter)
	qaHandler := qa.NewHandler(qaService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /documents/upload", middleware.CorrelationID(enableCORS(docHandler.Upload)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(docHandler.List)))

	mux.Handle("POST /qa/question", middleware.CorrelationID(enableCORS(qaHandler.Question)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:         mux,
		DocumentService: docService,
		QAService:       qaService,
		port:            cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
