package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teacher-gallery-backend/internal/adapter"
	"teacher-gallery-backend/internal/blob"
	"teacher-gallery-backend/internal/config"
	"teacher-gallery-backend/internal/directory"
	"teacher-gallery-backend/internal/events"
	"teacher-gallery-backend/internal/handlers"
	"teacher-gallery-backend/internal/middleware"
	"teacher-gallery-backend/internal/repository"
	"teacher-gallery-backend/internal/session"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	hub := events.NewHub()
	hasher := session.NewBcryptHasher()
	localAdapter := adapter.NewLocalAdapter(cfg.Local.DataFile)

	var store *directory.Store
	var gate *session.Gate
	var db *pgxpool.Pool

	if cfg.Database.Configured() {
		db, err = pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
	}

	// Choose the backend once for the process lifetime: remote when
	// configured and reachable, local otherwise.
	if db != nil && db.Ping(context.Background()) == nil {
		log.Info().Msg("Database connection established")

		blobStore, err := blob.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create blob store")
		}

		remote := adapter.NewRemoteAdapter(
			repository.NewTeacherRepository(db),
			repository.NewMediaRepository(db),
			repository.NewQuoteRepository(db),
			blobStore,
		)
		store = directory.NewStore(remote, localAdapter, hub)
		gate = session.NewRemoteGate(repository.NewUserRepository(db), hasher, cfg.Auth.JWTSecret)
	} else {
		if db != nil {
			log.Warn().Msg("Database unreachable, starting in local mode")
		} else {
			log.Info().Msg("No database configured, starting in local mode")
		}
		if cfg.Auth.AdminPasswordHash == "" {
			log.Fatal().Msg("auth.admin_password_hash is required in local mode")
		}
		store = directory.NewLocalStore(localAdapter, hub)
		gate = session.NewLocalGate(cfg.Auth.AdminPasswordHash, hasher, cfg.Auth.JWTSecret)
	}

	// Load the directory into memory
	if err := store.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load directory")
	}
	log.Info().Int("teachers", len(store.Teachers())).Bool("fallback", store.FellBack()).Msg("Directory loaded")

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(gate)
	teacherHandler := handlers.NewTeacherHandler(store)
	mediaHandler := handlers.NewMediaHandler(store)
	quoteHandler := handlers.NewQuoteHandler(store)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/session", sessionHandler.Login)
		r.Get("/session", sessionHandler.Restore)
		r.Delete("/session", sessionHandler.Logout)
		r.Get("/teachers", teacherHandler.ListTeachers)
		r.Get("/teachers/{teacher_id}", teacherHandler.GetTeacher)
		r.Get("/teachers/{teacher_id}/media", mediaHandler.ListMedia)
		r.Get("/teachers/{teacher_id}/quotes", quoteHandler.ListQuotes)
		r.Get("/media/recent", mediaHandler.RecentMedia)

		// Admin routes
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

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
