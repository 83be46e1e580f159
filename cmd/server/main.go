package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"inkstone/internal/config"
	"inkstone/internal/content"
	"inkstone/internal/handler"
	"inkstone/internal/middleware"
	"inkstone/internal/repository/postgres"
	"inkstone/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database connected")

	// Content store
	contentStore, err := content.NewStore(cfg.ContentRoot, logger)
	if err != nil {
		log.Fatalf("Failed to open content store: %v", err)
	}
	logger.Info("content store ready", "root", contentStore.Root())

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	tagRepo := postgres.NewTagRepository(repoConfig)
	searchIndex := postgres.NewSearchIndex(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	versionService := service.NewVersionService(
		versionRepo,
		docRepo,
		time.Duration(cfg.SnapshotIntervalMinutes)*time.Minute,
		cfg.MaxVersions,
		logger,
	)
	documentService := service.NewDocumentService(docRepo, folderRepo, contentStore, searchIndex, versionService, logger)
	folderService := service.NewFolderService(folderRepo, docRepo, txManager, logger)
	tagService := service.NewTagService(tagRepo, docRepo, logger)

	// Create handlers
	documentHandler := handler.NewDocumentHandler(documentService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	healthHandler := handler.NewHealthHandler(pool)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Check)

	// Document routes
	mux.HandleFunc("POST /api/documents", documentHandler.Create)
	mux.HandleFunc("GET /api/documents", documentHandler.List)
	mux.HandleFunc("GET /api/documents/search", documentHandler.Search)
	mux.HandleFunc("GET /api/documents/{id}", documentHandler.Get)
	mux.HandleFunc("PATCH /api/documents/{id}", documentHandler.Update)
	mux.HandleFunc("DELETE /api/documents/{id}", documentHandler.Delete)
	mux.HandleFunc("GET /api/documents/{id}/content", documentHandler.GetContent)
	mux.HandleFunc("PUT /api/documents/{id}/content", documentHandler.UpdateContent)
	mux.HandleFunc("POST /api/documents/{id}/snapshot", documentHandler.Snapshot)

	// Version routes
	mux.HandleFunc("GET /api/documents/{id}/versions", versionHandler.List)
	mux.HandleFunc("GET /api/documents/{id}/versions/{versionId}", versionHandler.Get)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.Create)
	mux.HandleFunc("GET /api/folders", folderHandler.List)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.Get)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.Update)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.Delete)

	// Tag routes
	mux.HandleFunc("POST /api/tags", tagHandler.Create)
	mux.HandleFunc("GET /api/tags", tagHandler.List)
	mux.HandleFunc("PATCH /api/tags/{id}", tagHandler.Update)
	mux.HandleFunc("DELETE /api/tags/{id}", tagHandler.Delete)
	mux.HandleFunc("GET /api/documents/{id}/tags", tagHandler.ListForDocument)
	mux.HandleFunc("PUT /api/documents/{id}/tags/{tagId}", tagHandler.Attach)
	mux.HandleFunc("DELETE /api/documents/{id}/tags/{tagId}", tagHandler.Detach)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.AuthMiddleware([]byte(cfg.JWTSecret), logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shut down cleanly on SIGINT/SIGTERM so in-flight multi-store updates
	// finish instead of leaving the content store ahead of metadata.
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
