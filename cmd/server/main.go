package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"quill/internal/auth"
	"quill/internal/config"
	"quill/internal/handler"
	"quill/internal/metrics"
	"quill/internal/middleware"
	"quill/internal/repository/memory"
	"quill/internal/repository/postgres"
	postgresVersioning "quill/internal/repository/postgres/versioning"
	serviceAuth "quill/internal/service/auth"
	serviceVersioning "quill/internal/service/versioning"
	"quill/internal/service/versioning/converter"
	"quill/internal/templates"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage", cfg.StorageDriver,
	)

	ctx := context.Background()

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := newVerifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Metrics on a private registry with the standard runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	// Storage
	deps, closeStorage, err := newStorage(ctx, cfg, m, logger)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}
	defer closeStorage()

	deps.Decomposer = serviceVersioning.NewBlockDecomposer()
	deps.Metrics = m
	deps.Location = cfg.CommitTimezone
	deps.Logger = logger
	deps.Authorizer = serviceAuth.NewOwnerBasedAuthorizer(deps.DocRepo)

	catalog, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Create services
	docService := serviceVersioning.NewDocumentService(deps, catalog, converter.NewHTMLConverter())
	commitService := serviceVersioning.NewCommitService(deps)
	restoreService := serviceVersioning.NewRestoreService(deps)
	diffService := serviceVersioning.NewDiffService(deps)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, restoreService, logger)
	commitHandler := handler.NewCommitHandler(commitService, diffService, logger)

	// Setup router
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, docHandler, commitHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Metrics → Routes
	h = middleware.Metrics(m)(h)
	h = middleware.RequireAuth("/api/", jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newVerifier verifies Supabase tokens, or accepts any token in dev when no
// Supabase project is configured
func newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.JWTVerifier, error) {
	if cfg.SupabaseJWKSURL == "" && cfg.Environment == "dev" {
		return auth.NewDevVerifier(cfg.DevUserID, logger), nil
	}
	return auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
}

// newStorage builds the repositories for the configured driver.
// The returned func releases the connection pool, if any.
func newStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*serviceVersioning.Dependencies, func(), error) {
	if cfg.StorageDriver == "memory" {
		logger.Warn("using in-memory storage: data is lost on restart")
		store := memory.NewStore()
		blobRepo := memory.NewBlobRepository(store)
		return &serviceVersioning.Dependencies{
			DocRepo:    memory.NewDocumentRepository(store),
			CommitRepo: memory.NewCommitRepository(store),
			TxManager:  memory.NewTransactionManager(store),
			Blobs:      serviceVersioning.NewBlobStore(blobRepo, serviceVersioning.NewHasher(), m, logger),
			Trees:      serviceVersioning.NewTreeStore(memory.NewTreeRepository(store)),
		}, func() {}, nil
	}

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("schema ensured", "documents_table", tables.Documents)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	return &serviceVersioning.Dependencies{
		DocRepo:    postgresVersioning.NewDocumentRepository(repoConfig),
		CommitRepo: postgresVersioning.NewCommitRepository(repoConfig),
		TxManager:  postgres.NewTransactionManager(pool, logger),
		Blobs:      serviceVersioning.NewBlobStore(postgresVersioning.NewBlobRepository(repoConfig), serviceVersioning.NewHasher(), m, logger),
		Trees:      serviceVersioning.NewTreeStore(postgresVersioning.NewTreeRepository(repoConfig)),
	}, pool.Close, nil
}
