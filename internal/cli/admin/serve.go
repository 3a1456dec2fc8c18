package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/lumenboard/lumenboard/internal/api/handlers"
	"github.com/lumenboard/lumenboard/internal/config"
	"github.com/lumenboard/lumenboard/internal/database"
	"github.com/lumenboard/lumenboard/internal/domain"
	"github.com/lumenboard/lumenboard/internal/extract"
	"github.com/lumenboard/lumenboard/internal/jobs"
	"github.com/lumenboard/lumenboard/internal/openai"
	"github.com/lumenboard/lumenboard/internal/repository"
	"github.com/lumenboard/lumenboard/internal/server"
	"github.com/lumenboard/lumenboard/internal/service"
	"github.com/lumenboard/lumenboard/internal/storage"
	"github.com/lumenboard/lumenboard/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lumenboard knowledge API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	embeddingRepo := repository.NewEmbeddingRepository(pool)
	sourceRepo := repository.NewSourceRepository(pool)

	store := service.NewVectorStore(embeddingRepo)
	if err := store.Open(ctx); err != nil {
		return fmt.Errorf("failed to load vector index: %w", err)
	}
	defer store.Close()
	log.Printf("vector index loaded (%d records)", store.Len())

	cache := service.NewSearchCache(cfg.SearchCacheTTL)
	searchSvc := service.NewSearchServiceWithDefaults(store, cache, domain.SearchOptions{
		TopK:      cfg.SearchTopK,
		Threshold: cfg.SimilarityThreshold,
	})

	sweeper := jobs.NewWorker(jobs.NewCacheSweeper(cache), cfg.CacheSweepInterval)
	go sweeper.Start(ctx)

	var archive service.DocumentArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("document archive bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	var processorSvc handlers.DocumentProcessorService
	if cfg.HasOpenAI() {
		embeddingClient := openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      openaiapi.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
		processorSvc = service.NewDocumentProcessorWithArchive(
			extract.NewExtractor(),
			embeddingClient,
			store,
			sourceRepo,
			archive,
		)
		log.Println("document processor ready")
	} else {
		processorSvc = &NoOpDocumentProcessor{}
	}

	routerCfg := server.RouterConfig{
		SimilarityHandler: handlers.NewSimilarityHandler(searchSvc),
		UploadHandler:     handlers.NewUploadHandler(processorSvc),
		SourceHandler:     handlers.NewSourceHandler(sourceRepo),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpDocumentProcessor rejects uploads when no embedding provider is configured.
type NoOpDocumentProcessor struct{}

func (p *NoOpDocumentProcessor) Process(ctx context.Context, input service.ProcessInput) (string, error) {
	return "", fmt.Errorf("document processor not configured: OPENAI_API_KEY required")
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
