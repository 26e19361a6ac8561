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
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lazobello/cvagent/internal/api/handlers"
	"github.com/lazobello/cvagent/internal/api/middleware"
	"github.com/lazobello/cvagent/internal/config"
	"github.com/lazobello/cvagent/internal/corpus"
	"github.com/lazobello/cvagent/internal/domain"
	"github.com/lazobello/cvagent/internal/jobs"
	"github.com/lazobello/cvagent/internal/notification"
	"github.com/lazobello/cvagent/internal/openai"
	"github.com/lazobello/cvagent/internal/repository"
	"github.com/lazobello/cvagent/internal/server"
	"github.com/lazobello/cvagent/internal/service"
	"github.com/lazobello/cvagent/internal/storage"
	"github.com/lazobello/cvagent/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the cvagent API server on the specified port",
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
			Debug:            cfg.Debug,
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

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	contactRepo := repository.NewContactRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(apiKeyRepo, uuidGen)

	if cfg.InitAPIKey != "" {
		if err := bootstrapInitialKey(ctx, cfg, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap API key: %w", err)
		}
	}

	// The corpus snapshot lives in S3 when configured, on disk otherwise.
	var mirror corpus.Mirror
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		mirror = storage.NewSnapshotMirror(s3Client, cfg.S3SnapshotKey)
	} else {
		mirror = corpus.NewFileMirror(cfg.EmbeddingsFilePath)
	}

	store := corpus.NewStore(mirror)
	if err := store.LoadFromMirror(ctx); err != nil {
		log.Printf("corpus snapshot load failed (starting empty): %v", err)
	} else {
		log.Printf("corpus loaded with %d fragments", store.Len())
	}

	var providerClient *openai.Client
	if cfg.HasOpenAI() {
		providerClient = openai.NewClient(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			ChatModel:      cfg.OpenAIChatModel,
			EmbeddingModel: openai.ResolveEmbeddingModel(cfg.OpenAIEmbeddingModel),
		})
	}

	var notifier service.Notifier
	var notificationWorker *jobs.Worker
	if cfg.HasSMTP() {
		mailer, err := notification.NewMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		})
		if err != nil {
			return fmt.Errorf("failed to create mailer: %w", err)
		}
		notifier = mailer

		notificationProcessor := jobs.NewNotificationWorker(contactRepo, mailer)
		notificationWorker = jobs.NewWorker(notificationProcessor, 60*time.Second)
		go notificationWorker.Start(ctx)
		log.Println("notification worker started")
	} else {
		log.Println("SMTP not configured, confirmation emails disabled")
	}

	contactSvc := service.NewContactService(contactRepo, notifier, uuidGen)

	var ragSvc *service.RagService
	var chatSvc *service.ChatService
	if providerClient != nil {
		ragSvc = service.NewRagService(store, providerClient)
		chatSvc = service.NewChatService(contactSvc, ragSvc, providerClient)
	} else {
		noop := &NoOpProviderClient{}
		ragSvc = service.NewRagService(store, noop)
		chatSvc = service.NewChatService(contactSvc, ragSvc, noop)
		log.Println("OPENAI_API_KEY not set, chat falls back to a fixed answer")
	}

	routerCfg := server.RouterConfig{
		AuthValidator:    authSvc,
		ChatHandler:      handlers.NewChatHandler(chatSvc),
		ContactHandler:   handlers.NewContactHandler(contactSvc),
		KnowledgeHandler: handlers.NewKnowledgeHandler(ragSvc),
		ChatQuota:        middleware.NewDailyQuota(cfg.ChatDailyLimit),
		ContactQuota:     middleware.NewDailyQuota(cfg.ContactDailyLimit),
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

	if notificationWorker != nil {
		notificationWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpProviderClient stands in for the AI provider when no API key is
// configured. Every call fails as a provider error, which the chat
// service reduces to its fixed fallback answer.
type NoOpProviderClient struct{}

func (c *NoOpProviderClient) CreateEmbedding(ctx context.Context, text string) ([]float64, error) {
	return nil, domain.NewDomainError(domain.ErrCodeProvider, "AI provider not configured: OPENAI_API_KEY required")
}

func (c *NoOpProviderClient) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	return "", domain.NewDomainError(domain.ErrCodeProvider, "AI provider not configured: OPENAI_API_KEY required")
}

func bootstrapInitialKey(ctx context.Context, cfg *config.Config, authSvc *service.AuthService) error {
	if !service.IsValidAPIToken(cfg.InitAPIKey) {
		return fmt.Errorf("invalid CVAGENT_INIT_API_KEY format (expected 'cv_<64 hex chars>')")
	}

	existingKey, err := authSvc.GetAPIKeyByToken(ctx, cfg.InitAPIKey)
	if err == nil && existingKey != nil {
		log.Printf("bootstrap: API key already exists (id: %s)", existingKey.ID)
		return nil
	}

	if err := authSvc.CreateAPIKeyWithToken(ctx, "bootstrap", cfg.InitAPIKey); err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	log.Printf("bootstrap: created API key")

	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
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
