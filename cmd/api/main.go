package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/analyses"
	"salesagent-backend/internal/auth"
	"salesagent-backend/internal/cache"
	"salesagent-backend/internal/config"
	"salesagent-backend/internal/customers"
	"salesagent-backend/internal/db"
	"salesagent-backend/internal/documents"
	"salesagent-backend/internal/employees"
	"salesagent-backend/internal/meetings"
	"salesagent-backend/internal/notifications"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/proposals"
	"salesagent-backend/internal/questions"
	"salesagent-backend/internal/rag"
	"salesagent-backend/internal/references"
	"salesagent-backend/internal/users"
	"salesagent-backend/internal/validation"
)

type repositories struct {
	users      users.Repository
	projects   projects.Repository
	customers  customers.Repository
	employees  employees.Repository
	references references.Repository
	analyses   analyses.Repository
	questions  questions.Repository
	meetings   meetings.Repository
	proposals  proposals.Repository
	documents  documents.Repository
}

func memoryRepositories() repositories {
	return repositories{
		users:      users.NewMemoryRepository(),
		projects:   projects.NewMemoryRepository(),
		customers:  customers.NewMemoryRepository(),
		employees:  employees.NewMemoryRepository(),
		references: references.NewMemoryRepository(),
		analyses:   analyses.NewMemoryRepository(),
		questions:  questions.NewMemoryRepository(),
		meetings:   meetings.NewMemoryRepository(),
		proposals:  proposals.NewMemoryRepository(),
		documents:  documents.NewMemoryRepository(),
	}
}

func mongoRepositories(cols *db.Collections) repositories {
	return repositories{
		users:      users.NewMongoRepository(cols.Users),
		projects:   projects.NewMongoRepository(cols.Projects),
		customers:  customers.NewMongoRepository(cols.Customers),
		employees:  employees.NewMongoRepository(cols.Employees),
		references: references.NewMongoRepository(cols.References),
		analyses:   analyses.NewMongoRepository(cols.Analyses),
		questions:  questions.NewMongoRepository(cols.Questions),
		meetings:   meetings.NewMongoRepository(cols.Meetings),
		proposals:  proposals.NewMongoRepository(cols.Proposals),
		documents:  documents.NewMongoRepository(cols.Documents),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repos := memoryRepositories()
	if cfg.StoreDriver == config.StoreMongo {
		var client *mongo.Client
		var cols *db.Collections
		client, cols, err = db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
		defer client.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx, cols); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		repos = mongoRepositories(cols)
	} else {
		logger.Info("memory store enabled")
	}

	cacheStore := newCache(ctx, cfg, logger)

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "salesagent-backend",
		}
	} else {
		logger.Warn("auth disabled: JWT_SECRET not set")
	}

	var completer ai.Completer
	aiClient, err := ai.NewClient(ai.ClientConfig{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Info("ai client disabled: fallbacks only")
	case err != nil:
		logger.Error("ai client failed", slog.String("error", err.Error()))
		os.Exit(1)
	default:
		logger.Info("ai client enabled", slog.String("model", aiClient.Model()))
		completer = aiClient
	}

	ragClient, embedder := newRAG(ctx, cfg, logger)
	var retriever ai.ContextRetriever
	if ragClient != nil {
		retriever = ragClient
		defer ragClient.Close()
	}

	var notifier proposals.Notifier
	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
		notifier = mailer
	}

	storage := newStorage(cfg, logger)

	val := validation.New()
	loc := cfg.Timezone

	aiService := ai.NewService(completer, retriever, val, loc, logger)
	userService := users.NewService(repos.users, loc)
	projectService := projects.NewService(repos.projects, loc)
	customerService := customers.NewService(repos.customers, loc)
	employeeService := employees.NewService(repos.employees, loc)
	referenceService := references.NewService(repos.references, loc)
	analysisService := analyses.NewService(repos.analyses, projectService, loc)
	questionService := questions.NewService(repos.questions, projectService, analysisService, aiService, loc)
	meetingService := meetings.NewService(repos.meetings, projectService, analysisService, questionService, aiService, loc)
	proposalService := proposals.NewService(repos.proposals, proposals.Deps{
		Projects:  projectService,
		Analyses:  analysisService,
		Meetings:  meetingService,
		Questions: questionService,
		Customers: customerService,
		Assistant: aiService,
		Notifier:  notifier,
	}, loc)
	documentService := documents.NewService(repos.documents, storage, projectService, loc)
	projectService.OnDelete(questionService, analysisService, meetingService, proposalService, documentService)

	h := handlerSet{
		ai:         ai.NewHandler(aiService, val, logger),
		rag:        rag.NewHandler(ragClient, embedder, completer, cacheStore, time.Duration(cfg.CacheTTLSeconds)*time.Second, val, logger),
		users:      users.NewHandler(userService, jwtManager, cfg.CookieSecure, val, logger),
		projects:   projects.NewHandler(projectService, val, logger),
		customers:  customers.NewHandler(customerService, val, logger),
		employees:  employees.NewHandler(employeeService, val, logger),
		references: references.NewHandler(referenceService, val, logger),
		analyses:   analyses.NewHandler(analysisService, val, logger),
		questions:  questions.NewHandler(questionService, val, logger),
		meetings:   meetings.NewHandler(meetingService, val, logger),
		proposals:  proposals.NewHandler(proposalService, val, logger),
		documents:  documents.NewHandler(documentService, logger),
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           newRouter(cfg, logger, jwtManager, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}

// newCache prefers Redis when configured and otherwise keeps an
// in-process LRU.
func newCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err == nil {
			err = redisCache.Ping(ctx)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis cache enabled")
		return redisCache
	}

	lru, err := cache.NewLRU(cfg.CacheSize)
	if err != nil {
		logger.Warn("lru cache disabled", slog.String("error", err.Error()))
		return cache.NewNoop()
	}
	logger.Info("lru cache enabled", slog.Int("size", cfg.CacheSize))
	return lru
}

func newRAG(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*rag.Client, rag.Embedder) {
	if !cfg.RAG.Configured() {
		logger.Info("vertex rag disabled")
		return nil, nil
	}
	creds, err := rag.NewGoogleCredentials()
	if err != nil {
		logger.Warn("vertex rag disabled: no credentials", slog.String("error", err.Error()))
		return nil, nil
	}
	client, err := rag.NewClient(ctx, rag.Config{
		ProjectID:    cfg.RAG.ProjectID,
		Location:     cfg.RAG.Location,
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
		Credentials:  creds,
	})
	if err != nil {
		logger.Warn("vertex rag disabled", slog.String("error", err.Error()))
		return nil, nil
	}

	var embedder rag.Embedder
	genaiEmbedder, err := rag.NewGenAIEmbedder(ctx, cfg.RAG.ProjectID, cfg.RAG.Location, cfg.RAG.EmbeddingModel)
	if err != nil {
		logger.Warn("embeddings disabled", slog.String("error", err.Error()))
	} else {
		embedder = genaiEmbedder
	}
	logger.Info("vertex rag enabled", slog.String("project", cfg.RAG.ProjectID), slog.String("location", cfg.RAG.Location))
	return client, embedder
}

func newStorage(cfg *config.Config, logger *slog.Logger) documents.Storage {
	if !cfg.Storage.Configured() {
		logger.Info("object storage not configured: keeping uploads in memory")
		return documents.NewMemoryStorage()
	}
	s3, err := documents.NewS3Storage(documents.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Error("object storage failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("object storage enabled", slog.String("endpoint", cfg.Storage.Endpoint), slog.String("bucket", cfg.Storage.Bucket))
	return s3
}
