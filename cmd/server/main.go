package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"docuvault/internal/audit"
	"docuvault/internal/auth"
	"docuvault/internal/cache"
	"docuvault/internal/config"
	"docuvault/internal/handler"
	"docuvault/internal/middleware"
	"docuvault/internal/repository/postgres"
	"docuvault/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

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

	roleAliases, err := config.LoadRoleAliases(cfg.RoleAliasFile)
	if err != nil {
		log.Fatalf("Failed to load role aliases: %v", err)
	}

	validator, err := auth.NewValidator(auth.Options{
		JWKSURL: cfg.JWKSURL,
		Secret:  cfg.JWTSecret,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create token validator: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}
	decisions := cache.New(redisClient, cfg.ACLCacheTTL, logger)

	auditor, err := audit.NewPublisher(cfg.AMQPURL, cfg.AuditQueue, logger)
	if err != nil {
		log.Fatalf("Failed to create audit publisher: %v", err)
	}
	defer auditor.Close()

	// Repositories. Every one of them routes reads and writes through the
	// tenant scope.
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Scope:  postgres.NewScope(pool),
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	grantRepo := postgres.NewGrantRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services.
	resolver := service.NewAclResolver(folderRepo, grantRepo, decisions, logger)
	authorizer := service.NewAuthorizer(validator, resolver, roleAliases, auditor, logger)
	folderService := service.NewFolderService(folderRepo, docRepo, authorizer, txManager, auditor, logger)
	docService := service.NewDocumentService(docRepo, authorizer, auditor, logger)
	grantService := service.NewGrantService(grantRepo, authorizer, decisions, auditor, logger)

	// Handlers.
	folderHandler := handler.NewFolderHandler(folderService, logger)
	docHandler := handler.NewDocumentHandler(docService, logger)
	grantHandler := handler.NewGrantHandler(grantService, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns).
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)

	// Folder routes.
	mux.HandleFunc("POST /api/folders", folderHandler.Create)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.Get)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.Update)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.Delete)
	mux.HandleFunc("GET /api/folders/{id}/tree", folderHandler.Tree)

	// Document routes.
	mux.HandleFunc("POST /api/documents", docHandler.Create)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.Get)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.Update)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.Delete)
	mux.HandleFunc("GET /api/folders/{id}/documents", docHandler.ListByFolder)

	// Grant administration routes.
	mux.HandleFunc("POST /api/folders/{id}/grants", grantHandler.Create)
	mux.HandleFunc("GET /api/folders/{id}/grants", grantHandler.ListByFolder)
	mux.HandleFunc("POST /api/grants/{id}/revoke", grantHandler.Revoke)
	mux.HandleFunc("POST /api/grants/{id}/reactivate", grantHandler.Reactivate)

	// Middleware chain, applied in reverse order (they wrap each other).
	// Order: CORS -> RequestID -> Recovery -> Auth -> Routes.
	var root http.Handler = mux
	root = middleware.Auth(validator, roleAliases, logger)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestID(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
