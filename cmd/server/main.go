package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"SP-DOCS/internal"
	"SP-DOCS/internal/config"
	"SP-DOCS/internal/handlers"
	"SP-DOCS/internal/packs"
	"SP-DOCS/internal/repository"
	"SP-DOCS/internal/services"
	"SP-DOCS/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.NewLogger(cfg.Log.Level)

	// Initialize database
	if err := internal.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize storage client based on configuration
	ctx := context.Background()
	var storageClient storage.StorageClient
	var localStorageClient *storage.LocalStorageClient

	switch cfg.Storage.Type {
	case "gcs":
		log.Printf("Initializing GCS storage with bucket: %s", cfg.GCS.BucketName)
		client, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize GCS client: %v", err)
		}
		storageClient = client
		log.Printf("GCS storage initialized")
	case "local":
		fallthrough
	default:
		log.Printf("Initializing local storage at: %s", cfg.Storage.LocalPath)
		client, err := storage.NewLocalStorageClient(cfg.Storage.LocalPath, cfg.Storage.LocalURL, cfg.Storage.SecretKey)
		if err != nil {
			log.Fatalf("Failed to initialize local storage client: %v", err)
		}
		storageClient = client
		localStorageClient = client
		log.Printf("Local storage initialized with base URL: %s", cfg.Storage.LocalURL)
	}
	defer storageClient.Close()

	// Repositories
	caseRepo := repository.NewCaseRepository(internal.DB)
	documentRepo := repository.NewDocumentRepository(internal.DB)
	counterRepo := repository.NewCounterRepository(internal.DB)
	auditRepo := repository.NewAuditRepository(internal.DB)
	overrideRepo := repository.NewPackOverrideRepository(internal.DB)

	// Services
	registry := packs.NewRegistry(cfg.Templates.Dir)
	auditService := services.NewAuditService(auditRepo, logger)
	statsService := services.NewStatisticsService(internal.DB, logger)
	allocator := services.NewRunningNumberAllocator(counterRepo, auditService)
	caseService := services.NewCaseService(caseRepo, auditService)
	packService := services.NewPackService(registry, overrideRepo, auditService)
	converter := services.NewConversionClient(cfg.Converter.URL, cfg.Converter.Timeout, logger)
	log.Printf("Conversion service configured with URL: %s, timeout: %s", cfg.Converter.URL, cfg.Converter.Timeout)

	documentService := services.NewDocumentService(services.DocumentServiceParams{
		Cases:     caseRepo,
		Documents: documentRepo,
		Overrides: overrideRepo,
		Registry:  registry,
		Filler:    services.NewTemplateFiller(logger),
		Converter: converter,
		Archiver:  services.NewArchiveBuilder(),
		Allocator: allocator,
		Audit:     auditService,
		Stats:     statsService,
		Storage:   storageClient,
		WorkDir:   cfg.Templates.WorkDir,
		Log:       logger,
	})

	// Handlers
	caseHandler := handlers.NewCaseHandler(caseService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	packHandler := handlers.NewPackHandler(packService)
	auditHandler := handlers.NewAuditHandler(auditService)
	statsHandler := handlers.NewStatisticsHandler(statsService)

	// Initialize Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Organization-Id", "X-User-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"storage":   cfg.Storage.Type,
		})
	})

	// Local file server endpoint (only for local storage with public URL configured)
	// For internal-only deployments, files are streamed through /documents/:id/download endpoint
	if localStorageClient != nil && cfg.Storage.LocalURL != "" && cfg.Storage.LocalURL != "internal://storage" {
		r.GET("/files/*filepath", func(c *gin.Context) {
			filePath := c.Param("filepath")
			if filePath == "" || filePath == "/" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "file path required"})
				return
			}

			// Remove leading slash
			if filePath[0] == '/' {
				filePath = filePath[1:]
			}

			// Security: Reject path traversal attempts
			cleanPath := filepath.Clean(filePath)
			if strings.Contains(cleanPath, "..") || strings.HasPrefix(cleanPath, "/") || strings.HasPrefix(cleanPath, "\\") {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid file path"})
				return
			}

			// Security: Always require signed URLs for file access
			expiresStr := c.Query("expires")
			signature := c.Query("signature")

			if signature == "" || expiresStr == "" {
				c.JSON(http.StatusForbidden, gin.H{"error": "signed URL required"})
				return
			}

			var expiresAt int64
			if _, err := fmt.Sscanf(expiresStr, "%d", &expiresAt); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires parameter"})
				return
			}

			if !localStorageClient.VerifySignedURL(cleanPath, expiresAt, signature) {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired signature"})
				return
			}

			// Security: Verify the resolved path is within storage directory
			fullPath := localStorageClient.GetFilePath(cleanPath)
			absPath, err := filepath.Abs(fullPath)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve path"})
				return
			}
			basePath, err := filepath.Abs(localStorageClient.GetBasePath())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve base path"})
				return
			}
			if !strings.HasPrefix(absPath, basePath+string(filepath.Separator)) {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				return
			}

			c.File(fullPath)
		})
		log.Printf("Local file server enabled at /files/*")
	} else if localStorageClient != nil {
		log.Printf("Local storage in internal-only mode - files served via /documents/:id/download")
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(handlers.RequireIdentity())
	{
		// Procurement cases
		v1.POST("/cases", caseHandler.CreateCase)
		v1.GET("/cases", caseHandler.ListCases)
		v1.GET("/cases/:id", caseHandler.GetCase)

		// Document generation and history
		v1.POST("/cases/:id/documents", documentHandler.GeneratePack)
		v1.GET("/cases/:id/documents", documentHandler.ListDocuments)
		v1.GET("/documents/:id/download", documentHandler.DownloadDocument)
		v1.POST("/documents/:id/number-override", documentHandler.OverrideNumber)

		// Running numbers
		v1.POST("/running-numbers", documentHandler.AllocateNumber)

		// Template pack catalog
		v1.GET("/packs", packHandler.ListPacks)
		v1.PUT("/packs/:id/activation", packHandler.SetPackActivation)

		// Audit trail
		v1.GET("/audit-logs", auditHandler.ListAuditLogs)

		// Statistics
		v1.GET("/statistics/summary", statsHandler.GetSummary)
	}

	// Create HTTP server with increased timeouts for document conversion
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s (environment: %s)", cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := internal.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited")
}
