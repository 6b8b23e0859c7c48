package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitswalk/bazaar/src/bazaard/api"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	_ "github.com/bitswalk/bazaar/src/bazaard/docs"
	"github.com/bitswalk/bazaar/src/bazaard/storage"
	"github.com/bitswalk/bazaar/src/common/cli"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server holds the HTTP server instance and configuration
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	database    *db.Database
	storage     storage.Backend
	rateLimiter *api.RateLimiter
	api         *api.API
}

// ServerConfig holds the components a Server is built from
type ServerConfig struct {
	Database *db.Database
	// Storage may be nil, which disables the product image endpoints
	Storage      storage.Backend
	Tokens       *auth.TokenService
	Hasher       auth.PasswordHasher
	RateLimit    api.RateLimitConfig
	MaxImageSize int64
	// TrustedProxies may set the client IP through X-Forwarded-For. Empty
	// means the socket address is the client IP.
	TrustedProxies []string
}

// NewServer creates a new Server instance
func NewServer(cfg ServerConfig) *Server {
	if viper.GetString("log.level") == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", "proxies", cfg.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.CustomRecovery(recoveryHandler))
	router.Use(corsMiddleware())
	router.Use(ginLogger())

	var rateLimiter *api.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = api.NewRateLimiter(cfg.RateLimit)
	}

	api.SetLogger(log)
	api.SetVersionInfo(VersionInfo)
	apiInstance := api.New(api.Config{
		Database:     cfg.Database,
		Storage:      cfg.Storage,
		Tokens:       cfg.Tokens,
		Hasher:       cfg.Hasher,
		MaxImageSize: cfg.MaxImageSize,
		RateLimiter:  rateLimiter,
	})

	apiInstance.RegisterRoutes(router)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		router:      router,
		database:    cfg.Database,
		storage:     cfg.Storage,
		rateLimiter: rateLimiter,
		api:         apiInstance,
	}
}

// Handler returns the router, for serving without Run
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Run() error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	addr := fmt.Sprintf("%s:%d", bind, port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tlsEnabled := viper.GetBool("server.tls.enabled")
	certPath := cli.GetExpandedString("server.tls.cert_path")
	keyPath := cli.GetExpandedString("server.tls.key_path")
	if tlsEnabled && (certPath == "" || keyPath == "") {
		return fmt.Errorf("TLS enabled but server.tls.cert_path or server.tls.key_path is empty")
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting bazaard server", "address", addr, "tls", tlsEnabled)

		if s.storage != nil {
			log.Info("Image storage enabled", "type", s.storage.Type(), "location", s.storage.Location())
		} else {
			log.Warn("Image storage not configured - product image endpoints disabled")
		}

		var err error
		if tlsEnabled {
			err = s.httpServer.ListenAndServeTLS(certPath, keyPath)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Received signal, shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

// Shutdown stops the HTTP server and the rate limiter, then persists the database
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error("HTTP server shutdown error", "error", err)
		}
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.database != nil {
		log.Info("Persisting database to disk")
		if err := s.database.Shutdown(); err != nil {
			log.Error("Database shutdown error", "error", err)
			return err
		}
		log.Info("Database persisted successfully")
	}

	return nil
}

// recoveryHandler answers a panicking request with a generic 500
func recoveryHandler(c *gin.Context, recovered any) {
	log.Error("Panic while handling request", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errors.NewResponse(fmt.Errorf("panic: %v", recovered)))
}

// corsMiddleware returns a gin middleware for handling CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Expose-Headers", "WWW-Authenticate, Retry-After")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ginLogger returns a gin middleware for logging requests
func ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}

		log.Debug("HTTP request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// openDatabase opens the database at database.path
func openDatabase() (*db.Database, error) {
	dbPath := viper.GetString("database.path")
	log.Info("Initializing database", "persist_path", dbPath)

	db.SetLogger(log)
	database, err := db.New(db.Config{
		PersistPath: dbPath,
		LoadOnStart: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

// openStorage creates the image backend. A bucket that cannot be created is
// logged and left to fail per request.
func openStorage() (storage.Backend, error) {
	cfg := storageConfig()
	log.Info("Initializing image storage", "type", cfg.Type)

	backend, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if s3Backend, ok := backend.(*storage.S3Backend); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s3Backend.EnsureBucket(ctx); err != nil {
			log.Warn("S3 bucket not accessible - image uploads may fail", "location", s3Backend.Location(), "error", err)
		} else {
			log.Debug("S3 bucket verified", "location", s3Backend.Location())
		}
	}
	return backend, nil
}

// runServer is called by the root command to start the server
func runServer() error {
	log.Info("bazaard starting",
		"version", VersionInfo.Version,
		"build_date", VersionInfo.BuildDate,
		"log_output", log.Output(),
	)

	auth.SetLogger(log)

	database, err := openDatabase()
	if err != nil {
		return err
	}

	server, err := buildServer(database)
	if err != nil {
		if dbErr := database.Shutdown(); dbErr != nil {
			log.Error("Failed to persist database", "error", dbErr)
		}
		return err
	}

	err = server.Run()

	if shutdownErr := server.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// buildServer wires tokens, hashing, storage and rate limiting around database
func buildServer(database *db.Database) (*Server, error) {
	secret, err := signingSecret(database)
	if err != nil {
		return nil, err
	}
	tokenCfg, err := tokenConfig(secret)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService(tokenCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	backend, err := openStorage()
	if err != nil {
		return nil, err
	}

	return NewServer(ServerConfig{
		Database:       database,
		Storage:        backend,
		Tokens:         tokens,
		Hasher:         auth.NewBcryptHasher(viper.GetInt("auth.bcrypt_cost")),
		RateLimit:      rateLimitConfig(),
		MaxImageSize:   viper.GetInt64("storage.max_image_size"),
		TrustedProxies: viper.GetStringSlice("server.trusted_proxies"),
	}), nil
}
