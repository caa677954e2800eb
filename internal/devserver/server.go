package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"penora-write/internal/generation"
	"penora-write/shared/authutils"
	"penora-write/shared/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// Server - локальная реализация Account Service и Generation Service для разработки и e2e-тестов
type Server struct {
	cfg    *Config
	router *gin.Engine
	logger *zap.Logger
}

// Deps позволяет подменить внешние зависимости (в тестах)
type Deps struct {
	Generator generation.Generator
	Federated FederatedVerifier
}

// New собирает сервер: хранилища, JWT, генератор, маршруты
func New(cfg *Config, deps Deps, logger *zap.Logger) (*Server, error) {
	tokens, err := authutils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT manager: %w", err)
	}

	generator := deps.Generator
	if generator == nil {
		generator, err = generation.New(generation.Config{
			Backend:   cfg.Generation.Backend,
			AIBaseURL: cfg.Generation.AIBaseURL,
			AIModel:   cfg.Generation.AIModel,
			AIAPIKey:  cfg.Generation.AIAPIKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
	}

	federated := deps.Federated
	if federated == nil && cfg.GoogleClientID != "" {
		federated = NewGoogleVerifier(cfg.GoogleClientID)
	}

	handler := NewHandler(NewUserStore(cfg.BcryptCost), NewStoryStore(), tokens, federated, generator, logger)
	return &Server{
		cfg:    cfg,
		router: NewRouter(cfg, handler, logger),
		logger: logger,
	}, nil
}

// Handler возвращает http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewRouter создает gin.Engine с middleware и маршрутами
func NewRouter(cfg *Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ZapLoggingMiddlewareForGin(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	// Middleware gin применяется только к маршрутам, зарегистрированным после Use
	if cfg.MetricsEnabled {
		p := ginprometheus.NewPrometheus("penora_devserver_gin")
		p.Use(router)
	}

	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	handler.RegisterRoutes(router)
	return router
}

// Run слушает порт до отмены ctx, затем корректно останавливается
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("port", s.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP Server forced to shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("Server exiting")
	return nil
}
