package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/docuflow/statement-extraction-service/internal/config"
	"github.com/docuflow/statement-extraction-service/internal/handler"
	"github.com/docuflow/statement-extraction-service/internal/middleware"
)

const landingPage = `<html>
    <head><title>Bank Statement Extraction API</title></head>
    <body style="font-family: Arial, sans-serif; max-width: 700px; margin: 40px auto;">
        <h1>Bank Statement Extraction API</h1>
        <p>This API extracts structured data from PDF bank statements using vision language models.</p>
        <ul>
            <li><b>Upload a PDF</b> to <code>/api/v1/extract</code> to extract data.</li>
            <li>Interactive API docs: <a href="/api-docs/index.html">Swagger UI</a></li>
            <li>Health check: <a href="/health">/health</a></li>
        </ul>
    </body>
</html>`

// Server is the HTTP front of the extraction service.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	log        zerolog.Logger
}

// NewServer creates and configures a new server instance.
func NewServer(cfg *config.Config, extractHandler *handler.ExtractHandler, healthHandler *handler.HealthHandler, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}
	router.Use(middleware.RequestLogger(logger))

	server := &Server{
		router: router,
		config: cfg,
		log:    logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	server.setupRoutes(extractHandler, healthHandler)
	return server
}

// setupRoutes configures all application routes.
func (s *Server) setupRoutes(extractHandler *handler.ExtractHandler, healthHandler *handler.HealthHandler) {
	s.router.GET("/health", healthHandler.Health)

	s.router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))
	})

	// Swagger UI at /api-docs/index.html
	s.router.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	api := s.router.Group("/api/v1")
	api.POST("/extract", extractHandler.Extract)
}

// Router returns the gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins listening for requests and handles graceful shutdown.
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-quit
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info().Msg("server exited gracefully")
	return nil
}
