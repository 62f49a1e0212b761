package adapters

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/toyz/conduit/pkg/conduit"
)

// ServerConfig holds configuration for the hosted web server
type ServerConfig struct {
	// Port is the port to listen on (default: 8080)
	Port string

	// Host is the host to bind to (default: "")
	Host string

	// EnableCORS enables CORS middleware (default: true)
	EnableCORS bool

	// EnableLogger enables request logging middleware (default: true)
	EnableLogger bool

	// EnableRecover enables panic recovery middleware (default: true)
	EnableRecover bool

	// ShutdownTimeout is the timeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns a server configuration with sensible defaults
func DefaultServerConfig() *ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &ServerConfig{
		Port:            port,
		Host:            "",
		EnableCORS:      true,
		EnableLogger:    true,
		EnableRecover:   true,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server hosts endpoint plans on an Echo instance
type Server struct {
	echo    *echo.Echo
	adapter *EchoAdapter
	config  *ServerConfig
}

// NewServer creates a new server with the given configuration
func NewServer(config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = false

	if config.EnableRecover {
		e.Use(middleware.Recover())
	}
	if config.EnableLogger {
		e.Use(middleware.Logger())
	}
	if config.EnableCORS {
		e.Use(middleware.CORS())
	}

	return &Server{
		echo:    e,
		adapter: NewEchoAdapter(e),
		config:  config,
	}
}

// Echo returns the underlying Echo instance for advanced configuration
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Mount registers every endpoint from the registry with the server
func (s *Server) Mount(registry conduit.EndpointRegistry) {
	registry.Apply(s.adapter)
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	go func() {
		addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
		log.Printf("Starting server on %s", addr)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server shutdown complete")
	return nil
}
