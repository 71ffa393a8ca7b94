package gin

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginlib "github.com/gin-gonic/gin"

	"storefront/internal/config"
	"storefront/pkg/logger"
)

// NewEngine builds the gin engine with the shared middleware stack.
func NewEngine(env string, log logger.Logger) *ginlib.Engine {
	if env == "production" || env == "prod" {
		ginlib.SetMode(ginlib.ReleaseMode)
	}

	r := ginlib.New()
	r.Use(ginlib.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	return r
}

// Server wraps http.Server so the caller controls shutdown.
type Server struct {
	http *http.Server
}

func NewServer(cfg config.ServerConfig, engine *ginlib.Engine) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Address(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until Shutdown is called; a normal shutdown returns nil.
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
