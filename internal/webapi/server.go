package webapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"linguo/internal/catalog"
	"linguo/internal/clips"
	"linguo/internal/config"
	"linguo/internal/logging"
	"linguo/internal/search"
	"linguo/internal/snaps"
	"linguo/internal/stats"
)

// Server wires the service layer to the HTTP surface.
type Server struct {
	cfg    *config.Config
	store  *catalog.Store
	search *search.Engine
	clips  *clips.Service
	snaps  *snaps.Service
	stats  *stats.Collector
	logger *slog.Logger

	router *gin.Engine
}

// New constructs the server and registers its routes.
func New(cfg *config.Config, store *catalog.Store, searchEngine *search.Engine, clipService *clips.Service, snapService *snaps.Service, collector *stats.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		search: searchEngine,
		clips:  clipService,
		snaps:  snapService,
		stats:  collector,
		logger: logger.With(slog.String("component", "webapi")),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/", s.handleStats)
	router.GET("/stats", s.handleStats)
	router.GET("/episode", s.handleEpisodes)
	router.POST("/episode/:id/correction", s.handleCorrection)

	router.GET("/quote", s.handleQuote)
	router.GET("/search", s.handleSearch)
	router.GET("/context", s.handleContext)

	for _, filetype := range config.ClipFiletypes {
		router.GET("/"+filetype, s.clipHandler(filetype))
	}
	router.GET("/snap", s.handleSnap)
	router.POST("/copy", s.handleCopy)

	router.GET("/media/*filepath", s.handleMedia)

	s.router = router
	return s
}

// Router returns the underlying handler, used directly by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("listening", slog.String("bind", s.cfg.Server.Bind))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	return corsCfg
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Set(startKey, started)
		c.Next()
		s.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(started)))
	}
}
