// Package httpapi exposes the knowledge engine over REST with gin.
//
// Routes mirror the MCP tools under /api/character-knowledge. Every route
// there is scoped to a series named by a header (X-Series-ID by default) or
// a series_id query parameter.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/store"
)

// Options configures the router.
type Options struct {
	Engine *knowledge.Engine
	Store  *store.Store
	Logger *zap.Logger
	// SeriesHeader names the header carrying the series id.
	SeriesHeader string
	Version      string
	// Tools is reported by /info.
	Tools []string
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SeriesHeader == "" {
		opts.SeriesHeader = "X-Series-ID"
	}
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(opts.Logger))

	h := &handlers{engine: opts.Engine, store: opts.Store, logger: opts.Logger}

	r.GET("/health", h.health)
	r.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "storykeeper",
			"version": opts.Version,
			"tools":   opts.Tools,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/character-knowledge", requireSeries(opts.Store, opts.SeriesHeader))
	{
		api.POST("/set-state", h.setState)
		api.GET("/can-reference", h.canReference)
		api.GET("/state/:character_id/at-chapter/:chapter_id", h.state)
		api.POST("/validate-scene", h.validateScene)
		api.GET("/history/:character_id", h.history)
	}
	return r
}

// requestID reuses X-Request-ID when the caller sent one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
