// Package server exposes the engine over HTTP: JSON endpoints for every
// read and build operation and a websocket streaming live quotes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/engine"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	engine   *engine.Engine
	debounce time.Duration
	upgrader websocket.Upgrader
	router   *gin.Engine
	l        *logrus.Logger
}

// New builds the router. debounce is the quiet period of websocket quote
// sessions.
func New(e *engine.Engine, debounce time.Duration, l *logrus.Logger) *Server {
	s := &Server{
		engine:   e,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		l: l,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/networks", s.listNetworks)

		names := v1.Group("/names/:name")
		names.GET("/config", s.resolveConfig)
		names.POST("/config", s.buildConfigTx)
		names.GET("/owner", s.resolveOwner)
		names.GET("/intent", s.paymentIntent)

		v1.GET("/owners/:address/names", s.ownedNames)
		v1.GET("/feeders/:address", s.recentFeeders)

		v1.POST("/splits/validate", s.validateSplits)
		v1.POST("/splits/resolve", s.resolveSplits)

		v1.POST("/quote", s.getQuote)
		v1.GET("/ws/quote", s.quoteStream)
	}
	return r
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.l.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(started).String(),
		}).Debug("request served")
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.l.WithField("listen", addr).Info("server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.l.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
