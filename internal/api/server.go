// Package api serves the inventory over HTTP with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"netinv/internal/inventory"
	"netinv/internal/model"
)

// Options holds the collaborators of a Server.
type Options struct {
	Service *inventory.Service
	Ops     inventory.OperationLog
	Auth    *TokenAuth
	Logger  *slog.Logger
	Clock   inventory.Clock
	// Registry receives the metrics; a new registry is created when nil.
	Registry *prometheus.Registry
	Cache    CacheStats
}

// Server is the HTTP front of an inventory Service.
type Server struct {
	svc     *inventory.Service
	ops     inventory.OperationLog
	auth    *TokenAuth
	logger  *slog.Logger
	clock   inventory.Clock
	reg     *prometheus.Registry
	metrics *Metrics
	router  *gin.Engine
}

func NewServer(o Options) *Server {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Clock == nil {
		o.Clock = inventory.RealClock{}
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
	if o.Auth == nil {
		o.Auth = NewTokenAuth(nil)
	}
	s := &Server{
		svc:     o.Service,
		ops:     o.Ops,
		auth:    o.Auth,
		logger:  o.Logger,
		clock:   o.Clock,
		reg:     o.Registry,
		metrics: NewMetrics(o.Registry, o.Cache),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger), instrument(s.metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	v1.Use(s.auth.Middleware())
	if s.ops != nil {
		v1.Use(audit(s.ops, s.clock, s.logger))
	}
	{
		v1.GET("/dashboard", s.dashboard)
		v1.GET("/history", s.history)
		v1.GET("/export.xlsx", s.exportWorkbook)
		v1.POST("/import", s.importWorkbook)
		v1.GET("/unassigned/:kind", s.unassigned)

		sites := v1.Group("/sites")
		{
			sites.GET("", s.listSites)
			sites.POST("", s.createSite)
			sites.GET("/:id", s.getSite)
			sites.PATCH("/:id", s.updateSite)
			sites.DELETE("/:id", s.deleteSite)
			sites.GET("/:id/summary", s.siteSummary)
			sites.POST("/:id/floorplan", s.uploadFloorplan)
			sites.POST("/:id/rack-photos", s.addRackPhoto)
			sites.DELETE("/:id/rack-photos", s.removeRackPhoto)
			for _, k := range model.DependentKinds {
				sites.GET("/:id/"+string(k), s.listBySite(k))
			}
		}

		for _, k := range model.DependentKinds {
			g := v1.Group("/" + string(k))
			g.GET("", s.listRecords(k))
			g.POST("", s.createRecord(k))
			g.GET("/:id", s.getRecord(k))
			g.PATCH("/:id", s.updateRecord(k))
			g.DELETE("/:id", s.deleteRecord(k))
			g.POST("/:id/assign", s.assign(k))
			g.POST("/:id/unassign", s.unassign(k))
		}
	}
	return router
}
