package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/focusflow/internal/classifier"
	"github.com/pbaille/focusflow/internal/logging"
	"github.com/pbaille/focusflow/internal/metrics"
	"github.com/pbaille/focusflow/internal/store"
)

// Options configures a Server. Zero values get sensible defaults.
type Options struct {
	Addr        string
	CORSOrigins []string
	Classifier  classifier.Classifier
	Forecaster  classifier.Forecaster
	Metrics     *metrics.Metrics
	Logger      logging.Logger
	// Now is the clock used for "today"; tests pin it
	Now func() time.Time
}

// Server handles HTTP requests for the FocusFlow API
type Server struct {
	store      *store.Store
	addr       string
	origins    []string
	classifier classifier.Classifier
	forecaster classifier.Forecaster
	metrics    *metrics.Metrics
	log        logging.Logger
	now        func() time.Time
}

// New creates a new API server
func New(s *store.Store, opts Options) *Server {
	srv := &Server{
		store:      s,
		addr:       opts.Addr,
		origins:    opts.CORSOrigins,
		classifier: opts.Classifier,
		forecaster: opts.Forecaster,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if srv.addr == "" {
		srv.addr = ":8000"
	}
	if srv.classifier == nil {
		srv.classifier = classifier.RuleClassifier{}
	}
	if srv.forecaster == nil {
		srv.forecaster = classifier.WeekdayMean{}
	}
	if srv.metrics == nil {
		srv.metrics = metrics.New()
	}
	if srv.log == nil {
		srv.log = logging.New(nil)
	}
	if srv.now == nil {
		srv.now = time.Now
	}
	return srv
}

// Handler builds the gin engine with every route registered
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.withLogging(), s.metrics.GinMiddleware(), s.withCORS())

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.POST("/users", s.createUser)

	authed := r.Group("/", requireUser())

	user := authed.Group("/user")
	user.GET("/profile", s.getProfile)
	user.PUT("/profile", s.updateProfile)
	user.GET("/settings", s.getSettings)
	user.PUT("/settings", s.updateSettings)
	user.DELETE("/delete", s.deleteUser)

	authed.POST("/onboarding", s.completeOnboarding)

	tasks := authed.Group("/tasks")
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTask)
	tasks.PUT("/:id", s.updateTask)
	tasks.DELETE("/:id", s.deleteTask)
	tasks.PATCH("/:id/status", s.setTaskStatus)

	focus := authed.Group("/focus")
	focus.POST("/start", s.startFocus)
	focus.POST("/end", s.endFocus)

	activity := authed.Group("/activity")
	activity.POST("", s.addActivity)
	activity.GET("/features", s.activityFeatures)
	activity.GET("/series", s.activitySeries)

	dashboard := authed.Group("/dashboard")
	dashboard.GET("/summary", s.dashboardSummary)
	dashboard.GET("/hourly", s.dashboardHourly)

	analytics := authed.Group("/analytics")
	analytics.GET("/weekly", s.analyticsWeekly)
	analytics.GET("/summary", s.analyticsSummary)
	analytics.GET("/breakdown", s.analyticsBreakdown)
	analytics.GET("/daily-trend", s.analyticsDailyTrend)

	ml := authed.Group("/ml")
	ml.GET("/tomorrow", s.predictTomorrow)
	ml.GET("/recommendation", s.recommendFocus)
	ml.GET("/forecast", s.forecastWeek)
	ml.POST("/score", s.scoreLogs)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", s.addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down server")
	return httpSrv.Shutdown(shutdownCtx)
}

// withCORS allows the configured frontend origins
func (s *Server) withCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+userHeader)
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// withLogging puts a request-scoped logger in the request context
func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := s.log.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), log))
		c.Next()
		log.Debug("request", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "FocusFlow API is running"})
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
