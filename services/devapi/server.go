// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package devapi is an in-memory development backend for the Inkwell
// client.
//
// It serves the full HTTP boundary the client talks to so that the CLI can
// be exercised end to end without the production backend. State lives in
// memory and is lost on exit.
//
// # Authentication
//
// POST /signin sets an HS256 JWT in the "token" cookie. Later requests that
// send the cookie are checked against it; requests without it are served
// anonymously so a fresh client process, which starts with an empty cookie
// jar, keeps working from its persisted session.
//
// # Usage
//
//	srv, err := devapi.New(devapi.Config{Addr: ":8000", Secret: "dev"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(srv.Run(ctx))
package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// =============================================================================
// Configuration
// =============================================================================

// Config configures a Server. Zero values use defaults.
type Config struct {
	// Addr is the listen address. Default ":8000".
	Addr string

	// Secret signs session tokens. Required.
	Secret string

	// TokenTTL is the session cookie lifetime. Default 24h.
	TokenTTL time.Duration

	// BlockThreshold hides an article once this many users blocked it.
	// Default DefaultBlockThreshold.
	BlockThreshold int

	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool

	// GinMode is "debug", "release" or "test". Default "release".
	GinMode string

	// ShutdownTimeout bounds graceful shutdown. Default 5s.
	ShutdownTimeout time.Duration

	// Store replaces the fresh in-memory store, e.g. to pre-seed it.
	Store *Store

	Logger *logging.Logger

	// Registry receives the server metrics and backs /metrics. Nil uses a
	// fresh registry.
	Registry *prometheus.Registry
}

func applyDefaults(cfg Config) Config {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = gin.ReleaseMode
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Store == nil {
		cfg.Store = NewStore(WithBlockThreshold(cfg.BlockThreshold))
	}
	return cfg
}

// =============================================================================
// Server
// =============================================================================

// Server is the development backend.
//
// # Thread Safety
//
// Safe for concurrent requests. Run is called at most once.
type Server struct {
	cfg     Config
	store   *Store
	auth    AuthProvider
	metrics *telemetry.ServerMetrics
	logger  *logging.Logger
	router  *gin.Engine
}

// New builds a Server with every route registered.
func New(cfg Config) (*Server, error) {
	cfg = applyDefaults(cfg)
	auth, err := NewJWTProvider(cfg.Secret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	gin.SetMode(cfg.GinMode)
	s := &Server{
		cfg:     cfg,
		store:   cfg.Store,
		auth:    auth,
		metrics: telemetry.NewServerMetrics(cfg.Registry),
		logger:  cfg.Logger.With("component", "devapi"),
	}
	s.initRouter()
	s.updateCounts()
	return s, nil
}

// Router returns the gin engine, e.g. for httptest.
func (s *Server) Router() *gin.Engine { return s.router }

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devapi listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("devapi: serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("devapi shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("devapi: shutdown: %w", err)
	}
	return nil
}

func (s *Server) initRouter() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("inkwell-devapi"))
	r.Use(s.requestLogger())
	r.Use(CookieAuth(s.auth))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{})))
	r.GET("/images/:id", s.handleImage)

	r.POST("/signup", s.handleSignUp)
	r.POST("/signin", s.handleSignIn)
	r.PATCH("/edit-profile", s.handleEditProfile)

	r.GET("/get-all-categories", s.handleCategories)
	r.POST("/select-category", s.handleSelectCategory)

	r.POST("/create-article", s.handleCreateArticle)
	r.POST("/get-all-articles", s.handleFeed)
	r.POST("/view-article", s.handleViewArticle)
	r.POST("/my-articles", s.handleMyArticles)
	r.PUT("/edit-article", s.handleEditArticle)

	r.PATCH("/like-article", s.handleReaction(datatypes.ReactionLike))
	r.PATCH("/dislike-article", s.handleReaction(datatypes.ReactionDislike))
	r.POST("/block-article", s.handleBlock)

	s.router = r
}

// requestLogger logs one line per request, tagged with the client's
// X-Request-ID.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetHeader("X-Request-ID"),
		)
	}
}

func (s *Server) updateCounts() {
	s.metrics.SetCounts(s.store.Counts())
}
