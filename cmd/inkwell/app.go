// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AleutianAI/inkwell/cmd/inkwell/config"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/session"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/tui"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/views"
	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
	"github.com/AleutianAI/inkwell/pkg/ux"
	"github.com/prometheus/client_golang/prometheus"
)

// appOptions are the persistent flags that shape an App.
type appOptions struct {
	ConfigPath  string
	APIURL      string
	Personality string
	NoInput     bool
	Verbose     bool
	MetricsFile string
}

// appOverrides replaces the terminal-bound collaborators of the next App.
// A nil Prompter keeps the defaults.
var appOverrides struct {
	Prompter    Prompter
	Interactive bool
	RunFeed     func(ctx context.Context, ctrl tui.FeedController) (string, error)
}

// App is everything one inkwell invocation works with.
//
// # Description
//
// It is built in the root command's PersistentPreRunE and closed after
// Execute returns, whatever the outcome.
type App struct {
	cfg         config.InkwellConfig
	opts        appOptions
	logger      *logging.Logger
	printer     *ux.Printer
	client      *api.Client
	sessions    *session.Store
	watcher     *session.Watcher
	router      *guard.Router
	registry    *prometheus.Registry
	metrics     *telemetry.ClientMetrics
	shutdown    func(context.Context) error
	prompter    Prompter
	interactive bool
	runFeed     func(ctx context.Context, ctrl tui.FeedController) (string, error)

	// input is consumed by the first screen that finds it.
	input screenInput

	signIn     *views.SignIn
	signUp     *views.SignUp
	categories *views.CategorySelection
	profile    *views.Profile
	create     *views.CreateArticle
	detail     *views.ArticleDetail
	mine       *views.MyArticles
	feed       *views.Feed
}

// newApp loads configuration and wires every collaborator.
//
// # Inputs
//
//   - ctx: Bounds telemetry start-up only.
//   - out, errOut: Where user-facing output goes.
//   - opts: Persistent flag values.
//
// # Outputs
//
//   - *App: Ready to navigate. The caller must Close it.
//   - error: Configuration, session storage or telemetry failures.
func newApp(ctx context.Context, out, errOut io.Writer, opts appOptions) (*App, error) {
	cfg, created, err := config.LoadFrom(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
		if err := cfg.Validate(); err != nil {
			return nil, UsageError("inkwell", err)
		}
	}

	if opts.Personality != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(opts.Personality))
	} else {
		ux.InitPersonality(cfg.UX.Personality)
	}
	p := ux.GetPersonality()
	p.ShowTags = cfg.UX.ShowTags
	ux.SetPersonality(p)

	a := &App{
		cfg:      cfg,
		opts:     opts,
		printer:  ux.NewPrinter(out, errOut),
		registry: prometheus.NewRegistry(),
		shutdown: func(context.Context) error { return nil },
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if opts.Verbose {
		level = logging.LevelDebug
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "inkwell",
		JSON:    cfg.Logging.JSON,
		Quiet:   !opts.Verbose,
		Output:  errOut,
	})
	if created {
		a.logger.Info("created default config", "path", configPath(opts))
	}

	if err := a.initTelemetry(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initSession(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.client, err = api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		Logger:    a.logger,
		Metrics:   a.metrics,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.interactive = ux.IsInteractive() && !opts.NoInput
	a.prompter = Prompter(NoPrompter{})
	if a.interactive {
		a.prompter = NewFormPrompter(nil, nil, false)
	}
	a.runFeed = func(ctx context.Context, ctrl tui.FeedController) (string, error) {
		return tui.RunFeed(ctx, ctrl)
	}
	if appOverrides.Prompter != nil {
		a.prompter = appOverrides.Prompter
		a.interactive = appOverrides.Interactive
	}
	if appOverrides.RunFeed != nil {
		a.runFeed = appOverrides.RunFeed
	}

	deps := views.Deps{
		API:      a.client,
		Sessions: a.sessions,
		Notifier: views.PrinterNotifier{Printer: a.printer},
		Logger:   a.logger,
		Metrics:  a.metrics,
	}
	a.signIn = views.NewSignIn(deps)
	a.signUp = views.NewSignUp(deps)
	a.categories = views.NewCategorySelection(deps)
	a.profile = views.NewProfile(deps)
	a.create = views.NewCreateArticle(deps)
	a.detail = views.NewArticleDetail(deps)
	a.mine = views.NewMyArticles(deps)
	a.feed = views.NewFeed(deps)

	a.router = guard.NewRouter(a.sessions, a.logger)
	a.registerScreens()
	return a, nil
}

func configPath(opts appOptions) string {
	if opts.ConfigPath != "" {
		return opts.ConfigPath
	}
	return config.DefaultPath()
}

func (a *App) initTelemetry(ctx context.Context) error {
	tcfg := telemetry.DefaultConfig()
	if v := a.cfg.Telemetry.TraceExporter; v != "" {
		tcfg.TraceExporter = v
	}
	if v := a.cfg.Telemetry.MetricExporter; v != "" {
		tcfg.MetricExporter = v
	}
	if v := a.cfg.Telemetry.OTLPEndpoint; v != "" {
		tcfg.OTLPEndpoint = v
	}
	tcfg.Registerer = a.registry

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	a.shutdown = shutdown
	a.metrics = telemetry.NewClientMetrics(a.registry)
	return nil
}

func (a *App) initSession(ctx context.Context) error {
	persister, err := session.OpenPersister(a.cfg.Session.Backend, a.cfg.Session.Dir, a.logger)
	if err != nil {
		return fmt.Errorf("session storage: %w", err)
	}
	a.sessions = session.NewStore(persister, a.logger)
	if user, ok := a.sessions.Restore(); ok {
		a.logger.Debug("session restored", "user_id", user.ID)
	}

	fp, isFile := persister.(*session.FilePersister)
	if !a.cfg.Session.Watch || !isFile {
		return nil
	}
	w, err := session.NewWatcher(a.sessions, fp.Path(), session.DefaultDebounce, a.logger)
	if err != nil {
		a.logger.Warn("session watch unavailable", "error", err)
		return nil
	}
	if err := w.Start(ctx); err != nil {
		a.logger.Warn("session watch unavailable", "error", err)
		w.Stop()
		return nil
	}
	a.watcher = w
	return nil
}

// Navigate renders target and follows forwards.
func (a *App) Navigate(ctx context.Context, target string) error {
	return a.router.Navigate(ctx, target)
}

// Close waits for in-flight reactions, then releases everything in reverse
// order of construction.
func (a *App) Close() error {
	var errs []error
	if a.feed != nil {
		a.feed.Reconciler().Wait()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session: %w", err))
		}
	}
	if a.opts.MetricsFile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.opts.MetricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if a.logger != nil {
		if err := errors.Join(errs...); err != nil {
			a.logger.Warn("close", "error", err)
		}
		a.logger.Close()
	}
	return errors.Join(errs...)
}
