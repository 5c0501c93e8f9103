// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command devapi serves the in-memory development backend for inkwell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
	"github.com/AleutianAI/inkwell/services/devapi"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	addr           string
	secret         string
	blockThreshold int
	tokenTTL       time.Duration
	logLevel       string
	seedDemo       bool
	traceExporter  string

	rootCmd = &cobra.Command{
		Use:          "devapi",
		Short:        "Run the in-memory Inkwell backend for local development",
		SilenceUsage: true,
		RunE:         runServer,
	}
)

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", envOr("INKWELL_DEVAPI_ADDR", ":8000"), "listen address")
	rootCmd.Flags().StringVar(&secret, "secret", os.Getenv("INKWELL_DEVAPI_SECRET"), "JWT signing secret (random when empty)")
	rootCmd.Flags().IntVar(&blockThreshold, "block-threshold", devapi.DefaultBlockThreshold, "blocks that hide an article from every feed")
	rootCmd.Flags().DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "session cookie lifetime")
	rootCmd.Flags().StringVar(&logLevel, "log-level", envOr("INKWELL_LOG_LEVEL", "info"), "debug, info, warn or error")
	rootCmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "create "+devapi.DemoEmail+" with a few articles")
	rootCmd.Flags().StringVar(&traceExporter, "trace-exporter", envOr("OTEL_TRACES_EXPORTER", "none"), "otlp, stdout or none")
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "devapi: .env: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(logLevel),
		Service: "inkwell-devapi",
		JSON:    true,
	})
	defer logger.Close()

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = "inkwell-devapi"
	tcfg.TraceExporter = traceExporter
	tcfg.MetricExporter = "none"
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	if secret == "" {
		secret = uuid.NewString()
		logger.Info("no secret configured, sessions end when devapi restarts")
	}

	store := devapi.NewStore(devapi.WithBlockThreshold(blockThreshold))
	if seedDemo {
		if _, err := devapi.SeedDemo(store); err != nil {
			return err
		}
		logger.Info("demo account ready", "email", devapi.DemoEmail)
	}

	srv, err := devapi.New(devapi.Config{
		Addr:           addr,
		Secret:         secret,
		TokenTTL:       tokenTTL,
		BlockThreshold: blockThreshold,
		Store:          store,
		Logger:         logger,
		Registry:       prometheus.NewRegistry(),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
