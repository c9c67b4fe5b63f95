// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/growthdesk/growthdesk/services/dashboard/config"
	"github.com/growthdesk/growthdesk/services/dashboard/observability"
	"github.com/growthdesk/growthdesk/services/dashboard/routes"
	"github.com/growthdesk/growthdesk/services/dashboard/storage/sqlite"
	"github.com/growthdesk/growthdesk/services/dashboard/sync"
	"github.com/growthdesk/growthdesk/services/dashboard/sync/refs"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("dashboard-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	} else {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
	}

	metrics := observability.InitMetrics()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("FATAL: could not open the experiment store: %v", err)
	}
	defer store.Close()

	refStore, err := refs.Open(cfg.RefsPath)
	if err != nil {
		log.Fatalf("FATAL: could not open the sync ref store: %v", err)
	}
	defer refStore.Close()

	notion := sync.NewNotionMirror(cfg.NotionToken, cfg.NotionDatabaseID, cfg.DashboardURL, refStore)
	drive := sync.NewDriveMirror(cfg.DriveAccessToken, cfg.DriveFolderID, refStore)

	if !cfg.EnableWrites {
		slog.Warn("writes are disabled, set GROWTHDESK_ENABLE_WRITES=true to enable the write path")
	}
	slog.Info("sync targets",
		"notion", notion.Configured(),
		"drive", drive.Configured())

	router := gin.Default()
	router.Use(otelgin.Middleware("dashboard-service"))

	routes.SetupRoutes(router, routes.Deps{
		Store:         store,
		Notion:        notion,
		Drive:         drive,
		Importer:      notion,
		Metrics:       metrics,
		WritesEnabled: cfg.EnableWrites,
	})

	slog.Info("starting the dashboard server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
