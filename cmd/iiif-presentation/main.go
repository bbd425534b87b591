package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dlcs/iiif-presentation-sub002/internal/config"
	"github.com/dlcs/iiif-presentation-sub002/internal/infrastructure/providers"
	"github.com/dlcs/iiif-presentation-sub002/internal/infrastructure/repository"
	"github.com/dlcs/iiif-presentation-sub002/internal/present/rest"
	"github.com/dlcs/iiif-presentation-sub002/internal/service"
	"github.com/dlcs/iiif-presentation-sub002/internal/usecase"
)

const serviceName = "iiif-presentation"

func main() {
	ctx := context.Background()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTracer(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mc := providers.NewMemcache(conf.Server.MemcachedAddr)
	rdb := providers.NewRedis(conf.Server)
	cl := providers.NewClient()

	domainConf := conf.Domain()
	paths := service.NewPathService(domainConf)
	ids := service.NewIDService()
	signal := service.NewSignalService(rdb)

	paintingRepo := repository.NewCanvasPaintingRepository(db)
	manifestRepo := repository.NewManifestRepository(db, mc)
	source := providers.NewAssetSourceGateway(cl, conf.Presentation)

	merger := usecase.NewMerger(paths, paths)
	manifests := usecase.NewManifestUsecase(paintingRepo, manifestRepo, ids, paths, merger, source)
	ingest := service.NewIngestService(manifests, signal)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(serviceName))
	}

	handler := rest.NewHandler(domainConf, manifests, ingest, signal)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTracer(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)

	return func() {
		_ = tp.Shutdown(ctx)
	}, nil
}
