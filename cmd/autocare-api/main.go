package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/autocarehq/autocare/internal/config"
	"github.com/autocarehq/autocare/internal/events"
	"github.com/autocarehq/autocare/internal/handlers"
	"github.com/autocarehq/autocare/internal/httpx"
	"github.com/autocarehq/autocare/internal/identity"
	"github.com/autocarehq/autocare/internal/metrics"
	"github.com/autocarehq/autocare/internal/objectstore"
	"github.com/autocarehq/autocare/internal/otelx"
	"github.com/autocarehq/autocare/internal/provision"
	"github.com/autocarehq/autocare/internal/runtime"
	"github.com/autocarehq/autocare/internal/storage"
)

//go:embed web
var webFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.ServiceName)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.Config{
		Enabled:      cfg.OTELEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTELOTLPEndpoint,
		SampleRatio:  cfg.OTELSampleRatio,
	})
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("aws config load failed", "err", err)
		panic(err)
	}
	s3API := s3.NewFromConfig(awsCfg)
	cognitoAPI := cognito.NewFromConfig(awsCfg)
	ddbAPI := dynamodb.NewFromConfig(awsCfg)

	bootCtx, cancelBoot := context.WithTimeout(ctx, 3*time.Minute)
	resources, err := provision.Bootstrap(bootCtx, logger, provision.Spec{
		Region:        cfg.AWSRegion,
		BucketName:    cfg.BucketName,
		TableName:     cfg.TableName,
		UserPoolName:  cfg.UserPoolName,
		AppClientName: cfg.AppClientName,
	}, s3API, cognitoAPI, ddbAPI)
	cancelBoot()
	if err != nil {
		logger.Error("provisioning failed", "err", err)
		panic(err)
	}
	cfg.UserPoolID = resources.UserPoolID
	cfg.AppClientID = resources.AppClientID

	ids := identity.NewClient(cognitoAPI, cfg.UserPoolID, cfg.AppClientID)
	bucket := objectstore.NewBucket(s3API, cfg.BucketName, cfg.AWSRegion, cfg.UploadURLTTL)
	repo := storage.NewAppointmentRepository(ddbAPI, cfg.TableName)

	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	checks := []runtime.ReadyCheck{
		{Name: "dynamodb", Check: repo.ReadyCheck()},
		{Name: "s3", Check: bucket.ReadyCheck()},
		{Name: "cognito", Check: ids.ReadyCheck()},
	}
	var rateLimitMW httpx.Middleware
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		rateLimitMW = httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute).Middleware(logger)
		logger.Info("rate limiting enabled (redis)", "per_minute", cfg.RateLimitPerMinute, "redis_addr", cfg.RedisAddr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
	}
	if cfg.KafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: events.ReadyCheck(cfg.KafkaBrokers)})
	}

	authHandler := handlers.NewAuthHandler(ids, logger)
	uploadHandler := handlers.NewUploadHandler(bucket, collector, logger)
	apptHandler := handlers.NewAppointmentHandler(repo, publisher, collector, logger, cfg.StrictValidation)

	mux := http.NewServeMux()
	runtime.RegisterHealth(mux, checks...)
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/api/auth/signup", authHandler.Signup)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.Handle("/api/auth/logout", handlers.RequireAuth(ids, logger, authHandler.Logout))
	mux.Handle("/api/upload-url", handlers.RequireAuth(ids, logger, uploadHandler.Issue))
	mux.Handle("/api/appointments", handlers.RequireAuth(ids, logger, apptHandler.Appointments))

	assets, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", handlers.Static(assets))

	handler := httpx.Chain(mux,
		httpx.WithCORS(cfg.CORSAllowedOrigins),
		httpx.WithRequestID,
		httpx.WithObservability(logger, collector),
		httpx.WithBodyLimit(cfg.BodyLimitBytes),
		httpx.WithTimeout(cfg.RequestTimeout),
		rateLimitMW,
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(handler, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
