package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/config"
	"github.com/AnshRaj112/nutrameter-backend/internal/database"
	"github.com/AnshRaj112/nutrameter-backend/internal/handlers"
	"github.com/AnshRaj112/nutrameter-backend/internal/metrics"
	"github.com/AnshRaj112/nutrameter-backend/internal/middleware"
	"github.com/AnshRaj112/nutrameter-backend/internal/routes"
	"github.com/AnshRaj112/nutrameter-backend/internal/services"
	"github.com/AnshRaj112/nutrameter-backend/internal/store"
	"github.com/AnshRaj112/nutrameter-backend/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	durable, closeDurable, err := openDurable(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDurable()
	if durable != nil {
		if err := migrate(ctx, durable, cfg.StoreTimeout); err != nil {
			log.Warn("could not ensure indexes/tables; run `migrate` once the store is reachable", zap.Error(err))
		}
	}

	m := metrics.New()
	hasher := utils.NewPasswordHasher(utils.DefaultArgon2Params)

	fallback := store.NewMemory(cfg.FallbackMaxRecords)
	if cfg.DemoSeed {
		if err := services.SeedDemoAccount(fallback, hasher, time.Now()); err != nil {
			return err
		}
		log.Info("demo account available in fallback store", zap.String("email", store.DemoUserEmail))
	}
	gateway := store.NewGateway(durable, fallback, cfg.StoreTimeout, log, store.WithFallbackObserver(m))

	analyzer := newAnalyzer(cfg, log)
	uploader := newUploader(cfg, log)
	analyzerName := ""
	if analyzer != nil {
		analyzerName = analyzer.Name()
	}

	var analysisOpts []services.AnalysisOption
	rdb := connectRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = database.DisconnectRedis(rdb) }()
		analysisOpts = append(analysisOpts, services.WithEstimateCache(services.NewRedisCache(rdb, services.DefaultCacheTTL)))
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	h := handlers.New(handlers.Deps{
		Users:            services.NewUserService(gateway, hasher, tokens, log),
		Meals:            services.NewMealService(gateway, cfg.Location),
		Progress:         services.NewProgressService(gateway, cfg.Location),
		Insights:         services.NewInsightService(gateway, cfg.Insights, cfg.Location),
		Analysis:         services.NewAnalysisService(analyzer, uploader, log, analysisOpts...),
		Health:           gateway,
		AnalysisObserver: m,
		AnalyzerName:     analyzerName,
		Logger:           log,
	})

	routeCfg := routes.Config{
		Handler:         h,
		Tokens:          tokens,
		Logger:          log,
		AllowedOrigins:  cfg.AllowedOrigins,
		Metrics:         m.Handler(),
		RequestObserver: m,
		Production:      cfg.IsProduction(),
	}
	if rdb != nil {
		routeCfg.RedisLimiter = middleware.NewRedisRateLimiter(rdb, middleware.RateLimitWindow, middleware.RateLimitMaxRequests, log)
		routeCfg.RedisLimiter.TrustProxy = cfg.TrustProxy
	}
	if cfg.IsProduction() {
		routeCfg.GlobalLimiter = middleware.NewGlobalRateLimiter()
		routeCfg.AuthLimiter = middleware.NewAuthRateLimiter()
		routeCfg.GlobalLimiter.TrustProxy = cfg.TrustProxy
		routeCfg.AuthLimiter.TrustProxy = cfg.TrustProxy
		go routeCfg.GlobalLimiter.Run(ctx)
		go routeCfg.AuthLimiter.Run(ctx)
		log.Info("production security enabled (security headers, per-IP and auth rate limiting)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.New(routeCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("nutrameter backend listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.StoreDriver),
			zap.Bool("analyzer", analyzer != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newAnalyzer(cfg *config.Config, log *zap.Logger) services.Analyzer {
	if !cfg.AnalyzerConfigured() {
		log.Warn("AI analysis is not configured; /analyze will return 503", zap.String("provider", cfg.AnalyzerProvider))
		return nil
	}
	switch cfg.AnalyzerProvider {
	case config.AnalyzerOpenAI:
		return services.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return services.NewGeminiAnalyzer(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
}

func newUploader(cfg *config.Config, log *zap.Logger) services.ImageUploader {
	if !cfg.CloudinaryConfigured() {
		log.Info("Cloudinary credentials not found; analyzed images will not be stored")
		return nil
	}
	svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if err != nil {
		log.Warn("failed to initialize Cloudinary", zap.Error(err))
		return nil
	}
	return svc
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// shared rate limit and the analysis cache are then skipped.
func connectRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisURI == "" {
		return nil
	}
	rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, log)
	if err != nil {
		log.Warn("redis unavailable, shared rate limiting and analysis cache disabled", zap.Error(err))
		return nil
	}
	return rdb
}
