package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	awspkg "github.com/kpsbusiness/paywall/pkg/aws"
	ddbpkg "github.com/kpsbusiness/paywall/pkg/dynamodb"
	"github.com/kpsbusiness/paywall/services/access-service/config"
	"github.com/kpsbusiness/paywall/services/access-service/controllers"
	"github.com/kpsbusiness/paywall/services/access-service/providers"
	"github.com/kpsbusiness/paywall/services/access-service/routes"
	"github.com/kpsbusiness/paywall/services/access-service/services"
	"github.com/kpsbusiness/paywall/services/access-service/session"
	"github.com/kpsbusiness/paywall/services/common/logger"
	"github.com/kpsbusiness/paywall/services/common/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[AccessService] Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// --- AWS setup (only when a feature needs it) ---
	needsAWS := cfg.UseSecrets || cfg.OrderEventsTopicARN != "" || cfg.CloudWatchEnabled ||
		cfg.SessionStore == config.SessionStoreDynamoDB
	var awsCfg sdkaws.Config
	var awsErr error
	if needsAWS {
		awsCfg, awsErr = awspkg.LoadAWSConfig(ctx)
	}
	awsReady := needsAWS && awsErr == nil

	// --- Logger (optionally shipping to CloudWatch Logs) ---
	var shipper io.Writer
	if cfg.CloudWatchEnabled && awsReady {
		cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, services.ServiceName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[AccessService] CloudWatch Logs disabled: %v\n", err)
		} else {
			shipper = cw
		}
	}
	log := logger.MustNew(cfg.Env, shipper)
	defer log.Sync()

	if awsErr != nil {
		if cfg.SessionStore == config.SessionStoreDynamoDB {
			log.Fatal("AWS config is required for the DynamoDB session store", zap.Error(awsErr))
		}
		log.Warn("AWS config load failed, AWS features disabled (non-fatal)", zap.Error(awsErr))
	}

	if cfg.UseSecrets && awsReady {
		for _, err := range cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg)) {
			log.Warn("Secrets Manager override skipped", zap.Error(err))
		}
	}

	logPaymentStatus(log, cfg)

	// --- Session store ---
	store, closeStore, err := buildSessionStore(ctx, cfg, awsCfg, log)
	if err != nil {
		log.Fatal("Session store init failed", zap.String("store", cfg.SessionStore), zap.Error(err))
	}

	sessions, err := session.NewManager(session.ManagerConfig{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatal("Session manager init failed", zap.Error(err))
	}

	// --- Optional event trail and metrics ---
	var events awspkg.SNSPublisher
	if cfg.OrderEventsTopicARN != "" && awsReady {
		events = awspkg.NewSNSClient(awsCfg)
	}
	var metrics awspkg.MetricsRecorder
	if cfg.CloudWatchEnabled && awsReady {
		metrics = awspkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, true)
	}

	// --- Dependency injection ---
	provider := providers.NewPayPalProvider(providers.PayPalConfig{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		Mode:         cfg.PayPalMode,
		Timeout:      cfg.ProviderTimeout,
	})
	svc := services.NewAccessService(services.Deps{
		Provider: provider,
		Store:    store,
		Config:   cfg,
		Events:   events,
		Metrics:  metrics,
		Logger:   log,
	})
	ac := controllers.NewAccessController(svc, sessions, log)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute), 10, 10*time.Minute)
		defer limiter.Close()
	}

	// --- HTTP router ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(metrics, services.ServiceName))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.APIContentSecurityPolicy))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterAccessRoutes(r, ac, limiter)

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Access Service started",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("frontend_url", cfg.FrontendURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := closeStore(); err != nil {
		log.Error("Session store close error", zap.Error(err))
	}

	log.Info("Access Service stopped gracefully")
}

// buildSessionStore returns the configured store and a function releasing
// its resources.
func buildSessionStore(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, log *zap.Logger) (session.Store, func() error, error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := session.NewRedisStore(client, cfg.SessionTTL)
		log.Info("Using Redis session store")
		return store, store.Close, nil

	case config.SessionStoreDynamoDB:
		client := ddbpkg.NewClientFromConfig(awsCfg)
		if err := ddbpkg.EnableTTL(ctx, client, cfg.SessionTable, session.TTLAttribute); err != nil {
			log.Warn("Could not enable DynamoDB TTL, expired items are still filtered on read", zap.Error(err))
		}
		log.Info("Using DynamoDB session store", zap.String("table", cfg.SessionTable))
		return session.NewDynamoStore(client, cfg.SessionTable, cfg.SessionTTL), func() error { return nil }, nil

	default:
		store := session.NewMemoryStore(cfg.SessionTTL, time.Minute)
		log.Warn("Using in-memory session store, sessions are lost on restart")
		return store, store.Close, nil
	}
}

func mark(ok bool) string {
	if ok {
		return "✓ Set"
	}
	return "✗ Missing"
}

// logPaymentStatus prints the PayPal configuration block at startup.
// Missing credentials are logged loudly but do not stop the process.
func logPaymentStatus(log *zap.Logger, cfg *config.Config) {
	log.Info("PayPal configuration",
		zap.String("mode", cfg.PayPalMode),
		zap.String("client_id", mark(cfg.PayPalClientID != "")),
		zap.String("client_secret", mark(cfg.PayPalClientSecret != "")),
		zap.String("currency", cfg.Currency),
		zap.String("amount", cfg.AmountString()),
		zap.String("session_store", cfg.SessionStore),
	)

	status := cfg.Status()
	for _, w := range status.Warnings {
		log.Warn(w)
	}
	for _, e := range status.Errors {
		log.Error(e)
	}
	if !status.PaymentReady() {
		log.Error("PAYMENT CONFIGURATION INCOMPLETE: create-order and capture-order will fail until PayPal credentials are provided")
	}
}
