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

	"github.com/gin-gonic/gin"
	awspkg "github.com/kpsbusiness/paywall/pkg/aws"
	"github.com/kpsbusiness/paywall/services/common/logger"
	"github.com/kpsbusiness/paywall/services/common/middleware"
	"github.com/kpsbusiness/paywall/services/storefront-service/checkout"
	"github.com/kpsbusiness/paywall/services/storefront-service/clients"
	"github.com/kpsbusiness/paywall/services/storefront-service/config"
	"github.com/kpsbusiness/paywall/services/storefront-service/controllers"
	"github.com/kpsbusiness/paywall/services/storefront-service/render"
	"github.com/kpsbusiness/paywall/services/storefront-service/routes"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Storefront] Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var shipper io.Writer
	var metrics awspkg.MetricsRecorder
	if cfg.CloudWatchEnabled {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Storefront] AWS config load failed, CloudWatch disabled: %v\n", err)
		} else {
			if cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, controllers.ServiceName); err != nil {
				fmt.Fprintf(os.Stderr, "[Storefront] CloudWatch Logs disabled: %v\n", err)
			} else {
				shipper = cw
			}
			metrics = awspkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, true)
		}
	}

	log := logger.MustNew(cfg.Env, shipper)
	defer log.Sync()

	renderer, err := render.New()
	if err != nil {
		log.Fatal("Template init failed", zap.Error(err))
	}

	gateway := clients.NewGatewayClient(cfg.GatewayURL, cfg.RequestTimeout)
	flow := checkout.NewFlow(gateway, log)
	sc := controllers.NewStorefrontController(gateway, flow, renderer, log)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute), 5, 10*time.Minute)
		defer limiter.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(metrics, controllers.ServiceName))
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout + 5*time.Second))
	r.Use(middleware.SecurityHeaders(render.ContentSecurityPolicy))

	routes.RegisterRoutes(r, sc, limiter)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Storefront started",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("gateway_url", cfg.GatewayURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	log.Info("Storefront stopped gracefully")
}
