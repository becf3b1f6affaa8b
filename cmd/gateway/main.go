package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dvorak/internal/common/cache"
	"dvorak/internal/gateway/controller"
	"dvorak/internal/gateway/middleware"
	"dvorak/internal/gateway/repository"
	"dvorak/internal/gateway/service"
	"dvorak/internal/judge/verdict"
	"dvorak/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/gateway.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath, ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() { _ = redisCache.Close() }()

	httpServer := buildHTTPServer(appCfg, redisCache)

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "judge gateway started",
			zap.String("addr", appCfg.Server.Addr),
			zap.String("problems_dir", appCfg.Judge.ProblemsDir),
			zap.Strings("allow_origins", appCfg.CORS.AllowedOrigins),
		)
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg *AppConfig, redisCache cache.Cache) *http.Server {
	return &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        buildRouter(cfg, redisCache),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
}

func buildRouter(cfg *AppConfig, redisCache cache.Cache) *gin.Engine {
	redisTimeout := cfg.Redis.ReadTimeout
	problems := repository.NewProblemRepository(cfg.Judge.ProblemsDir, cfg.Judge.Languages)
	queue := repository.NewJobQueue(redisCache, cfg.Judge.QueueKey, redisTimeout)
	resultLocal := repository.NewLRUCache[verdict.Verdict](cfg.Judge.ResultCacheSize, cfg.Judge.ResultTTL)
	results := repository.NewResultRepository(redisCache, resultLocal, cfg.Judge.ResultTTL, redisTimeout)

	judgeService := service.NewJudgeService(problems, queue, results, redisCache, service.JudgeServiceConfig{
		MaxCodeBytes:  cfg.Judge.MaxCodeBytes,
		MaxQueueDepth: cfg.Judge.MaxQueueDepth,
		PingTimeout:   redisTimeout,
	})
	rateService := service.NewRateLimitService(redisCache, cfg.Rate.Window, redisTimeout)
	judgeController := controller.NewJudgeController(judgeService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceMiddleware())
	maxAge := ""
	if cfg.CORS.MaxAge > 0 {
		maxAge = fmt.Sprintf("%d", int(cfg.CORS.MaxAge.Seconds()))
	}
	router.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		Enabled:          *cfg.CORS.Enabled,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: *cfg.CORS.AllowCredentials,
		MaxAge:           maxAge,
	}))
	router.Use(requestLogger())

	router.GET("/health", judgeController.Health)
	router.GET("/problems", judgeController.ListProblems)
	router.GET("/problems/:id", judgeController.GetProblem)
	router.POST("/submit",
		middleware.RateLimitMiddleware(rateService, "submit", middleware.RateLimitPolicy{
			Window: cfg.Rate.Window,
			IPMax:  cfg.Rate.SubmitIPMax,
		}),
		judgeController.Submit,
	)
	router.GET("/result/:job_id", judgeController.GetResult)
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
