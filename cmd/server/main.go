// WeekShift 周排班服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/paiban/weekshift/internal/config"
	"github.com/paiban/weekshift/internal/constraints"
	"github.com/paiban/weekshift/internal/handler"
	"github.com/paiban/weekshift/internal/metrics"
	"github.com/paiban/weekshift/internal/middleware"
	"github.com/paiban/weekshift/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(cfg.Log)

	// 打印版本信息
	fmt.Printf("WeekShift 周排班服务 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	port := strconv.Itoa(cfg.App.Port)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      newServer(cfg, metrics.GetRegistry()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Str("port", port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Str("preference_file", cfg.Input.PreferenceFile).
			Str("url", fmt.Sprintf("http://localhost:%s", port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// newServer 注册路由并套上中间件
func newServer(cfg *config.Config, registry *metrics.MetricsRegistry) http.Handler {
	scheduleHandler := handler.NewScheduleHandler(handler.Options{
		Solver:         cfg.Scheduler.SolverConfig(),
		PreferenceFile: cfg.Input.PreferenceFile,
		Timeout:        cfg.API.Timeout,
		MaxBatch:       cfg.API.MaxBatch,
		Metrics:        registry,
	})

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"weekshift"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// 排班页面
	mux.HandleFunc("/{$}", scheduleHandler.Index)

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "WeekShift 周排班 API v1",
			"endpoints": {
				"schedule": {
					"current": "GET /api/v1/schedule",
					"generate": "POST /api/v1/schedule/generate",
					"batch": "POST /api/v1/schedule/batch",
					"audit": "POST /api/v1/schedule/audit"
				},
				"constraints": "GET /api/v1/constraints"
			}
		}`))
	})

	mux.HandleFunc("/api/v1/schedule", scheduleHandler.Current)
	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/batch", scheduleHandler.Batch)
	mux.HandleFunc("/api/v1/schedule/audit", scheduleHandler.Audit)

	// 约束库
	library := constraints.LibraryResponse{Library: constraints.GetLibrary(cfg.Scheduler.SolverConfig())}
	mux.HandleFunc("/api/v1/constraints", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(library)
	})

	// ========================================
	// 监控端点
	// ========================================

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, registry.Handler())
	}

	// 中间件执行顺序：recovery -> requestID -> securityHeaders -> rateLimit -> cors -> logging -> handler
	limiter := middleware.NewRateLimiter(float64(cfg.API.RateLimit))
	return middleware.Recovery(
		middleware.RequestID(
			middleware.SecurityHeaders(
				middleware.RateLimit(limiter,
					middleware.CORS(cfg.API.CORS,
						middleware.Logging(registry, mux))))))
}
