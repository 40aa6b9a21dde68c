// LumiPlan 灯光设计排期与容量规划服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumiplan/lumiplan/internal/account"
	"github.com/lumiplan/lumiplan/internal/config"
	"github.com/lumiplan/lumiplan/internal/database"
	"github.com/lumiplan/lumiplan/internal/handler"
	"github.com/lumiplan/lumiplan/internal/metrics"
	"github.com/lumiplan/lumiplan/internal/middleware"
	"github.com/lumiplan/lumiplan/internal/repository"
	"github.com/lumiplan/lumiplan/internal/security"
	"github.com/lumiplan/lumiplan/pkg/capacity"
	"github.com/lumiplan/lumiplan/pkg/conflict"
	"github.com/lumiplan/lumiplan/pkg/logger"
	"github.com/lumiplan/lumiplan/pkg/recommend"
	"github.com/lumiplan/lumiplan/pkg/timewindow"
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
	logFormat := "console"
	if cfg.IsProduction() {
		logFormat = "json"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat,
	})

	// 打印版本信息
	fmt.Printf("LumiPlan 排期规划服务 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 连接数据库（可选：失败时以纯无状态模式运行，所有接口要求请求体携带快照）
	var repo *repository.SnapshotRepository
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("数据库连接失败，以无状态模式运行")
	} else {
		repo = repository.NewSnapshotRepository(db)
		defer db.Close()
	}

	// 构建核心组件
	var resolver *timewindow.Resolver
	if cfg.Planner.StrictTimeParsing {
		resolver = timewindow.NewStrictResolver()
	} else {
		resolver = timewindow.NewResolver()
	}
	plannerCfg := &capacity.Config{
		WindowDays:                    cfg.Planner.WindowDays,
		AdmissionThresholdPercent:     cfg.Planner.AdmissionThreshold,
		UnderutilizedThresholdPercent: cfg.Planner.UnderutilizedThreshold,
		FallbackAvgJobHours:           cfg.Planner.FallbackAvgJobHours,
	}
	detector := conflict.NewDetector(resolver)
	planner := capacity.NewPlanner(plannerCfg)
	matcher := recommend.NewMatcher(plannerCfg, resolver)

	// 创建处理器
	scheduleHandler := handler.NewScheduleHandler(detector, repo)
	capacityHandler := handler.NewCapacityHandler(planner, repo)
	recommendHandler := handler.NewRecommendHandler(matcher, repo)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if repo != nil {
			if err := db.Health(r.Context()); err != nil {
				w.Write([]byte(`{"status":"degraded","service":"lumiplan","database":"down"}`))
				return
			}
			w.Write([]byte(`{"status":"ok","service":"lumiplan","database":"up"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","service":"lumiplan","database":"stateless"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "LumiPlan 排期规划 API v1",
			"endpoints": {
				"schedule": {
					"conflicts": "POST /api/v1/schedule/conflicts",
					"agenda": "POST /api/v1/schedule/agenda",
					"recommend": "POST /api/v1/schedule/recommend"
				},
				"capacity": {
					"plan": "POST /api/v1/capacity/plan",
					"alerts": "POST /api/v1/capacity/alerts"
				}
			}
		}`))
	})

	// 冲突检测 API
	mux.HandleFunc("/api/v1/schedule/conflicts", scheduleHandler.CheckConflicts)

	// 日程查询 API
	mux.HandleFunc("/api/v1/schedule/agenda", scheduleHandler.DailyAgenda)

	// 技师推荐 API
	mux.HandleFunc("/api/v1/schedule/recommend", recommendHandler.Recommend)

	// 容量规划 API
	mux.HandleFunc("/api/v1/capacity/plan", capacityHandler.Plan)

	// 负载提醒 API
	mux.HandleFunc("/api/v1/capacity/alerts", capacityHandler.Alerts)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> recovery -> cors -> [auth] -> logging -> handler
	var root http.Handler = middleware.LoggingMiddleware(mux)

	if cfg.API.AuthEnabled {
		keyManager := security.NewAPIKeyManager()
		accountManager := account.NewManager()
		rateLimiter := security.NewRateLimiter(cfg.API.RateLimit, time.Minute)

		// 开发环境注册默认账户与密钥，方便本地联调
		if cfg.IsDevelopment() {
			defaultAccount := account.CreateDefaultAccount()
			if err := accountManager.Register(defaultAccount); err == nil {
				if key, err := keyManager.GenerateKey(defaultAccount.Code, "dev", []string{"*"}, nil); err == nil {
					logger.Info().Str("api_key", key.Key).Msg("开发环境默认API密钥")
				}
			}
		}

		root = middleware.AuthMiddleware(&middleware.AuthConfig{
			APIKeyManager:   keyManager,
			AccountManager:  accountManager,
			RateLimiter:     rateLimiter,
			SkipPaths:       []string{"/health", "/version", cfg.Metrics.Path},
			EnableRateLimit: true,
		})(root)
	}

	if cfg.API.CORS.Enabled {
		root = middleware.CORSMiddleware(root)
	}
	root = middleware.RequestIDMiddleware(middleware.RecoveryMiddleware(root))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
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
