package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shiftgrid/config"
	"shiftgrid/internal/api/handler"
	"shiftgrid/internal/api/router"
	"shiftgrid/internal/repository"
	"shiftgrid/internal/service"
	"shiftgrid/pkg/database"
	"shiftgrid/pkg/jwt"
	"shiftgrid/pkg/llm"
	applogger "shiftgrid/pkg/logger"
	"shiftgrid/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("SHIFTGRID_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Scheduling.Timezone),
	)

	settings, err := service.NewSettings(cfg)
	if err != nil {
		logger.Fatal("排班配置无效", zap.Error(err))
	}

	// 3. 操作员凭据
	creds, err := service.LoadCredentials(cfg.Auth.CredentialsFile)
	if err != nil {
		logger.Fatal("加载操作员凭据失败", zap.String("file", cfg.Auth.CredentialsFile), zap.Error(err))
	}
	logger.Info("操作员凭据已加载", zap.Int("operators", len(creds)))

	// 4. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 4.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，手动选择仅保存在内存中，登出与限流不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 文本生成服务（可选：未配置时仅支持手动粘贴）
	var generator llm.TextGenerator
	if gemini, err := llm.NewGeminiGenerator(context.Background(), &cfg.Generation, logger); err != nil {
		logger.Warn("文本生成服务不可用，仅支持手动粘贴", zap.Error(err))
	} else {
		generator = gemini
	}

	// 7. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 8. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(service.Deps{
		Repo:        repo,
		Credentials: creds,
		JWT:         jwtMgr,
		Redis:       rdb,
		Generator:   generator,
		Settings:    settings,
		Logger:      logger,
	})
	h := handler.NewHandler(svc)

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Generation.Timeout + 15*time.Second, // 生成接口会等待上游返回
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
