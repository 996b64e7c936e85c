// @title                      Licorería POS API
// @version                    1.0
// @description                酒类零售收银系统：商品、客户、销售单与销售明细
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/xiebiao/licoreria/docs"
	"github.com/xiebiao/licoreria/internal/bootstrap"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/pkg/logger"
	"github.com/xiebiao/licoreria/pkg/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志
	appLogger, closeLog, err := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		AddSource: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer closeLog()
	slog.SetDefault(appLogger)

	appLogger.Info("配置加载成功",
		slog.Int("port", cfg.Server.Port),
		slog.String("mode", cfg.Server.Mode),
		slog.String("database", cfg.Database.Driver),
		slog.Bool("redis", cfg.Redis.Enabled),
		slog.Bool("mq", cfg.MQ.Enabled),
	)

	// 3. 链路追踪
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Protocol:    cfg.Tracing.Protocol,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			appLogger.Error("初始化链路追踪失败", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				appLogger.Error("关闭链路追踪失败", slog.Any("error", err))
			}
		}()
	}

	// 4. 依赖注入
	engine, cleanup, err := bootstrap.NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("初始化应用失败", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	// 5. 启动HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("HTTP服务启动", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP服务异常退出", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// 6. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("服务强制关闭", slog.Any("error", err))
	}
	appLogger.Info("服务已停止")
}
