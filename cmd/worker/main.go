// worker 消费低库存事件并告警
//
// 需要mq.enabled=true；队列为mq.alert_queue，绑定inventory.stock.low。
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

	"github.com/cenkalti/backoff/v5"

	"github.com/xiebiao/licoreria/internal/domain/inventory"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
	"github.com/xiebiao/licoreria/internal/infrastructure/events"
	"github.com/xiebiao/licoreria/pkg/logger"
	"github.com/xiebiao/licoreria/pkg/metrics"
	"github.com/xiebiao/licoreria/pkg/mq"
)

const alertQuietPeriod = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if !cfg.MQ.Enabled {
		log.Fatal("worker需要启用消息队列(mq.enabled=true)")
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 指标端点，端口为API端口+1
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port+1), Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("指标服务异常退出", slog.Any("error", err))
			}
		}()
		defer srv.Close()
	}

	alerts := events.NewStockAlerts(appLogger, alertQuietPeriod)

	// 连接断开后按指数退避重连，直到收到退出信号
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType,
			cfg.MQ.AlertQueue, []string{inventory.EventStockLow}, appLogger)
		if err != nil {
			appLogger.Warn("连接消息队列失败，稍后重试", slog.Any("error", err))
			return struct{}{}, err
		}
		defer consumer.Close()

		if err := consumer.Consume(ctx, alerts.Handle); err != nil {
			appLogger.Warn("消费中断，稍后重连", slog.Any("error", err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(0))
	if err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("worker退出", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("worker已停止")
}
