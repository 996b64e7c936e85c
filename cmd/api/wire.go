//go:build wireinject
// +build wireinject

// Wire依赖注入声明
//
// 运行 `wire gen ./cmd/api` 生成wire_gen.go，
// 生成的InitializeApp与bootstrap.NewApp构建同一条依赖链。
// main.go目前直接调用bootstrap.NewApp，两者保持同步。

package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/licoreria/internal/bootstrap"
	"github.com/xiebiao/licoreria/internal/infrastructure/config"
)

// InitializeApp 初始化整个应用
// cleanup按逆序关闭存储、会话、消息发布者
func InitializeApp(cfg *config.Config, logger *slog.Logger) (*gin.Engine, func(), error) {
	wire.Build(bootstrap.ProviderSet)
	return nil, nil, nil
}
