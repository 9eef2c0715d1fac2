package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"crossbot/internal/app"
	"crossbot/internal/config"
	"crossbot/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CROSSBOT_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("✓ 配置加载成功（环境=%s，模式=%s，交易对=%s）", cfg.App.Env, cfg.Trading.Mode, cfg.Strategy.Symbol)

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	runErr := a.Run(ctx)
	if runErr == nil {
		logger.Infof("crossbot stopped")
	}
	if err := a.Close(); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("运行失败: %v", runErr)
	}
}
