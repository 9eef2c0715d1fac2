package app

import (
	"context"
	"fmt"
	"io"

	"crossbot/internal/config"
	"crossbot/internal/logger"
	statushttp "crossbot/internal/transport/http/status"
	"crossbot/internal/trader"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动交易循环与状态接口。
type App struct {
	cfg        *config.Config
	trader     *trader.Trader
	statusHTTP *statushttp.Server
	closers    []io.Closer
	Summary    *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。启动期的交易所调用失败会直接返回错误。
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(ctx, cfg)
}

// Run 启动交易循环，ctx 取消后在当前周期结束时返回。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.trader == nil {
		return fmt.Errorf("trader not initialized")
	}

	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)

	if a.statusHTTP != nil {
		group.Go(func() error {
			if err := a.statusHTTP.Start(ctx); err != nil {
				return fmt.Errorf("status http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		return a.trader.Run(ctx)
	})

	return group.Wait()
}

// Trader exposes the trading loop (for tests).
func (a *App) Trader() *trader.Trader {
	if a == nil {
		return nil
	}
	return a.trader
}

// Close releases gateway connections and the log file, in reverse build order.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if c := a.closers[i]; c != nil {
			err = multierr.Append(err, c.Close())
		}
	}
	a.closers = nil
	return err
}
