package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/matchscreener/internal/controlplane/server"
	"github.com/betbot/matchscreener/internal/services"
	"github.com/betbot/matchscreener/pkg/config"
	"github.com/betbot/matchscreener/pkg/logger"
	"github.com/betbot/matchscreener/pkg/persistence"
	"github.com/betbot/matchscreener/pkg/sdk/api"
	"github.com/betbot/matchscreener/pkg/shutdown"
)

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径（默认 config.yaml）")
		listen     = flag.String("listen", "", "HTTP 监听地址，覆盖配置文件")
		day        = flag.String("day", "", "固定查询日期 YYYYMMDD，为空时跟随本地日期")
	)
	flag.Parse()

	// .env 可选，缺失不报错
	_ = godotenv.Load()

	if *configPath != "" {
		config.SetConfigPath(*configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.OutputFile,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	sd := shutdown.NewManager()

	store, cleanup, err := openBookmarkStore(cfg)
	if err != nil {
		logger.Errorf("打开收藏存储失败: %v", err)
		os.Exit(1)
	}
	sd.OnShutdown(func(context.Context) { cleanup() })

	client := api.NewClient(api.Options{
		BaseURL: cfg.Feed.BaseURL,
		Token:   cfg.Feed.Token,
		Timeout: time.Duration(cfg.Feed.TimeoutSeconds) * time.Second,
	})

	bookmarks := services.NewBookmarkStore(store, cfg.BookmarkRetention())
	engine := services.NewEngine(client, bookmarks, services.EngineConfig{
		StateInterval:  cfg.StateInterval(),
		PriceInterval:  cfg.PriceInterval(),
		QuoteInterval:  cfg.QuoteInterval(),
		Lead:           cfg.LeadWindow(),
		Past:           cfg.PastWindow(),
		BettableWindow: cfg.BettableWindow(),
		UndoWindow:     cfg.UndoWindow(),
		Day:            *day,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Start(ctx)
	sd.OnShutdown(func(context.Context) { engine.Close() })

	srv := server.New(engine, server.Config{Listen: cfg.Server.Listen})
	runErr := srv.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sd.Shutdown(shutdownCtx)

	if runErr != nil {
		logger.Errorf("HTTP 服务退出: %v", runErr)
		os.Exit(1)
	}
	logger.Info("screener 已退出")
}

// openBookmarkStore 按配置选择收藏持久化后端。
func openBookmarkStore(cfg *config.Config) (persistence.Store, func(), error) {
	noop := func() {}
	switch strings.ToLower(cfg.Bookmarks.Backend) {
	case "badger":
		svc, err := persistence.OpenBadger(cfg.Bookmarks.Path)
		if err != nil {
			return nil, noop, err
		}
		return svc.NewStore("screener", "default", "bookmarks"), func() { _ = svc.Close() }, nil
	default:
		svc := persistence.NewJSONFileService(cfg.Bookmarks.Path)
		return svc.NewStore("screener", "default", "bookmarks"), noop, nil
	}
}
