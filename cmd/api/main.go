package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"PianoRoster/pkg/api"
	"PianoRoster/pkg/config"
	"PianoRoster/pkg/database"
	"PianoRoster/pkg/logger"
	"PianoRoster/pkg/messaging"
	"PianoRoster/pkg/monitor"
	"PianoRoster/pkg/repository"
	"PianoRoster/pkg/scheduler"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal(fmt.Errorf("加载配置失败: %w", err))
	}

	// 初始化日志
	l, err := logger.New(cfg.Log.Debug && !cfg.IsProd())
	if err != nil {
		log.Fatal(err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal("服务异常退出", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	// 初始化持久化后端
	persister, closePersister, err := database.NewPersister(ctx, cfg)
	defer closePersister()
	if err != nil {
		return err
	}
	l.Info("持久化后端已就绪",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("slot", cfg.Storage.Slot),
	)

	// 创建学生仓库
	store, err := repository.NewStore(ctx, persister, repository.SeedStudents(), l.Named("store"))
	if err != nil {
		return err
	}

	// 健康监控
	m := monitor.NewMonitor(func(component, status, message string) {
		l.Warn("组件状态变化",
			zap.String("component", component),
			zap.String("status", status),
			zap.String("message", message),
		)
	})
	if pinger, ok := store.Persister().(repository.Pinger); ok {
		m.RegisterComponent("storage", pinger.Ping)
	} else {
		m.UpdateStatus("storage", monitor.StatusHealthy, "")
	}

	// 连接NATS并转发变更事件
	if cfg.NATS.URL != "" {
		natsClient, err := messaging.NewNATSClient(ctx, cfg.NATS.URL, l.Named("nats"))
		if err != nil {
			return err
		}
		defer natsClient.Close()

		publisher := messaging.NewEventPublisher(natsClient, l.Named("events"))
		unsubscribe := store.Subscribe(publisher.Handle)
		defer unsubscribe()
		m.RegisterComponent("nats", natsClient.Ping)
	}
	m.CheckAll(ctx)

	// 启动调度器
	sched := scheduler.NewScheduler(m, store, scheduler.Options{
		HealthCheck: cfg.Scheduler.HealthCheck,
		Backup:      cfg.Scheduler.Backup,
		BackupDir:   cfg.Scheduler.BackupDir,
		Slot:        cfg.Storage.Slot,
	}, l.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// 启动API服务器
	server := api.NewServer(api.ServerOptions{
		Port:         cfg.API.Port,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		Debug:        !cfg.IsProd(),
	}, l.Named("http"))
	server.SetupRoutes(api.NewHandlers(store, m, l.Named("api")))

	return server.Run(ctx)
}
