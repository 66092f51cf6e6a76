package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"PianoRoster/pkg/config"
	"PianoRoster/pkg/database"
	"PianoRoster/pkg/logger"
	"PianoRoster/pkg/repository"
)

// 检查已配置槽位中的学生数据
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal(fmt.Errorf("加载配置失败: %w", err))
	}

	l, err := logger.New(true)
	if err != nil {
		log.Fatal(err)
	}
	defer l.Sync()

	ctx := context.Background()
	persister, closePersister, err := database.NewPersister(ctx, cfg)
	defer closePersister()
	if err != nil {
		l.Fatal("初始化持久化后端失败", zap.Error(err))
	}

	snapshot, err := persister.Load(ctx)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		l.Info("槽位为空，启动时将使用初始数据", zap.String("slot", cfg.Storage.Slot))
		return
	}
	if err != nil {
		l.Fatal("读取槽位失败", zap.Error(err))
	}

	problems := repository.VerifySnapshot(snapshot)
	for _, p := range problems {
		l.Warn(p)
	}
	if len(problems) > 0 {
		l.Error("验证未通过", zap.Int("problems", len(problems)))
		os.Exit(1)
	}

	l.Info("验证完成",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("slot", cfg.Storage.Slot),
		zap.Int("students", len(snapshot.Students)),
	)
}
