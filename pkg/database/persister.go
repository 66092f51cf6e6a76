package database

import (
	"context"
	"fmt"

	"PianoRoster/pkg/config"
	"PianoRoster/pkg/repository"
)

// NewPersister 根据配置创建持久化后端，返回的关闭函数总是非 nil
func NewPersister(ctx context.Context, cfg *config.Config) (repository.Persister, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return repository.NewMemoryPersister(nil), noop, nil
	case config.BackendFile:
		return repository.NewFilePersister(cfg.Storage.Dir, cfg.Storage.Slot), noop, nil
	case config.BackendPostgres:
		db, err := NewPostgresDB(cfg)
		if err != nil {
			return nil, noop, err
		}
		return db.Slot(cfg.Storage.Slot), func() { db.Close() }, nil
	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.Database.Redis.URL)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisSlot(client, cfg.Storage.Slot), func() { client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("未知的存储后端: %q", cfg.Storage.Backend)
	}
}
