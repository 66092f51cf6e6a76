package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"PianoRoster/pkg/model"
	"PianoRoster/pkg/repository"
)

const redisKeyPrefix = "piano-roster:slot:"

// NewRedisClient 根据 URL 创建 Redis 客户端
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("解析 Redis 地址失败: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return client, nil
}

// RedisSlot 以 Redis key 作为命名槽位
type RedisSlot struct {
	client *redis.Client
	key    string
}

var _ repository.Persister = (*RedisSlot)(nil)

// NewRedisSlot 创建 Redis 槽位
func NewRedisSlot(client *redis.Client, slot string) *RedisSlot {
	return &RedisSlot{client: client, key: redisKeyPrefix + slot}
}

// Key 槽位对应的 key
func (r *RedisSlot) Key() string {
	return r.key
}

// Save 覆盖写入槽位
func (r *RedisSlot) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("写入槽位 %s 失败: %w", r.key, err)
	}
	return nil
}

// Load 读取槽位
func (r *RedisSlot) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("读取槽位 %s 失败: %w", r.key, err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("解析槽位 %s 失败: %w", r.key, err)
	}
	return &snapshot, nil
}

// Ping 测试 Redis 连接
func (r *RedisSlot) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
