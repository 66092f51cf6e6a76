package repository

import (
	"context"
	"errors"
	"sync"

	"PianoRoster/pkg/model"
)

// DefaultSlot 默认持久化槽位名
const DefaultSlot = "student-storage"

// ErrSnapshotNotFound 槽位中没有快照
var ErrSnapshotNotFound = errors.New("槽位中没有快照")

// Persister 持久化后端
type Persister interface {
	Save(ctx context.Context, snapshot *model.Snapshot) error
	Load(ctx context.Context) (*model.Snapshot, error)
}

// Pinger 可探活的持久化后端
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryPersister 内存持久化，用于测试和临时运行
type MemoryPersister struct {
	mu       sync.Mutex
	snapshot *model.Snapshot
	saves    int
	err      error
}

// NewMemoryPersister 创建内存持久化，initial 可为 nil
func NewMemoryPersister(initial *model.Snapshot) *MemoryPersister {
	return &MemoryPersister{snapshot: initial.Clone()}
}

// Save 保存快照副本
func (m *MemoryPersister) Save(ctx context.Context, snapshot *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.snapshot = snapshot.Clone()
	m.saves++
	return nil
}

// Load 读取快照副本
func (m *MemoryPersister) Load(ctx context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	return m.snapshot.Clone(), nil
}

// Ping 内存后端始终可用，除非设置了故障
func (m *MemoryPersister) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Saves 已成功保存的次数
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith 之后的保存都返回 err，传 nil 恢复
func (m *MemoryPersister) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
