package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"PianoRoster/pkg/model"
)

// FilePersister 以 JSON 文件作为命名槽位
type FilePersister struct {
	path string
}

// NewFilePersister 在 dir 下为 slot 创建文件槽位
func NewFilePersister(dir, slot string) *FilePersister {
	return &FilePersister{path: filepath.Join(dir, slot+".json")}
}

// Path 槽位文件路径
func (f *FilePersister) Path() string {
	return f.path
}

// Save 先写临时文件再重命名，避免留下半截快照
func (f *FilePersister) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("创建槽位目录失败: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入槽位文件失败: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("替换槽位文件失败: %w", err)
	}
	return nil
}

// Load 读取槽位文件
func (f *FilePersister) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("读取槽位文件失败: %w", err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("解析槽位文件失败: %w", err)
	}
	return &snapshot, nil
}

// Ping 检查槽位目录可写
func (f *FilePersister) Ping(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("槽位目录不可用: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("槽位目录不可写: %w", err)
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}
