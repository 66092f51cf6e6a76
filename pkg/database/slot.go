package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PianoRoster/pkg/model"
	"PianoRoster/pkg/repository"
)

// SlotRecord 槽位表中的一行，保存整个集合的 JSON
type SlotRecord struct {
	Name      string    `gorm:"type:varchar(100);primaryKey" json:"name"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 表名
func (SlotRecord) TableName() string {
	return "storage_slots"
}

// SlotDB 数据库中的命名槽位
type SlotDB struct {
	db       *gorm.DB
	database *Database
	name     string
}

var _ repository.Persister = (*SlotDB)(nil)

// Save 覆盖写入槽位
func (s *SlotDB) Save(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}

	record := SlotRecord{
		Name:      s.name,
		Payload:   string(data),
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("写入槽位 %s 失败: %w", s.name, err)
	}
	return nil
}

// Load 读取槽位
func (s *SlotDB) Load(ctx context.Context) (*model.Snapshot, error) {
	var record SlotRecord
	err := s.db.WithContext(ctx).First(&record, "name = ?", s.name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("读取槽位 %s 失败: %w", s.name, err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal([]byte(record.Payload), &snapshot); err != nil {
		return nil, fmt.Errorf("解析槽位 %s 失败: %w", s.name, err)
	}
	return &snapshot, nil
}

// Ping 测试数据库连接
func (s *SlotDB) Ping(ctx context.Context) error {
	return s.database.Ping(ctx)
}
