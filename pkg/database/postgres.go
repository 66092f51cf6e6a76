package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"PianoRoster/pkg/config"
)

// Database 基于 gorm 的数据库连接
type Database struct {
	db *gorm.DB
}

// NewPostgresDB 连接 Postgres 并迁移槽位表
func NewPostgresDB(cfg *config.Config) (*Database, error) {
	return Open(postgres.Open(cfg.PostgresDSN()))
}

// Open 使用任意 gorm 方言打开数据库
func Open(dialector gorm.Dialector) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取连接池失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&SlotRecord{}); err != nil {
		return nil, fmt.Errorf("迁移槽位表失败: %w", err)
	}

	return &Database{db: db}, nil
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 测试数据库连接
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("测试数据库连接失败: %w", err)
	}
	return nil
}

// Slot 获取命名槽位
func (d *Database) Slot(name string) *SlotDB {
	return &SlotDB{db: d.db, database: d, name: name}
}
