package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PianoRoster/pkg/model"
	"PianoRoster/pkg/monitor"
	"PianoRoster/pkg/repository"
)

// SnapshotSource 可导出快照的仓库
type SnapshotSource interface {
	Snapshot() *model.Snapshot
}

// Options 调度配置，空表达式表示不启用该任务
type Options struct {
	HealthCheck string
	Backup      string
	BackupDir   string
	Slot        string
}

// Scheduler 任务调度器
type Scheduler struct {
	cron    *cron.Cron
	monitor *monitor.Monitor
	source  SnapshotSource
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	backupMu sync.Mutex
}

// NewScheduler 创建任务调度器
func NewScheduler(m *monitor.Monitor, source SnapshotSource, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		monitor: m,
		source:  source,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Start 注册任务并启动调度器
func (s *Scheduler) Start() error {
	if s.opts.HealthCheck != "" {
		if _, err := s.cron.AddFunc(s.opts.HealthCheck, s.checkHealth); err != nil {
			return fmt.Errorf("注册健康检查任务失败: %w", err)
		}
	}

	if s.opts.Backup != "" {
		if _, err := s.cron.AddFunc(s.opts.Backup, func() {
			if _, err := s.Backup(context.Background()); err != nil {
				s.logger.Error("备份快照失败", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("注册备份任务失败: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("调度器已启动",
		zap.String("health_check", s.opts.HealthCheck),
		zap.String("backup", s.opts.Backup),
	)
	return nil
}

// Stop 停止调度器，等待正在运行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// checkHealth 检查各组件健康状态
func (s *Scheduler) checkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.monitor.CheckAll(ctx)
	for _, status := range s.monitor.GetAllStatus() {
		if status.Status != monitor.StatusHealthy {
			s.logger.Warn("组件不健康",
				zap.String("component", status.Component),
				zap.String("message", status.Message),
			)
		}
	}
}

// Backup 把当前快照写入带时间戳的文件槽位，返回文件路径
// 同一秒内的多次备份追加序号，不会互相覆盖
func (s *Scheduler) Backup(ctx context.Context) (string, error) {
	s.backupMu.Lock()
	defer s.backupMu.Unlock()

	backup, err := s.nextBackupSlot()
	if err != nil {
		return "", err
	}

	snapshot := s.source.Snapshot()
	if err := backup.Save(ctx, snapshot); err != nil {
		return "", err
	}

	s.logger.Info("快照已备份",
		zap.String("path", backup.Path()),
		zap.Int("count", len(snapshot.Students)),
	)
	return backup.Path(), nil
}

// nextBackupSlot 调用方必须持有 backupMu
func (s *Scheduler) nextBackupSlot() (*repository.FilePersister, error) {
	base := fmt.Sprintf("%s-%s", s.opts.Slot, s.now().Format("20060102-150405"))
	slot := base
	for n := 1; ; n++ {
		backup := repository.NewFilePersister(s.opts.BackupDir, slot)
		_, err := os.Stat(backup.Path())
		if errors.Is(err, fs.ErrNotExist) {
			return backup, nil
		}
		if err != nil {
			return nil, fmt.Errorf("检查备份文件失败: %w", err)
		}
		slot = fmt.Sprintf("%s-%d", base, n)
	}
}
