package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New 创建日志，调试模式使用开发配置
func New(debugMode bool) (l *zap.Logger, err error) {
	if debugMode {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	return l, nil
}
