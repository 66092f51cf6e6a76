// pkg/messaging/nats.go
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// StudentsStream 学生变更事件流
const StudentsStream = "STUDENTS_STREAM"

// Publisher JetStream 发布接口
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSClient NATS JetStream客户端
type NATSClient struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	logger    *zap.Logger
}

// NewNATSClient 创建新的NATS客户端
func NewNATSClient(ctx context.Context, natsURL string, logger *zap.Logger) (*NATSClient, error) {
	// 连接NATS
	nc, err := nats.Connect(natsURL,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS重新连接成功", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	// 创建JetStream上下文
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}

	client := &NATSClient{
		conn:      nc,
		jetStream: js,
		logger:    logger,
	}

	if err := client.setupStreams(ctx); err != nil {
		logger.Warn("设置Streams失败", zap.Error(err))
	}

	return client, nil
}

// setupStreams 设置学生事件流
func (c *NATSClient) setupStreams(ctx context.Context) error {
	_, err := c.jetStream.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StudentsStream,
		Subjects:    []string{SubjectPrefix + ".*"},
		Description: "学生记录变更事件",
		Retention:   jetstream.LimitsPolicy,
		MaxMsgs:     100000,
		MaxBytes:    64 * 1024 * 1024,   // 64MB
		MaxAge:      30 * 24 * time.Hour, // 保留30天
	})
	if err != nil {
		return fmt.Errorf("创建/更新Stream %s 失败: %w", StudentsStream, err)
	}
	c.logger.Info("Stream 设置成功", zap.String("stream", StudentsStream))
	return nil
}

// Publish 发布消息到指定主题
func (c *NATSClient) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	return c.jetStream.Publish(ctx, subject, payload, opts...)
}

// Ping 检查连接状态
func (c *NATSClient) Ping(ctx context.Context) error {
	if !c.IsConnected() {
		return fmt.Errorf("NATS未连接")
	}
	return c.conn.FlushWithContext(ctx)
}

// IsConnected 检查连接状态
func (c *NATSClient) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close 关闭连接
func (c *NATSClient) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return fmt.Errorf("关闭NATS连接失败: %w", err)
	}
	c.logger.Info("NATS连接已关闭")
	return nil
}
