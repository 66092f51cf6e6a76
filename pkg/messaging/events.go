package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"PianoRoster/pkg/model"
)

// SubjectPrefix 学生事件主题前缀
const SubjectPrefix = "students"

// Subject 事件类型对应的主题
func Subject(eventType model.StudentEventType) string {
	return SubjectPrefix + "." + string(eventType)
}

// EventPublisher 把仓库变更转发到 NATS
// 发布失败只记录日志，不影响仓库
type EventPublisher struct {
	publisher Publisher
	logger    *zap.Logger
	timeout   time.Duration
	newID     func() string
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(publisher Publisher, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{
		publisher: publisher,
		logger:    logger,
		timeout:   5 * time.Second,
		newID:     func() string { return uuid.New().String() },
	}
}

// Handle 处理一条变更事件，可直接注册为仓库监听
func (p *EventPublisher) Handle(event model.StudentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化学生事件失败", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	subject := Subject(event.Type)
	msgID := p.newID()
	if _, err := p.publisher.Publish(ctx, subject, payload, jetstream.WithMsgID(msgID)); err != nil {
		p.logger.Error("发布学生事件失败",
			zap.String("subject", subject),
			zap.Int("student_id", event.Student.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("已发布学生事件",
		zap.String("subject", subject),
		zap.String("msg_id", msgID),
		zap.Int("student_id", event.Student.ID),
	)
}
