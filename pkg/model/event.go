// pkg/model/event.go
package model

import "time"

// StudentEventType 学生记录变更类型
type StudentEventType string

const (
	StudentCreated StudentEventType = "created"
	StudentUpdated StudentEventType = "updated"
	StudentDeleted StudentEventType = "deleted"
)

// StudentEvent 学生记录变更事件
type StudentEvent struct {
	Type       StudentEventType `json:"type"`
	Student    Student          `json:"student"`
	OccurredAt time.Time        `json:"occurred_at"`
}
