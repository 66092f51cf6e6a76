// pkg/model/snapshot.go
package model

// Snapshot 持久化槽位中保存的完整集合
type Snapshot struct {
	Students []Student `json:"students"`
}

// Clone 深拷贝，保证调用方修改不影响存储
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	students := make([]Student, len(s.Students))
	copy(students, s.Students)
	return &Snapshot{Students: students}
}
