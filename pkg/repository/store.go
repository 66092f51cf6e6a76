package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"PianoRoster/pkg/model"
)

// Listener 变更监听函数
type Listener func(event model.StudentEvent)

// Store 学生记录仓库
// 集合按插入顺序保存，每次变更后整体写入持久化槽位
type Store struct {
	students  []model.Student
	lastID    int // 本次会话分配过的最大ID，删除后也不回退
	persister Persister
	logger    *zap.Logger
	now       func() time.Time

	listeners map[int]Listener
	nextSub   int

	mutex sync.RWMutex
}

// NewStore 从持久化槽位恢复仓库，槽位为空时使用 seed
func NewStore(ctx context.Context, persister Persister, seed []model.Student, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		persister: persister,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}

	snapshot, err := persister.Load(ctx)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		s.students = make([]model.Student, len(seed))
		copy(s.students, seed)
		logger.Info("槽位为空，使用初始数据", zap.Int("count", len(seed)))
	case err != nil:
		return nil, fmt.Errorf("加载快照失败: %w", err)
	default:
		s.students = snapshot.Students
		if s.students == nil {
			s.students = []model.Student{}
		}
		logger.Info("已从槽位恢复学生数据", zap.Int("count", len(s.students)))
	}

	for _, st := range s.students {
		if st.ID > s.lastID {
			s.lastID = st.ID
		}
	}

	return s, nil
}

// List 返回当前集合的副本
func (s *Store) List() []model.Student {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]model.Student, len(s.students))
	copy(result, s.students)
	return result
}

// Get 按ID查找学生
func (s *Store) Get(id int) (model.Student, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.students[i], true
	}
	return model.Student{}, false
}

// Snapshot 返回当前集合的快照
func (s *Store) Snapshot() *model.Snapshot {
	return &model.Snapshot{Students: s.List()}
}

// Create 分配ID并追加学生，不做任何校验
// 保存失败时内存中的记录仍然保留
func (s *Store) Create(ctx context.Context, fields model.StudentFields) (model.Student, error) {
	s.mutex.Lock()
	s.lastID++
	student := fields.WithID(s.lastID)
	s.students = append(s.students, student)
	err := s.persistLocked(ctx)
	s.mutex.Unlock()

	s.notify(model.StudentCreated, student)
	return student, err
}

// Update 按ID合并字段，ID不存在时不做任何修改
func (s *Store) Update(ctx context.Context, id int, patch model.StudentPatch) (model.Student, bool, error) {
	s.mutex.Lock()
	var updated model.Student
	i := s.indexOf(id)
	if i >= 0 {
		updated = patch.Apply(s.students[i])
		s.students[i] = updated
	}
	err := s.persistLocked(ctx)
	s.mutex.Unlock()

	if i < 0 {
		return model.Student{}, false, err
	}

	s.notify(model.StudentUpdated, updated)
	return updated, true, err
}

// Delete 按ID删除学生，ID不存在时不做任何修改
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	s.mutex.Lock()
	var removed model.Student
	i := s.indexOf(id)
	if i >= 0 {
		removed = s.students[i]
		remaining := make([]model.Student, 0, len(s.students)-1)
		remaining = append(remaining, s.students[:i]...)
		remaining = append(remaining, s.students[i+1:]...)
		s.students = remaining
	}
	err := s.persistLocked(ctx)
	s.mutex.Unlock()

	if i < 0 {
		return false, err
	}

	s.notify(model.StudentDeleted, removed)
	return true, err
}

// Subscribe 注册变更监听，返回取消函数
// 监听函数在释放写锁之后同步调用，可以读取仓库。
// 并发变更时事件到达顺序不保证与快照保存顺序一致，需要严格顺序的消费方应以 List 或 Snapshot 为准。
func (s *Store) Subscribe(listener Listener) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners[id] = listener

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		delete(s.listeners, id)
	}
}

// Persister 当前使用的持久化后端
func (s *Store) Persister() Persister {
	return s.persister
}

func (s *Store) indexOf(id int) int {
	for i, st := range s.students {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked 调用方必须持有写锁
func (s *Store) persistLocked(ctx context.Context) error {
	students := make([]model.Student, len(s.students))
	copy(students, s.students)

	if err := s.persister.Save(ctx, &model.Snapshot{Students: students}); err != nil {
		s.logger.Error("保存快照失败", zap.Int("count", len(students)), zap.Error(err))
		return fmt.Errorf("保存快照失败: %w", err)
	}
	return nil
}

func (s *Store) notify(eventType model.StudentEventType, student model.Student) {
	s.mutex.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mutex.RUnlock()

	event := model.StudentEvent{
		Type:       eventType,
		Student:    student,
		OccurredAt: s.now(),
	}
	for _, l := range listeners {
		l(event)
	}
}
