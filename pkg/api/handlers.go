package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"PianoRoster/pkg/model"
	"PianoRoster/pkg/monitor"
	"PianoRoster/pkg/repository"
)

// Handlers API处理程序
type Handlers struct {
	store   *repository.Store
	monitor *monitor.Monitor
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandlers 创建新的API处理程序
func NewHandlers(store *repository.Store, m *monitor.Monitor, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:   store,
		monitor: m,
		logger:  logger,
		now:     time.Now,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if h.monitor == nil || h.monitor.Healthy() {
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
		return
	}

	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":     "not_ready",
		"components": h.monitor.GetAllStatus(),
	})
}

// ListStudents 学生列表
func (h *Handlers) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.store.List(),
	})
}

// GetStudent 学生详情
func (h *Handlers) GetStudent(c *gin.Context) {
	student, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": student,
	})
}

// CreateStudent 登记学生
func (h *Handlers) CreateStudent(c *gin.Context) {
	var form StudentForm
	if !h.bindForm(c, &form) {
		return
	}

	student, err := h.store.Create(c.Request.Context(), form.Fields(h.now()))
	if err != nil {
		h.logger.Error("保存学生失败", zap.Int("student_id", student.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "保存学生失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": student,
	})
}

// UpdateStudent 编辑学生
func (h *Handlers) UpdateStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var form StudentForm
	if !h.bindForm(c, &form) {
		return
	}

	student, found, err := h.store.Update(c.Request.Context(), id, form.Patch())
	if err != nil {
		h.logger.Error("更新学生失败", zap.Int("student_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "更新学生失败: " + err.Error(),
		})
		return
	}
	if !found {
		notFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": student,
	})
}

// DeleteStudent 删除学生
func (h *Handlers) DeleteStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("删除学生失败", zap.Int("student_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "删除学生失败: " + err.Error(),
		})
		return
	}
	if !found {
		notFound(c)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetStudentNotes 学生备注（示例数据）
func (h *Handlers) GetStudentNotes(c *gin.Context) {
	student, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": model.SampleNotes(student.ID, h.now()),
	})
}

func (h *Handlers) lookup(c *gin.Context) (model.Student, bool) {
	id, ok := parseID(c)
	if !ok {
		return model.Student{}, false
	}

	student, found := h.store.Get(id)
	if !found {
		notFound(c)
		return model.Student{}, false
	}
	return student, true
}

// bindForm 绑定并校验表单，失败时已写入响应
func (h *Handlers) bindForm(c *gin.Context, form *StudentForm) bool {
	err := c.ShouldBindJSON(form)
	if err == nil {
		err = form.Check(h.now())
	}
	if err == nil {
		return true
	}

	var fields FieldErrors
	if errors.As(err, &fields) {
		invalidForm(c, fields)
		return false
	}
	if fields = fieldErrorsFrom(err); fields != nil {
		invalidForm(c, fields)
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error": "无效的请求参数: " + err.Error(),
	})
	return false
}

func invalidForm(c *gin.Context, fields FieldErrors) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  fields.Error(),
		"fields": fields,
	})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的学生ID",
		})
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "学生不存在",
	})
}
