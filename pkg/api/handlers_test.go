package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PianoRoster/pkg/model"
	"PianoRoster/pkg/monitor"
	"PianoRoster/pkg/repository"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	server    *Server
	store     *repository.Store
	persister *repository.MemoryPersister
	monitor   *monitor.Monitor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	persister := repository.NewMemoryPersister(nil)
	store, err := repository.NewStore(context.Background(), persister, repository.SeedStudents(), nil)
	require.NoError(t, err)

	m := monitor.NewMonitor(nil)
	handlers := NewHandlers(store, m, nil)
	handlers.now = func() time.Time { return fixedNow }

	server := NewServer(ServerOptions{Port: "0", Debug: true}, zap.NewNop())
	server.SetupRoutes(handlers)

	return &testEnv{server: server, store: store, persister: persister, monitor: m}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func decodeFields(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Fields
}

func validForm() StudentForm {
	return StudentForm{
		Name:       "高橋 ゆい",
		ParentName: "高橋 誠",
		Phone:      "090-9999-0000",
		Email:      "takahashi@example.com",
		Amount:     "10000",
		Birthday:   "2016-07-20",
		JoinedAt:   "2023-11-05",
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	env.monitor.RegisterComponent("storage", func(ctx context.Context) error { return nil })
	rec = env.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "unchecked component is not ready")

	env.monitor.CheckAll(context.Background())
	rec = env.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

func TestListStudents(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	students := decodeData[[]model.Student](t, rec)
	assert.Equal(t, repository.SeedStudents(), students)
}

func TestGetStudent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/students/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.SeedStudents()[1], decodeData[model.Student](t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/students/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/students/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStudent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/students", validForm())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeData[model.Student](t, rec)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "高橋 ゆい", created.Name)
	assert.Equal(t, model.Amount10000, created.Amount)
	assert.Equal(t, "2016-07-20", created.Birthday)
	assert.Equal(t, "2023年11月入会", created.JoinedAt)

	list := env.store.List()
	assert.Equal(t, created, list[len(list)-1])
	assert.Equal(t, 1, env.persister.Saves())
}

func TestCreateStudent_Defaults(t *testing.T) {
	env := newTestEnv(t)

	form := StudentForm{Name: "A", ParentName: "B", Phone: "1"}
	rec := env.do(t, http.MethodPost, "/api/v1/students", form)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeData[model.Student](t, rec)
	assert.Equal(t, model.DefaultAmount, created.Amount)
	assert.Equal(t, "2024年3月入会", created.JoinedAt)
	assert.Empty(t, created.Birthday)
	assert.Empty(t, created.Email)
}

func TestCreateStudent_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *StudentForm)
		field  string
		msg    string
	}{
		{"missing name", func(f *StudentForm) { f.Name = "" }, "name", "名前を入力してください"},
		{"missing parent", func(f *StudentForm) { f.ParentName = "" }, "parentName", "保護者名を入力してください"},
		{"missing phone", func(f *StudentForm) { f.Phone = "" }, "phone", "電話番号を入力してください"},
		{"bad email", func(f *StudentForm) { f.Email = "not-an-email" }, "email", "正しいメールアドレスを入力してください"},
		{"unknown amount", func(f *StudentForm) { f.Amount = "7000" }, "amount", "月謝を選択してください"},
		{"malformed birthday", func(f *StudentForm) { f.Birthday = "2016/07/20" }, "birthday", "正しい日付を選択してください"},
		{"future birthday", func(f *StudentForm) { f.Birthday = "2030-01-01" }, "birthday", "正しい日付を選択してください"},
		{"ancient joinedAt", func(f *StudentForm) { f.JoinedAt = "1899-12-31" }, "joinedAt", "正しい日付を選択してください"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			form := validForm()
			tt.mutate(&form)

			rec := env.do(t, http.MethodPost, "/api/v1/students", form)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			fields := decodeFields(t, rec)
			assert.Equal(t, tt.msg, fields[tt.field])
			assert.Len(t, env.store.List(), 3, "store must not be touched")
			assert.Equal(t, 0, env.persister.Saves())
		})
	}
}

func TestCreateStudent_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStudent_PersistFailure(t *testing.T) {
	env := newTestEnv(t)
	env.persister.FailWith(errors.New("quota exceeded"))

	rec := env.do(t, http.MethodPost, "/api/v1/students", validForm())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// 内存中的记录不回滚
	_, ok := env.store.Get(4)
	assert.True(t, ok)
}

func TestUpdateStudent(t *testing.T) {
	env := newTestEnv(t)
	before, _ := env.store.Get(1)

	form := StudentForm{Name: "山田 花", ParentName: before.ParentName, Phone: before.Phone, Email: before.Email}
	rec := env.do(t, http.MethodPut, "/api/v1/students/1", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want := before
	want.Name = "山田 花"
	want.Birthday = ""
	want.JoinedAt = ""
	assert.Equal(t, want, decodeData[model.Student](t, rec), "amount is kept, empty dates are cleared")

	got, _ := env.store.Get(1)
	assert.Equal(t, want, got)
}

func TestUpdateStudent_ClearsBirthday(t *testing.T) {
	env := newTestEnv(t)
	before, _ := env.store.Get(1)
	require.NotEmpty(t, before.Birthday)

	form := StudentForm{
		Name:       before.Name,
		ParentName: before.ParentName,
		Phone:      before.Phone,
		Email:      before.Email,
		Amount:     string(before.Amount),
		Birthday:   "",
		JoinedAt:   "2022-04-01",
	}
	rec := env.do(t, http.MethodPut, "/api/v1/students/1", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeData[model.Student](t, rec)
	assert.Empty(t, updated.Birthday)
	assert.Equal(t, "2022年4月入会", updated.JoinedAt)

	got, _ := env.store.Get(1)
	assert.Empty(t, got.Birthday)
	assert.Equal(t, 1, env.persister.Saves())
}

func TestUpdateStudent_ChangesDates(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/students/2", validForm())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeData[model.Student](t, rec)
	assert.Equal(t, 2, updated.ID)
	assert.Equal(t, "2016-07-20", updated.Birthday)
	assert.Equal(t, "2023年11月入会", updated.JoinedAt)
}

func TestUpdateStudent_NotFound(t *testing.T) {
	env := newTestEnv(t)
	before := env.store.List()

	rec := env.do(t, http.MethodPut, "/api/v1/students/42", validForm())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before, env.store.List())
}

func TestUpdateStudent_Invalid(t *testing.T) {
	env := newTestEnv(t)
	form := validForm()
	form.Phone = ""

	rec := env.do(t, http.MethodPut, "/api/v1/students/1", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "電話番号を入力してください", decodeFields(t, rec)["phone"])
}

func TestDeleteStudent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/v1/students/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	ids := []int{}
	for _, s := range env.store.List() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{1, 3}, ids)

	rec = env.do(t, http.MethodDelete, "/api/v1/students/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStudentNotes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/students/1/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	notes := decodeData[[]model.Note](t, rec)
	require.Len(t, notes, 2)
	assert.Equal(t, 1, notes[0].StudentID)
	assert.True(t, notes[0].CreatedAt.Equal(fixedNow.AddDate(0, 0, -2)))
	assert.True(t, notes[0].CreatedAt.After(notes[1].CreatedAt))

	rec = env.do(t, http.MethodGet, "/api/v1/students/99/notes", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
