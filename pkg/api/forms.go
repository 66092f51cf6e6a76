package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"PianoRoster/pkg/model"
)

const (
	dateLayout     = "2006-01-02"
	joinedAtLayout = "2006年1月入会"
)

// 日期选择器允许的最早日期
var minFormDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// StudentForm 学生登记/编辑表单
type StudentForm struct {
	Name       string `json:"name" binding:"required"`
	ParentName string `json:"parentName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Amount     string `json:"amount" binding:"omitempty,oneof=5000 10000"`
	Birthday   string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	JoinedAt   string `json:"joinedAt" binding:"omitempty,datetime=2006-01-02"`
	Avatar     string `json:"avatar"`
}

// 字段名 -> JSON 字段名和提示信息
var formFields = map[string]struct {
	key     string
	message string
}{
	"Name":       {"name", "名前を入力してください"},
	"ParentName": {"parentName", "保護者名を入力してください"},
	"Phone":      {"phone", "電話番号を入力してください"},
	"Email":      {"email", "正しいメールアドレスを入力してください"},
	"Amount":     {"amount", "月謝を選択してください"},
	"Birthday":   {"birthday", "正しい日付を選択してください"},
	"JoinedAt":   {"joinedAt", "正しい日付を選択してください"},
}

// FieldErrors 字段级校验错误
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return "表单校验失败"
}

// fieldErrorsFrom 把绑定错误转换为字段错误，非校验错误返回 nil
func fieldErrorsFrom(err error) FieldErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if f, ok := formFields[fe.StructField()]; ok {
			out[f.key] = f.message
			continue
		}
		out[fe.Field()] = fe.Error()
	}
	return out
}

// Check 绑定之后的日期范围检查
func (f *StudentForm) Check(now time.Time) error {
	errs := FieldErrors{}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, field := range []struct {
		name  string
		value string
	}{
		{"Birthday", f.Birthday},
		{"JoinedAt", f.JoinedAt},
	} {
		if field.value == "" {
			continue
		}
		d, err := time.Parse(dateLayout, field.value)
		if err != nil || d.Before(minFormDate) || d.After(today) {
			meta := formFields[field.name]
			errs[meta.key] = meta.message
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Fields 转换为新建字段
// 未选择月谢时使用默认档位，未选择入会日期时使用当月
func (f *StudentForm) Fields(now time.Time) model.StudentFields {
	fields := model.StudentFields{
		Name:       f.Name,
		ParentName: f.ParentName,
		Phone:      f.Phone,
		Email:      f.Email,
		Amount:     model.Amount(f.Amount),
		Birthday:   f.Birthday,
		Avatar:     f.Avatar,
	}
	if fields.Amount == "" {
		fields.Amount = model.DefaultAmount
	}

	joined := now
	if f.JoinedAt != "" {
		if d, err := time.Parse(dateLayout, f.JoinedAt); err == nil {
			joined = d
		}
	}
	fields.JoinedAt = FormatJoinedAt(joined)

	return fields
}

// Patch 转换为编辑补丁
// 编辑提交整张表单，日期留空即清除；月谢未选择时保持原值
func (f *StudentForm) Patch() model.StudentPatch {
	joined := ""
	if f.JoinedAt != "" {
		if d, err := time.Parse(dateLayout, f.JoinedAt); err == nil {
			joined = FormatJoinedAt(d)
		}
	}

	patch := model.StudentPatch{
		Name:       &f.Name,
		ParentName: &f.ParentName,
		Phone:      &f.Phone,
		Email:      &f.Email,
		Birthday:   &f.Birthday,
		JoinedAt:   &joined,
		Avatar:     &f.Avatar,
	}
	if f.Amount != "" {
		amount := model.Amount(f.Amount)
		patch.Amount = &amount
	}
	return patch
}

// FormatJoinedAt 入会日期显示格式，例: 2024年3月入会
func FormatJoinedAt(t time.Time) string {
	return t.Format(joinedAtLayout)
}
