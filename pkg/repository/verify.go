package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"PianoRoster/pkg/model"
)

// VerifySnapshot 检查快照是否满足集合约束，返回所有问题
func VerifySnapshot(snapshot *model.Snapshot) []string {
	var problems []string
	validate := validator.New()
	seen := make(map[int]int)

	for i, s := range snapshot.Students {
		prefix := fmt.Sprintf("第%d条(id=%d)", i+1, s.ID)

		if s.ID <= 0 {
			problems = append(problems, prefix+": ID必须为正数")
		}
		if first, ok := seen[s.ID]; ok {
			problems = append(problems, fmt.Sprintf("%s: ID与第%d条重复", prefix, first+1))
		} else {
			seen[s.ID] = i
		}

		for _, field := range []struct {
			name  string
			value string
		}{
			{"name", s.Name},
			{"parentName", s.ParentName},
			{"phone", s.Phone},
		} {
			if strings.TrimSpace(field.value) == "" {
				problems = append(problems, fmt.Sprintf("%s: %s为空", prefix, field.name))
			}
		}
		if s.Email != "" {
			if err := validate.Var(s.Email, "email"); err != nil {
				problems = append(problems, fmt.Sprintf("%s: 邮箱格式错误 %q", prefix, s.Email))
			}
		}
		if !s.Amount.Valid() {
			problems = append(problems, fmt.Sprintf("%s: 未知的月谢档位 %q", prefix, s.Amount))
		}
		if s.Birthday != "" {
			if _, err := time.Parse("2006-01-02", s.Birthday); err != nil {
				problems = append(problems, fmt.Sprintf("%s: 生日格式错误 %q", prefix, s.Birthday))
			}
		}
	}

	return problems
}
