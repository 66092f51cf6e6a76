// pkg/model/student.go
package model

// Amount 月谢档位（日元）
type Amount string

const (
	Amount5000  Amount = "5000"
	Amount10000 Amount = "10000"
)

// DefaultAmount 新建学生时的默认月谢
const DefaultAmount = Amount5000

// Amounts 所有可选的月谢档位
func Amounts() []Amount {
	return []Amount{Amount5000, Amount10000}
}

// Valid 是否为已知档位
func (a Amount) Valid() bool {
	for _, v := range Amounts() {
		if a == v {
			return true
		}
	}
	return false
}

// Student 学生记录
type Student struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ParentName string `json:"parentName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Amount     Amount `json:"amount"`
	Birthday   string `json:"birthday,omitempty"` // YYYY-MM-DD
	JoinedAt   string `json:"joinedAt,omitempty"` // 例: 2024年3月入会
	Avatar     string `json:"avatar"`
}

// StudentFields 新建学生的字段（不含ID）
type StudentFields struct {
	Name       string
	ParentName string
	Phone      string
	Email      string
	Amount     Amount
	Birthday   string
	JoinedAt   string
	Avatar     string
}

// WithID 生成带ID的学生记录
func (f StudentFields) WithID(id int) Student {
	return Student{
		ID:         id,
		Name:       f.Name,
		ParentName: f.ParentName,
		Phone:      f.Phone,
		Email:      f.Email,
		Amount:     f.Amount,
		Birthday:   f.Birthday,
		JoinedAt:   f.JoinedAt,
		Avatar:     f.Avatar,
	}
}

// StudentPatch 部分更新，nil 字段保持原值
type StudentPatch struct {
	Name       *string
	ParentName *string
	Phone      *string
	Email      *string
	Amount     *Amount
	Birthday   *string
	JoinedAt   *string
	Avatar     *string
}

// Apply 将补丁合并到学生记录上，返回合并后的副本
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ParentName != nil {
		s.ParentName = *p.ParentName
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.Birthday != nil {
		s.Birthday = *p.Birthday
	}
	if p.JoinedAt != nil {
		s.JoinedAt = *p.JoinedAt
	}
	if p.Avatar != nil {
		s.Avatar = *p.Avatar
	}
	return s
}
