package repository

import (
	"PianoRoster/pkg/model"
)

// SeedStudents 首次启动时使用的初始学生
// 每次返回新的切片
func SeedStudents() []model.Student {
	return []model.Student{
		{
			ID:         1,
			Name:       "山田 花子",
			ParentName: "山田 太郎",
			Phone:      "090-1234-5678",
			Email:      "yamada@example.com",
			Amount:     model.Amount5000,
			Birthday:   "2015-04-12",
			JoinedAt:   "2022年4月入会",
			Avatar:     "",
		},
		{
			ID:         2,
			Name:       "佐藤 健",
			ParentName: "佐藤 美紀",
			Phone:      "080-2345-6789",
			Email:      "sato@example.com",
			Amount:     model.Amount10000,
			Birthday:   "2012-09-03",
			JoinedAt:   "2021年9月入会",
			Avatar:     "",
		},
		{
			ID:         3,
			Name:       "鈴木 さくら",
			ParentName: "鈴木 一郎",
			Phone:      "070-3456-7890",
			Email:      "",
			Amount:     model.Amount5000,
			JoinedAt:   "2024年3月入会",
			Avatar:     "",
		},
	}
}
