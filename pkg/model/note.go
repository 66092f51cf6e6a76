// pkg/model/note.go
package model

import "time"

// NoteAuthor 备注作者
type NoteAuthor struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Note 学生备注（示例数据，不持久化）
type Note struct {
	ID        int        `json:"id"`
	StudentID int        `json:"studentId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    NoteAuthor `json:"author"`
}

// SampleNotes 生成某个学生的示例备注，按时间从新到旧
func SampleNotes(studentID int, now time.Time) []Note {
	author := NoteAuthor{
		Name:   "Jane Smith",
		Avatar: "https://github.com/shadcn.png",
	}
	return []Note{
		{
			ID:        1,
			StudentID: studentID,
			Content:   "教訓メモ1",
			CreatedAt: now.AddDate(0, 0, -2),
			Author:    author,
		},
		{
			ID:        2,
			StudentID: studentID,
			Content:   "教訓メモ2",
			CreatedAt: now.AddDate(0, 0, -30),
			Author:    author,
		},
	}
}
