// internal/models/draft.go
package models

import (
	"time"
)

// TranslationDraft 用户保存的翻译草稿
// 草稿一经创建即不可修改，只能追加新草稿或删除旧草稿
type TranslationDraft struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Language string    `json:"language"` // 译文语言，必须不同于当前展示的原文语言
	Date     time.Time `json:"date"`
}
