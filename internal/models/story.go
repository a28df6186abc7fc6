// internal/models/story.go
package models

import (
	"time"
)

// StoryLevel 表示故事的语言难度等级
type StoryLevel string

const (
	LevelBeginner     StoryLevel = "beginner"
	LevelIntermediate StoryLevel = "intermediate"
	LevelAdvanced     StoryLevel = "advanced"
)

// Story 表示一篇原文故事
type Story struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	OriginalStory    string     `json:"original_story"`    // 原文内容
	OriginalLanguage string     `json:"original_language"` // 原文语言代码
	Level            StoryLevel `json:"level"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Translation 表示故事在某一语言下的官方译文
type Translation struct {
	ID         string    `json:"id"`
	OriginalID string    `json:"original_id"` // 所属故事ID
	Language   string    `json:"language"`    // 译文语言代码
	Story      string    `json:"story"`       // 译文内容
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TranslationUpdate 表示创建/更新故事时随附的译文输入
type TranslationUpdate struct {
	Language string `json:"language"`
	Story    string `json:"story"`
}

// StoryWithTranslations 故事及其全部译文
type StoryWithTranslations struct {
	Story        Story         `json:"story"`
	Translations []Translation `json:"translations"`
}

// StoryPage 分页查询结果
type StoryPage struct {
	Stories []Story `json:"stories"`
	HasMore bool    `json:"has_more"`
}

// Favorites 记录用户收藏的故事ID列表
type Favorites struct {
	UserID   string   `json:"user_id"`
	StoryIDs []string `json:"story_ids"`
}
