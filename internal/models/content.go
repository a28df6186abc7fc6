// internal/models/content.go
package models

import (
	"time"
)

// Banner 首页横幅
type Banner struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ButtonText  string    `json:"button_text"`
	ButtonLink  string    `json:"button_link"`
	IsActive    bool      `json:"is_active"` // 同一时刻最多一个横幅处于激活状态
	CreatedAt   time.Time `json:"created_at"`
}

// Quote 首页展示的名言
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
