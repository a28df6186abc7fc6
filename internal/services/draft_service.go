// internal/services/draft_service.go
package services

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
	"github.com/talhaerkul/MutualStory-public/internal/models"
	"github.com/talhaerkul/MutualStory-public/internal/storage"
)

const draftsCollection = "translation_drafts"

// userIDSanitizer 替换用户ID中不允许出现在存储路径里的字符
var userIDSanitizer = strings.NewReplacer(
	".", "_",
	"#", "_",
	"$", "_",
	"[", "_",
	"]", "_",
)

// DraftService 管理用户的翻译草稿
// 草稿只追加，不原地修改
type DraftService struct {
	store *storage.FileStorage
}

// NewDraftService 创建草稿服务
func NewDraftService(store *storage.FileStorage) *DraftService {
	return &DraftService{store: store}
}

// SanitizeUserID 清理用户ID用作存储路径的一部分
func SanitizeUserID(userID string) string {
	return userIDSanitizer.Replace(userID)
}

// AnonymousUserID 根据客户端IP生成匿名用户ID
func AnonymousUserID(clientIP string) string {
	if clientIP == "" {
		return "anonymous_unknown"
	}
	return "anonymous_" + strings.ReplaceAll(clientIP, ".", "_")
}

// draftCollection 返回某用户在某故事下的草稿集合路径
func (s *DraftService) draftCollection(userID, storyID string) string {
	return filepath.Join(draftsCollection, SanitizeUserID(userID), storyID)
}

// CreateDraft 保存一份新草稿
func (s *DraftService) CreateDraft(userID, storyID, content, language string) (*models.TranslationDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("草稿内容不能为空", nil)
	}

	draft := &models.TranslationDraft{
		ID:       s.store.PushKey(),
		Content:  content,
		Language: language,
		Date:     time.Now(),
	}

	if err := s.store.SaveDoc(s.draftCollection(userID, storyID), draft.ID, draft); err != nil {
		return nil, apperrors.NewProcessingError("保存草稿失败", err)
	}

	return draft, nil
}

// GetDrafts 获取某用户在某故事下的全部草稿，从新到旧
func (s *DraftService) GetDrafts(userID, storyID string) ([]models.TranslationDraft, error) {
	docs, err := s.store.LoadAll(s.draftCollection(userID, storyID))
	if err != nil {
		return nil, apperrors.NewProcessingError("读取草稿失败", err)
	}

	drafts := make([]models.TranslationDraft, 0, len(docs))
	for _, raw := range docs {
		var draft models.TranslationDraft
		if err := json.Unmarshal(raw, &draft); err != nil {
			continue
		}
		drafts = append(drafts, draft)
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].Date.After(drafts[j].Date)
	})

	return drafts, nil
}

// GetDraft 获取单份草稿
func (s *DraftService) GetDraft(userID, storyID, draftID string) (*models.TranslationDraft, error) {
	var draft models.TranslationDraft
	if err := s.store.LoadDoc(s.draftCollection(userID, storyID), draftID, &draft); err != nil {
		return nil, apperrors.NewNotFoundError("草稿不存在: "+draftID, err)
	}
	return &draft, nil
}

// DeleteDraft 删除草稿，草稿不存在时视为成功
func (s *DraftService) DeleteDraft(userID, storyID, draftID string) error {
	if err := s.store.DeleteDoc(s.draftCollection(userID, storyID), draftID); err != nil {
		return apperrors.NewProcessingError("删除草稿失败", err)
	}
	return nil
}
