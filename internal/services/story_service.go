// internal/services/story_service.go
package services

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
	"github.com/talhaerkul/MutualStory-public/internal/models"
	"github.com/talhaerkul/MutualStory-public/internal/storage"
)

// 存储集合路径
const (
	storiesCollection      = "stories"
	translationsCollection = "translations"
	favoritesCollection    = "favorites"
)

// DefaultPageSize 默认分页大小
const DefaultPageSize = 6

// StoryService 处理故事及其译文的业务逻辑
type StoryService struct {
	store *storage.FileStorage
}

// NewStoryService 创建故事服务
func NewStoryService(store *storage.FileStorage) *StoryService {
	return &StoryService{store: store}
}

// CreateStory 创建故事
func (s *StoryService) CreateStory(title, originalStory, originalLanguage string, level models.StoryLevel) (*models.Story, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("故事标题不能为空", nil)
	}
	if strings.TrimSpace(originalStory) == "" {
		return nil, apperrors.NewValidationError("故事内容不能为空", nil)
	}

	now := time.Now()
	story := &models.Story{
		ID:               s.store.PushKey(),
		Title:            title,
		OriginalStory:    originalStory,
		OriginalLanguage: originalLanguage,
		Level:            level,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.SaveDoc(storiesCollection, story.ID, story); err != nil {
		return nil, apperrors.NewProcessingError("保存故事失败", err)
	}

	return story, nil
}

// CreateStoryWithTranslations 创建故事并随附译文
func (s *StoryService) CreateStoryWithTranslations(title, originalStory, originalLanguage string, level models.StoryLevel, translations []models.TranslationUpdate) (*models.Story, error) {
	story, err := s.CreateStory(title, originalStory, originalLanguage, level)
	if err != nil {
		return nil, err
	}

	for _, t := range translations {
		if _, err := s.AddTranslation(story.ID, t.Language, t.Story); err != nil {
			return nil, err
		}
	}

	return story, nil
}

// GetStoryByID 获取单个故事
func (s *StoryService) GetStoryByID(id string) (*models.Story, error) {
	var story models.Story
	if err := s.store.LoadDoc(storiesCollection, id, &story); err != nil {
		return nil, apperrors.NewNotFoundError("故事不存在: "+id, err)
	}
	return &story, nil
}

// GetAllStories 获取所有故事
func (s *StoryService) GetAllStories() ([]models.Story, error) {
	docs, err := s.store.LoadAll(storiesCollection)
	if err != nil {
		return nil, apperrors.NewProcessingError("读取故事列表失败", err)
	}

	stories := make([]models.Story, 0, len(docs))
	for _, raw := range docs {
		var story models.Story
		if err := json.Unmarshal(raw, &story); err != nil {
			continue
		}
		stories = append(stories, story)
	}

	return stories, nil
}

// GetStoriesPaginated 分页获取故事，按创建时间从新到旧
// 多取一条用于判断是否还有下一页
func (s *StoryService) GetStoriesPaginated(page, limit int) (*models.StoryPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	stories, err := s.GetAllStories()
	if err != nil {
		return nil, err
	}

	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})

	offset := (page - 1) * limit
	if offset >= len(stories) {
		return &models.StoryPage{Stories: []models.Story{}, HasMore: false}, nil
	}

	end := offset + limit
	hasMore := end < len(stories)
	if end > len(stories) {
		end = len(stories)
	}

	return &models.StoryPage{
		Stories: stories[offset:end],
		HasMore: hasMore,
	}, nil
}

// SearchStories 在标题和原文中搜索，结果从新到旧
func (s *StoryService) SearchStories(term string) ([]models.Story, error) {
	stories, err := s.GetAllStories()
	if err != nil {
		return nil, err
	}

	lowerTerm := strings.ToLower(term)
	matched := make([]models.Story, 0)
	for _, story := range stories {
		if strings.Contains(strings.ToLower(story.Title), lowerTerm) ||
			strings.Contains(strings.ToLower(story.OriginalStory), lowerTerm) {
			matched = append(matched, story)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched, nil
}

// UpdateStory 更新故事并按语言更新/追加译文
func (s *StoryService) UpdateStory(id string, title, originalStory, originalLanguage string, level models.StoryLevel, translations []models.TranslationUpdate) error {
	story, err := s.GetStoryByID(id)
	if err != nil {
		return err
	}

	now := time.Now()
	if title != "" {
		story.Title = title
	}
	if originalStory != "" {
		story.OriginalStory = originalStory
	}
	if originalLanguage != "" {
		story.OriginalLanguage = originalLanguage
	}
	if level != "" {
		story.Level = level
	}
	story.UpdatedAt = now

	// 现有译文按语言索引
	existing, err := s.GetStoryTranslations(id)
	if err != nil {
		return err
	}
	byLanguage := make(map[string]models.Translation, len(existing))
	for _, t := range existing {
		byLanguage[t.Language] = t
	}

	for _, update := range translations {
		if current, ok := byLanguage[update.Language]; ok {
			current.Story = update.Story
			current.UpdatedAt = now
			if err := s.store.SaveDoc(translationsCollection, current.ID, current); err != nil {
				return apperrors.NewProcessingError("更新译文失败", err)
			}
		} else {
			if _, err := s.AddTranslation(id, update.Language, update.Story); err != nil {
				return err
			}
		}
	}

	if err := s.store.SaveDoc(storiesCollection, story.ID, story); err != nil {
		return apperrors.NewProcessingError("保存故事失败", err)
	}

	return nil
}

// DeleteStory 删除故事并级联删除其译文
func (s *StoryService) DeleteStory(id string) error {
	if err := s.store.DeleteDoc(storiesCollection, id); err != nil {
		return apperrors.NewProcessingError("删除故事失败", err)
	}

	translations, err := s.GetStoryTranslations(id)
	if err != nil {
		return err
	}
	for _, t := range translations {
		if err := s.store.DeleteDoc(translationsCollection, t.ID); err != nil {
			return apperrors.NewProcessingError("删除译文失败", err)
		}
	}

	return nil
}

// GetStoryWithTranslations 获取故事及其全部译文
func (s *StoryService) GetStoryWithTranslations(id string) (*models.StoryWithTranslations, error) {
	story, err := s.GetStoryByID(id)
	if err != nil {
		return nil, err
	}

	translations, err := s.GetStoryTranslations(id)
	if err != nil {
		return nil, err
	}

	return &models.StoryWithTranslations{
		Story:        *story,
		Translations: translations,
	}, nil
}

// AddTranslation 为故事添加译文
func (s *StoryService) AddTranslation(storyID, language, text string) (*models.Translation, error) {
	now := time.Now()
	translation := &models.Translation{
		ID:         s.store.PushKey(),
		OriginalID: storyID,
		Language:   language,
		Story:      text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.SaveDoc(translationsCollection, translation.ID, translation); err != nil {
		return nil, apperrors.NewProcessingError("保存译文失败", err)
	}

	return translation, nil
}

// GetStoryTranslations 获取故事的全部译文
func (s *StoryService) GetStoryTranslations(storyID string) ([]models.Translation, error) {
	docs, err := s.store.LoadAll(translationsCollection)
	if err != nil {
		return nil, apperrors.NewProcessingError("读取译文失败", err)
	}

	translations := make([]models.Translation, 0)
	for _, raw := range docs {
		var t models.Translation
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		if t.OriginalID == storyID {
			translations = append(translations, t)
		}
	}

	return translations, nil
}

// GetTranslation 获取故事在指定语言下的译文
func (s *StoryService) GetTranslation(storyID, language string) (*models.Translation, error) {
	translations, err := s.GetStoryTranslations(storyID)
	if err != nil {
		return nil, err
	}

	for _, t := range translations {
		if t.Language == language {
			return &t, nil
		}
	}

	return nil, apperrors.NewNotFoundError("该语言的译文不存在: "+language, nil)
}

// GetFavorites 获取用户收藏的故事ID列表
func (s *StoryService) GetFavorites(userID string) ([]string, error) {
	var favorites models.Favorites
	if err := s.store.LoadDoc(favoritesCollection, userID, &favorites); err != nil {
		// 尚未收藏过任何故事
		return []string{}, nil
	}
	return favorites.StoryIDs, nil
}

// ToggleFavorite 切换收藏状态，返回切换后是否已收藏
func (s *StoryService) ToggleFavorite(userID, storyID string) (bool, error) {
	if userID == "" {
		return false, apperrors.NewUnauthorizedError("需要登录才能收藏", nil)
	}

	current, err := s.GetFavorites(userID)
	if err != nil {
		return false, err
	}

	var updated []string
	found := false
	for _, id := range current {
		if id == storyID {
			found = true
			continue
		}
		updated = append(updated, id)
	}
	if !found {
		updated = append(updated, storyID)
	}

	favorites := models.Favorites{UserID: userID, StoryIDs: updated}
	if err := s.store.SaveDoc(favoritesCollection, userID, favorites); err != nil {
		return false, apperrors.NewProcessingError("保存收藏失败", err)
	}

	return !found, nil
}

// GetFavoriteStories 获取用户收藏的故事，从新到旧
func (s *StoryService) GetFavoriteStories(userID string) ([]models.Story, error) {
	favoriteIDs, err := s.GetFavorites(userID)
	if err != nil {
		return nil, err
	}
	if len(favoriteIDs) == 0 {
		return []models.Story{}, nil
	}

	idSet := make(map[string]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		idSet[id] = true
	}

	all, err := s.GetAllStories()
	if err != nil {
		return nil, err
	}

	stories := make([]models.Story, 0, len(favoriteIDs))
	for _, story := range all {
		if idSet[story.ID] {
			stories = append(stories, story)
		}
	}

	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})

	return stories, nil
}
