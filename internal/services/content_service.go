// internal/services/content_service.go
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

const (
	bannersCollection = "banners"
	quotesCollection  = "quotes"
)

// ContentService 管理首页横幅和每日名言
type ContentService struct {
	store *storage.FileStorage
}

// NewContentService 创建内容服务
func NewContentService(store *storage.FileStorage) *ContentService {
	return &ContentService{store: store}
}

// CreateBanner 创建横幅
func (s *ContentService) CreateBanner(title, description, imageURL, buttonText, buttonLink string) (*models.Banner, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("横幅标题不能为空", nil)
	}

	banner := &models.Banner{
		ID:          s.store.PushKey(),
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		ButtonText:  buttonText,
		ButtonLink:  buttonLink,
		IsActive:    false,
		CreatedAt:   time.Now(),
	}

	if err := s.store.SaveDoc(bannersCollection, banner.ID, banner); err != nil {
		return nil, apperrors.NewProcessingError("保存横幅失败", err)
	}

	return banner, nil
}

// GetAllBanners 获取全部横幅，从新到旧
func (s *ContentService) GetAllBanners() ([]models.Banner, error) {
	docs, err := s.store.LoadAll(bannersCollection)
	if err != nil {
		return nil, apperrors.NewProcessingError("读取横幅失败", err)
	}

	banners := make([]models.Banner, 0, len(docs))
	for _, raw := range docs {
		var banner models.Banner
		if err := json.Unmarshal(raw, &banner); err != nil {
			continue
		}
		banners = append(banners, banner)
	}

	sort.Slice(banners, func(i, j int) bool {
		return banners[i].CreatedAt.After(banners[j].CreatedAt)
	})

	return banners, nil
}

// GetActiveBanner 获取当前启用的横幅，没有时返回nil
func (s *ContentService) GetActiveBanner() (*models.Banner, error) {
	banners, err := s.GetAllBanners()
	if err != nil {
		return nil, err
	}

	for _, banner := range banners {
		if banner.IsActive {
			b := banner
			return &b, nil
		}
	}

	return nil, nil
}

// ActivateBanner 启用指定横幅，同时停用其他横幅
func (s *ContentService) ActivateBanner(id string) error {
	banners, err := s.GetAllBanners()
	if err != nil {
		return err
	}

	found := false
	for _, banner := range banners {
		shouldBeActive := banner.ID == id
		if shouldBeActive {
			found = true
		}
		if banner.IsActive == shouldBeActive {
			continue
		}
		banner.IsActive = shouldBeActive
		if err := s.store.SaveDoc(bannersCollection, banner.ID, banner); err != nil {
			return apperrors.NewProcessingError("更新横幅状态失败", err)
		}
	}

	if !found {
		return apperrors.NewNotFoundError("横幅不存在: "+id, nil)
	}

	return nil
}

// UpdateBanner 更新横幅内容
func (s *ContentService) UpdateBanner(id, title, description, imageURL, buttonText, buttonLink string) error {
	var banner models.Banner
	if err := s.store.LoadDoc(bannersCollection, id, &banner); err != nil {
		return apperrors.NewNotFoundError("横幅不存在: "+id, err)
	}

	if title != "" {
		banner.Title = title
	}
	if description != "" {
		banner.Description = description
	}
	if imageURL != "" {
		banner.ImageURL = imageURL
	}
	if buttonText != "" {
		banner.ButtonText = buttonText
	}
	if buttonLink != "" {
		banner.ButtonLink = buttonLink
	}

	if err := s.store.SaveDoc(bannersCollection, id, banner); err != nil {
		return apperrors.NewProcessingError("保存横幅失败", err)
	}

	return nil
}

// DeleteBanner 删除横幅
func (s *ContentService) DeleteBanner(id string) error {
	if err := s.store.DeleteDoc(bannersCollection, id); err != nil {
		return apperrors.NewProcessingError("删除横幅失败", err)
	}
	return nil
}

// CreateQuote 创建名言
func (s *ContentService) CreateQuote(text, author string) (*models.Quote, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("名言内容不能为空", nil)
	}

	quote := &models.Quote{
		ID:        s.store.PushKey(),
		Text:      text,
		Author:    author,
		IsActive:  false,
		CreatedAt: time.Now(),
	}

	if err := s.store.SaveDoc(quotesCollection, quote.ID, quote); err != nil {
		return nil, apperrors.NewProcessingError("保存名言失败", err)
	}

	return quote, nil
}

// GetAllQuotes 获取全部名言，从新到旧
func (s *ContentService) GetAllQuotes() ([]models.Quote, error) {
	docs, err := s.store.LoadAll(quotesCollection)
	if err != nil {
		return nil, apperrors.NewProcessingError("读取名言失败", err)
	}

	quotes := make([]models.Quote, 0, len(docs))
	for _, raw := range docs {
		var quote models.Quote
		if err := json.Unmarshal(raw, &quote); err != nil {
			continue
		}
		quotes = append(quotes, quote)
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})

	return quotes, nil
}

// GetActiveQuote 获取当前启用的名言，没有时返回nil
func (s *ContentService) GetActiveQuote() (*models.Quote, error) {
	quotes, err := s.GetAllQuotes()
	if err != nil {
		return nil, err
	}

	for _, quote := range quotes {
		if quote.IsActive {
			q := quote
			return &q, nil
		}
	}

	return nil, nil
}

// ActivateQuote 启用指定名言，同时停用其他名言
func (s *ContentService) ActivateQuote(id string) error {
	quotes, err := s.GetAllQuotes()
	if err != nil {
		return err
	}

	found := false
	for _, quote := range quotes {
		shouldBeActive := quote.ID == id
		if shouldBeActive {
			found = true
		}
		if quote.IsActive == shouldBeActive {
			continue
		}
		quote.IsActive = shouldBeActive
		if err := s.store.SaveDoc(quotesCollection, quote.ID, quote); err != nil {
			return apperrors.NewProcessingError("更新名言状态失败", err)
		}
	}

	if !found {
		return apperrors.NewNotFoundError("名言不存在: "+id, nil)
	}

	return nil
}

// DeleteQuote 删除名言
func (s *ContentService) DeleteQuote(id string) error {
	if err := s.store.DeleteDoc(quotesCollection, id); err != nil {
		return apperrors.NewProcessingError("删除名言失败", err)
	}
	return nil
}
