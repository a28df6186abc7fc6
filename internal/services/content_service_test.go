// internal/services/content_service_test.go
package services

import (
	"testing"

	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
)

// TestBannerActivateDeactivatesOthers 启用一个横幅时其余横幅被停用
func TestBannerActivateDeactivatesOthers(t *testing.T) {
	svc := NewContentService(newTestStorage(t))

	first, err := svc.CreateBanner("Willkommen", "Erste Kampagne", "", "", "")
	if err != nil {
		t.Fatalf("创建横幅失败: %v", err)
	}
	second, err := svc.CreateBanner("Neuheiten", "Zweite Kampagne", "", "", "")
	if err != nil {
		t.Fatalf("创建横幅失败: %v", err)
	}

	if err := svc.ActivateBanner(first.ID); err != nil {
		t.Fatalf("启用横幅失败: %v", err)
	}

	active, err := svc.GetActiveBanner()
	if err != nil {
		t.Fatalf("获取启用横幅失败: %v", err)
	}
	if active == nil || active.ID != first.ID {
		t.Fatalf("第一个横幅应处于启用状态: %+v", active)
	}

	// 启用第二个后第一个应被停用
	if err := svc.ActivateBanner(second.ID); err != nil {
		t.Fatalf("启用横幅失败: %v", err)
	}

	banners, err := svc.GetAllBanners()
	if err != nil {
		t.Fatalf("读取横幅失败: %v", err)
	}

	activeCount := 0
	for _, banner := range banners {
		if banner.IsActive {
			activeCount++
			if banner.ID != second.ID {
				t.Fatalf("只有第二个横幅应处于启用状态: %+v", banner)
			}
		}
	}
	if activeCount != 1 {
		t.Fatalf("同一时刻应只有一个启用的横幅，实际%d个", activeCount)
	}
}

// TestBannerActivateNotFound 启用不存在的横幅返回NotFound
func TestBannerActivateNotFound(t *testing.T) {
	svc := NewContentService(newTestStorage(t))

	if err := svc.ActivateBanner("nonexistent"); !apperrors.IsNotFoundError(err) {
		t.Fatalf("不存在的横幅应返回NotFound错误，实际: %v", err)
	}
}

// TestGetActiveBannerNone 没有启用的横幅时返回nil
func TestGetActiveBannerNone(t *testing.T) {
	svc := NewContentService(newTestStorage(t))

	svc.CreateBanner("Willkommen", "", "", "", "")

	active, err := svc.GetActiveBanner()
	if err != nil {
		t.Fatalf("获取启用横幅失败: %v", err)
	}
	if active != nil {
		t.Fatalf("新建横幅不应自动启用: %+v", active)
	}
}

// TestBannerUpdateAndDelete 更新和删除横幅
func TestBannerUpdateAndDelete(t *testing.T) {
	svc := NewContentService(newTestStorage(t))

	banner, _ := svc.CreateBanner("Alt", "Beschreibung", "", "", "")

	if err := svc.UpdateBanner(banner.ID, "Neu", "", "", "", ""); err != nil {
		t.Fatalf("更新横幅失败: %v", err)
	}

	banners, _ := svc.GetAllBanners()
	if len(banners) != 1 || banners[0].Title != "Neu" {
		t.Fatalf("横幅标题应被更新: %+v", banners)
	}
	if banners[0].Description != "Beschreibung" {
		t.Fatal("空字段不应覆盖原有内容")
	}

	if err := svc.DeleteBanner(banner.ID); err != nil {
		t.Fatalf("删除横幅失败: %v", err)
	}
	banners, _ = svc.GetAllBanners()
	if len(banners) != 0 {
		t.Fatalf("删除后不应有横幅: %+v", banners)
	}
}

// TestQuoteActivateDeactivatesOthers 启用名言时其余名言被停用
func TestQuoteActivateDeactivatesOthers(t *testing.T) {
	svc := NewContentService(newTestStorage(t))

	first, _ := svc.CreateQuote("Übung macht den Meister.", "Sprichwort")
	second, _ := svc.CreateQuote("Aller Anfang ist schwer.", "Sprichwort")

	if err := svc.ActivateQuote(first.ID); err != nil {
		t.Fatalf("启用名言失败: %v", err)
	}
	if err := svc.ActivateQuote(second.ID); err != nil {
		t.Fatalf("启用名言失败: %v", err)
	}

	active, err := svc.GetActiveQuote()
	if err != nil {
		t.Fatalf("获取启用名言失败: %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Fatalf("最后启用的名言应生效: %+v", active)
	}

	quotes, _ := svc.GetAllQuotes()
	activeCount := 0
	for _, quote := range quotes {
		if quote.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("同一时刻应只有一条启用的名言，实际%d条", activeCount)
	}
}

// TestQuoteValidation 空名言被拒绝
func TestQuoteValidation(t *testing.T) {
	svc := NewContentService(newTestStorage(t))

	if _, err := svc.CreateQuote("  ", "Autor"); !apperrors.IsValidationError(err) {
		t.Fatalf("空名言应返回验证错误，实际: %v", err)
	}
}
