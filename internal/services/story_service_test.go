// internal/services/story_service_test.go
package services

import (
	"testing"
	"time"

	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
	"github.com/talhaerkul/MutualStory-public/internal/models"
)

// TestStoryCreateAndGet 创建并读取故事
func TestStoryCreateAndGet(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	story, err := svc.CreateStory("Der Hund", "Der Hund läuft schnell.", "de", models.LevelBeginner)
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	if story.ID == "" {
		t.Fatal("故事应获得生成的ID")
	}

	loaded, err := svc.GetStoryByID(story.ID)
	if err != nil {
		t.Fatalf("读取故事失败: %v", err)
	}
	if loaded.Title != "Der Hund" || loaded.Level != models.LevelBeginner {
		t.Fatalf("故事内容不正确: %+v", loaded)
	}

	_, err = svc.GetStoryByID("nonexistent")
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("不存在的故事应返回NotFound错误，实际: %v", err)
	}
}

// TestStoryCreateValidation 标题和内容不能为空
func TestStoryCreateValidation(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	if _, err := svc.CreateStory("", "content", "de", models.LevelBeginner); !apperrors.IsValidationError(err) {
		t.Fatalf("空标题应返回验证错误，实际: %v", err)
	}
	if _, err := svc.CreateStory("title", "  ", "de", models.LevelBeginner); !apperrors.IsValidationError(err) {
		t.Fatalf("空内容应返回验证错误，实际: %v", err)
	}
}

// TestStoryWithTranslations 创建故事并随附译文
func TestStoryWithTranslations(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	story, err := svc.CreateStoryWithTranslations(
		"Der Hund", "Der Hund läuft schnell.", "de", models.LevelBeginner,
		[]models.TranslationUpdate{
			{Language: "en", Story: "The dog runs fast."},
			{Language: "tr", Story: "Köpek hızlı koşar."},
		})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	result, err := svc.GetStoryWithTranslations(story.ID)
	if err != nil {
		t.Fatalf("读取故事失败: %v", err)
	}
	if len(result.Translations) != 2 {
		t.Fatalf("应有2条译文，实际%d条", len(result.Translations))
	}

	translation, err := svc.GetTranslation(story.ID, "en")
	if err != nil {
		t.Fatalf("按语言获取译文失败: %v", err)
	}
	if translation.Story != "The dog runs fast." {
		t.Fatalf("译文内容不正确: %s", translation.Story)
	}

	if _, err := svc.GetTranslation(story.ID, "fr"); !apperrors.IsNotFoundError(err) {
		t.Fatalf("不存在的语言应返回NotFound错误，实际: %v", err)
	}
}

// TestStoryUpdateUpsertsTranslations 更新故事时按语言更新或追加译文
func TestStoryUpdateUpsertsTranslations(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	story, _ := svc.CreateStoryWithTranslations(
		"Der Hund", "Der Hund läuft schnell.", "de", models.LevelBeginner,
		[]models.TranslationUpdate{{Language: "en", Story: "The dog runs fast."}})

	err := svc.UpdateStory(story.ID, "Der schnelle Hund", "", "", models.LevelIntermediate,
		[]models.TranslationUpdate{
			{Language: "en", Story: "The quick dog runs."},  // 更新现有译文
			{Language: "tr", Story: "Hızlı köpek koşuyor."}, // 追加新语言
		})
	if err != nil {
		t.Fatalf("更新故事失败: %v", err)
	}

	result, _ := svc.GetStoryWithTranslations(story.ID)
	if result.Story.Title != "Der schnelle Hund" {
		t.Fatalf("标题未更新: %s", result.Story.Title)
	}
	if result.Story.OriginalStory != "Der Hund läuft schnell." {
		t.Fatal("空字段不应覆盖原有内容")
	}
	if len(result.Translations) != 2 {
		t.Fatalf("应有2条译文，实际%d条", len(result.Translations))
	}

	en, _ := svc.GetTranslation(story.ID, "en")
	if en.Story != "The quick dog runs." {
		t.Fatalf("英文译文应被更新: %s", en.Story)
	}
}

// TestStoryDeleteCascades 删除故事时级联删除其译文
func TestStoryDeleteCascades(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	story, _ := svc.CreateStoryWithTranslations(
		"Der Hund", "Der Hund läuft schnell.", "de", models.LevelBeginner,
		[]models.TranslationUpdate{{Language: "en", Story: "The dog runs fast."}})

	if err := svc.DeleteStory(story.ID); err != nil {
		t.Fatalf("删除故事失败: %v", err)
	}

	if _, err := svc.GetStoryByID(story.ID); !apperrors.IsNotFoundError(err) {
		t.Fatal("删除后故事不应存在")
	}

	translations, err := svc.GetStoryTranslations(story.ID)
	if err != nil {
		t.Fatalf("读取译文失败: %v", err)
	}
	if len(translations) != 0 {
		t.Fatalf("译文应被级联删除: %+v", translations)
	}
}

// TestStoryPagination 分页从新到旧返回并正确标记hasMore
func TestStoryPagination(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	titles := []string{"Erste", "Zweite", "Dritte", "Vierte", "Fünfte"}
	for _, title := range titles {
		if _, err := svc.CreateStory(title, "Inhalt der Geschichte.", "de", models.LevelBeginner); err != nil {
			t.Fatalf("创建故事失败: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	page1, err := svc.GetStoriesPaginated(1, 2)
	if err != nil {
		t.Fatalf("分页查询失败: %v", err)
	}
	if len(page1.Stories) != 2 || !page1.HasMore {
		t.Fatalf("第一页应有2条且hasMore为true: %d条, hasMore=%v", len(page1.Stories), page1.HasMore)
	}
	if page1.Stories[0].Title != "Fünfte" {
		t.Fatalf("最新创建的故事应排在最前: %s", page1.Stories[0].Title)
	}

	page3, err := svc.GetStoriesPaginated(3, 2)
	if err != nil {
		t.Fatalf("分页查询失败: %v", err)
	}
	if len(page3.Stories) != 1 || page3.HasMore {
		t.Fatalf("最后一页应有1条且hasMore为false: %d条, hasMore=%v", len(page3.Stories), page3.HasMore)
	}

	empty, err := svc.GetStoriesPaginated(10, 2)
	if err != nil {
		t.Fatalf("分页查询失败: %v", err)
	}
	if len(empty.Stories) != 0 || empty.HasMore {
		t.Fatal("超出范围的页应返回空列表")
	}
}

// TestStorySearch 在标题和原文中搜索
func TestStorySearch(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	svc.CreateStory("Der Hund", "Der Hund läuft schnell.", "de", models.LevelBeginner)
	svc.CreateStory("Die Katze", "Die Katze schläft den ganzen Tag.", "de", models.LevelBeginner)

	byTitle, err := svc.SearchStories("hund")
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Der Hund" {
		t.Fatalf("按标题搜索结果不正确: %+v", byTitle)
	}

	byContent, err := svc.SearchStories("schläft")
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(byContent) != 1 || byContent[0].Title != "Die Katze" {
		t.Fatalf("按原文搜索结果不正确: %+v", byContent)
	}

	none, _ := svc.SearchStories("elefant")
	if len(none) != 0 {
		t.Fatalf("无匹配时应返回空列表: %+v", none)
	}
}

// TestFavoriteToggle 切换收藏状态
func TestFavoriteToggle(t *testing.T) {
	svc := NewStoryService(newTestStorage(t))

	story, _ := svc.CreateStory("Der Hund", "Der Hund läuft schnell.", "de", models.LevelBeginner)

	favorited, err := svc.ToggleFavorite("user1", story.ID)
	if err != nil {
		t.Fatalf("切换收藏失败: %v", err)
	}
	if !favorited {
		t.Fatal("第一次切换应变为已收藏")
	}

	stories, err := svc.GetFavoriteStories("user1")
	if err != nil {
		t.Fatalf("读取收藏失败: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != story.ID {
		t.Fatalf("收藏列表不正确: %+v", stories)
	}

	favorited, err = svc.ToggleFavorite("user1", story.ID)
	if err != nil {
		t.Fatalf("切换收藏失败: %v", err)
	}
	if favorited {
		t.Fatal("第二次切换应取消收藏")
	}

	stories, _ = svc.GetFavoriteStories("user1")
	if len(stories) != 0 {
		t.Fatalf("取消收藏后列表应为空: %+v", stories)
	}

	// 未登录用户不能收藏
	if _, err := svc.ToggleFavorite("", story.ID); !apperrors.IsUnauthorizedError(err) {
		t.Fatalf("空用户ID应返回未授权错误，实际: %v", err)
	}
}
