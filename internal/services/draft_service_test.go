// internal/services/draft_service_test.go
package services

import (
	"os"
	"testing"
	"time"

	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
	"github.com/talhaerkul/MutualStory-public/internal/storage"
)

// newTestStorage 创建基于临时目录的文件存储
func newTestStorage(t *testing.T) *storage.FileStorage {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "mutualstory_test_*")
	if err != nil {
		t.Fatalf("创建临时测试目录失败: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := storage.NewFileStorage(tempDir)
	if err != nil {
		t.Fatalf("创建文件存储失败: %v", err)
	}
	return store
}

// TestSanitizeUserID 用户ID中的保留字符被替换
func TestSanitizeUserID(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example_com"},
		{"user#1", "user_1"},
		{"a.b#c$d[e]f", "a_b_c_d_e_f"},
		{"plainuser", "plainuser"},
	}

	for _, tc := range cases {
		if got := SanitizeUserID(tc.input); got != tc.want {
			t.Fatalf("SanitizeUserID(%q) = %q, 期望 %q", tc.input, got, tc.want)
		}
	}
}

// TestSanitizeUserIDCollision 不同的原始ID可能清理为相同的存储键
// 这是已知的碰撞风险，两者被视为同一草稿所有者
func TestSanitizeUserIDCollision(t *testing.T) {
	a := SanitizeUserID("user.name")
	b := SanitizeUserID("user#name")
	if a != b {
		t.Fatalf("两个ID应清理为相同的键: %q vs %q", a, b)
	}
}

// TestAnonymousUserID 匿名用户ID由客户端IP派生
func TestAnonymousUserID(t *testing.T) {
	if got := AnonymousUserID("192.168.1.10"); got != "anonymous_192_168_1_10" {
		t.Fatalf("匿名ID不正确: %s", got)
	}
	if got := AnonymousUserID(""); got != "anonymous_unknown" {
		t.Fatalf("空IP应返回unknown: %s", got)
	}
}

// TestDraftCreateAndOrdering 创建两份草稿后按时间从新到旧返回
func TestDraftCreateAndOrdering(t *testing.T) {
	svc := NewDraftService(newTestStorage(t))

	first, err := svc.CreateDraft("user1", "story1", "Erster Entwurf.", "de")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}

	// 保证第二份草稿的时间戳更晚
	time.Sleep(10 * time.Millisecond)

	second, err := svc.CreateDraft("user1", "story1", "Zweiter Entwurf.", "de")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}

	drafts, err := svc.GetDrafts("user1", "story1")
	if err != nil {
		t.Fatalf("读取草稿失败: %v", err)
	}

	if len(drafts) != 2 {
		t.Fatalf("应返回2份草稿，实际%d份", len(drafts))
	}
	if drafts[0].ID != second.ID {
		t.Fatal("最新的草稿应排在最前")
	}
	if drafts[1].ID != first.ID {
		t.Fatal("较早的草稿应排在后面")
	}
}

// TestDraftAppendOnly 创建新草稿不会覆盖已有草稿
func TestDraftAppendOnly(t *testing.T) {
	svc := NewDraftService(newTestStorage(t))

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateDraft("user1", "story1", "Ein Entwurf mit Inhalt.", "de"); err != nil {
			t.Fatalf("创建草稿失败: %v", err)
		}
	}

	drafts, err := svc.GetDrafts("user1", "story1")
	if err != nil {
		t.Fatalf("读取草稿失败: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("三次创建应产生3份独立草稿，实际%d份", len(drafts))
	}
}

// TestDraftGetOne 按ID获取单份草稿
func TestDraftGetOne(t *testing.T) {
	svc := NewDraftService(newTestStorage(t))

	created, err := svc.CreateDraft("user1", "story1", "Der Inhalt.", "de")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}

	draft, err := svc.GetDraft("user1", "story1", created.ID)
	if err != nil {
		t.Fatalf("获取草稿失败: %v", err)
	}
	if draft.Content != "Der Inhalt." || draft.Language != "de" {
		t.Fatalf("草稿内容不正确: %+v", draft)
	}

	_, err = svc.GetDraft("user1", "story1", "nonexistent")
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("不存在的草稿应返回NotFound错误，实际: %v", err)
	}
}

// TestDraftDelete 删除草稿后其余草稿保留，删除不存在的草稿不报错
func TestDraftDelete(t *testing.T) {
	svc := NewDraftService(newTestStorage(t))

	first, _ := svc.CreateDraft("user1", "story1", "Erster Entwurf.", "de")
	second, _ := svc.CreateDraft("user1", "story1", "Zweiter Entwurf.", "de")

	if err := svc.DeleteDraft("user1", "story1", first.ID); err != nil {
		t.Fatalf("删除草稿失败: %v", err)
	}

	drafts, err := svc.GetDrafts("user1", "story1")
	if err != nil {
		t.Fatalf("读取草稿失败: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != second.ID {
		t.Fatalf("删除后应只剩另一份草稿: %+v", drafts)
	}

	// 删除不存在的草稿是幂等的
	if err := svc.DeleteDraft("user1", "story1", "nonexistent"); err != nil {
		t.Fatalf("删除不存在的草稿不应报错: %v", err)
	}
}

// TestDraftEmptyContent 空内容的草稿被拒绝
func TestDraftEmptyContent(t *testing.T) {
	svc := NewDraftService(newTestStorage(t))

	_, err := svc.CreateDraft("user1", "story1", "   ", "de")
	if !apperrors.IsValidationError(err) {
		t.Fatalf("空内容应返回验证错误，实际: %v", err)
	}
}

// TestDraftIsolationBetweenUsers 不同用户的草稿相互隔离
func TestDraftIsolationBetweenUsers(t *testing.T) {
	svc := NewDraftService(newTestStorage(t))

	svc.CreateDraft("user1", "story1", "Entwurf von user1.", "de")
	svc.CreateDraft("user2", "story1", "Entwurf von user2.", "de")

	drafts, err := svc.GetDrafts("user1", "story1")
	if err != nil {
		t.Fatalf("读取草稿失败: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Content != "Entwurf von user1." {
		t.Fatalf("用户只应看到自己的草稿: %+v", drafts)
	}
}
