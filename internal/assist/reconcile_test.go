// internal/assist/reconcile_test.go
package assist

import (
	"strings"
	"testing"

	"github.com/talhaerkul/MutualStory-public/internal/config"
	"github.com/talhaerkul/MutualStory-public/internal/models"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(config.DefaultAssistConfig())
}

// TestReconcileExposesSuggestion 满足全部条件时透出改进建议
func TestReconcileExposesSuggestion(t *testing.T) {
	result := &models.AssessmentResult{
		Score:        70,
		Feedback:     "Close, but word order is off",
		NewTranslate: true,
		Translation:  "The dog runs quickly.",
	}

	view := newTestReconciler().Reconcile(result, "The dog quickly runs.")

	if view.Score != 70 {
		t.Fatalf("分数应原样透出，实际: %d", view.Score)
	}
	if view.Feedback != result.Feedback {
		t.Fatalf("反馈应原样透出，实际: %s", view.Feedback)
	}
	if !view.HasImprovedTranslation {
		t.Fatal("满足全部条件时应透出建议")
	}
	if view.ImprovedTranslation != "The dog runs quickly." {
		t.Fatalf("建议内容不正确: %s", view.ImprovedTranslation)
	}
}

// TestReconcileNewTranslateFalse new_translate为false时即使有译文也不透出建议
func TestReconcileNewTranslateFalse(t *testing.T) {
	result := &models.AssessmentResult{
		Score:        85,
		Feedback:     "Good",
		NewTranslate: false,
		Translation:  "The dog runs quickly.",
	}

	view := newTestReconciler().Reconcile(result, "The dog quickly runs.")

	if view.HasImprovedTranslation {
		t.Fatal("new_translate为false时不应透出建议")
	}
	if view.ImprovedTranslation != "" {
		t.Fatal("建议内容应被清空")
	}
	if view.Score != 85 || view.Feedback != "Good" {
		t.Fatal("分数和反馈仍应透出")
	}
}

// TestReconcileSuggestionTooLong 建议超过被评估文本1.5倍长度时不透出
func TestReconcileSuggestionTooLong(t *testing.T) {
	assessed := "The dog runs."
	result := &models.AssessmentResult{
		Score:        60,
		Feedback:     "Incomplete",
		NewTranslate: true,
		Translation:  strings.Repeat("x", len(assessed)*2),
	}

	view := newTestReconciler().Reconcile(result, assessed)

	if view.HasImprovedTranslation {
		t.Fatal("超长建议不应透出")
	}
}

// TestReconcileSuggestionBoundaryLength 恰好1.5倍长度的建议可以透出
func TestReconcileSuggestionBoundaryLength(t *testing.T) {
	assessed := "The dog le." // 11个字符
	result := &models.AssessmentResult{
		Score:        60,
		Feedback:     "ok",
		NewTranslate: true,
		Translation:  strings.Repeat("y", 16), // 16 <= 16.5
	}

	view := newTestReconciler().Reconcile(result, assessed)
	if !view.HasImprovedTranslation {
		t.Fatal("不超过1.5倍长度的建议应透出")
	}

	result.Translation = strings.Repeat("y", 17) // 17 > 16.5
	view = newTestReconciler().Reconcile(result, assessed)
	if view.HasImprovedTranslation {
		t.Fatal("超过1.5倍长度的建议不应透出")
	}
}

// TestReconcileIncompleteText 被评估文本无完整句时不透出建议
func TestReconcileIncompleteText(t *testing.T) {
	result := &models.AssessmentResult{
		Score:        50,
		Feedback:     "Partial",
		NewTranslate: true,
		Translation:  "The dog",
	}

	view := newTestReconciler().Reconcile(result, "The dog")

	if view.HasImprovedTranslation {
		t.Fatal("无完整句的被评估文本不应触发建议")
	}
}

// TestReconcileContainsPeriod 文本中间含句号也算完整
func TestReconcileContainsPeriod(t *testing.T) {
	result := &models.AssessmentResult{
		Score:        75,
		Feedback:     "ok",
		NewTranslate: true,
		Translation:  "The dog runs. It is fast",
	}

	view := newTestReconciler().Reconcile(result, "The dog runs. It is fas")

	if !view.HasImprovedTranslation {
		t.Fatal("含句号的文本应视为完整")
	}
}

// TestHasCompleteSentence 完整句判定
func TestHasCompleteSentence(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Hello world", false},
		{"Hello world.", true},
		{"Hello world!", true},
		{"Hello world?", true},
		{"Hello. world", true}, // 句号在中间也算
		{"", false},
		{"Hello world,", false}, // 逗号不构成完整句
	}

	for _, tc := range cases {
		if got := HasCompleteSentence(tc.text); got != tc.want {
			t.Fatalf("HasCompleteSentence(%q) = %v, 期望 %v", tc.text, got, tc.want)
		}
	}
}
