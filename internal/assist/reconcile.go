// internal/assist/reconcile.go
package assist

import (
	"strings"
	"unicode/utf8"

	"github.com/talhaerkul/MutualStory-public/internal/config"
	"github.com/talhaerkul/MutualStory-public/internal/models"
)

// AssessmentView 评估结果经过校验后呈现给用户的状态
type AssessmentView struct {
	Score                  int    `json:"score"`
	Feedback               string `json:"feedback"`
	HasImprovedTranslation bool   `json:"has_improved_translation"`
	ImprovedTranslation    string `json:"improved_translation,omitempty"`
}

// Reconciler 将原始评估结果转换为展示状态
// 分数和反馈原样透出，改进译文建议需通过全部校验门
type Reconciler struct {
	cfg config.AssistConfig
}

// NewReconciler 创建结果校验器
func NewReconciler(cfg config.AssistConfig) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Reconcile 合并评估结果与被评估文本，决定是否透出改进建议
// 建议仅在以下条件全部成立时透出：
//   - new_translate为true且translation非空
//   - 被评估文本以终止符结尾或包含句号
//   - 建议长度不超过被评估文本的SuggestionMaxRatio倍
func (r *Reconciler) Reconcile(result *models.AssessmentResult, assessedText string) AssessmentView {
	view := AssessmentView{
		Score:    result.Score,
		Feedback: result.Feedback,
	}

	if !result.NewTranslate || result.Translation == "" {
		return view
	}

	hasComplete := endsWithAny(assessedText, sentenceTerminators) ||
		strings.Contains(assessedText, ".")
	if !hasComplete {
		return view
	}

	// 防止建议补全出远超用户所写内容的文本
	suggestionLen := utf8.RuneCountInString(result.Translation)
	assessedLen := utf8.RuneCountInString(assessedText)
	if float64(suggestionLen) > r.cfg.SuggestionMaxRatio*float64(assessedLen) {
		return view
	}

	view.HasImprovedTranslation = true
	view.ImprovedTranslation = result.Translation
	return view
}
