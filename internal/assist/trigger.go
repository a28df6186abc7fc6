// internal/assist/trigger.go
package assist

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/talhaerkul/MutualStory-public/internal/config"
)

// 句子/分句终止符
const sentenceTerminators = ".!?,"

// 完整句终止符，用于候选译文判定是否可请求替代表达
const hardTerminators = ".!?"

// AssessFunc 在触发条件满足后被调用执行实际评估
// seq为本次请求的序号，结果到达时用于丢弃过期响应
type AssessFunc func(originalText, userText, sourceLanguage, targetLanguage string, seq uint64)

// Trigger 根据键入事件决定是否、何时调用翻译评估
// 所有判定门依次生效：AI模式开关、空文本/重复文本、
// 终止符键入节奏、完整度启发式、最小可评估长度、防抖
type Trigger struct {
	cfg    config.AssistConfig
	clock  Clock
	assess AssessFunc

	mu             sync.Mutex
	aiMode         bool
	originalText   string
	sourceLanguage string
	targetLanguage string
	lastAssessed   string
	pendingText    string
	timer          Timer
	seq            uint64
}

// NewTrigger 创建评估触发器
func NewTrigger(cfg config.AssistConfig, clock Clock, assess AssessFunc) *Trigger {
	return &Trigger{
		cfg:    cfg,
		clock:  clock,
		assess: assess,
	}
}

// SetOriginal 设置当前被翻译的原文及语言对，并清空已评估记录
func (t *Trigger) SetOriginal(text, sourceLanguage, targetLanguage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.originalText = text
	t.sourceLanguage = sourceLanguage
	t.targetLanguage = targetLanguage
	t.lastAssessed = ""
	t.cancelTimerLocked()
}

// EnableAIMode 开启AI辅助模式
// 若当前文本已包含完整句，立即执行一次评估
func (t *Trigger) EnableAIMode(currentText string) {
	t.mu.Lock()
	t.aiMode = true
	t.mu.Unlock()

	if HasCompleteSentence(currentText) {
		t.ForceAssess(currentText)
	}
}

// DisableAIMode 关闭AI辅助模式并取消挂起的评估
func (t *Trigger) DisableAIMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aiMode = false
	t.cancelTimerLocked()
}

// AIMode 返回AI辅助模式是否开启
func (t *Trigger) AIMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aiMode
}

// OnTextChange 处理一次键入后的完整候选文本
func (t *Trigger) OnTextChange(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// 门1：AI模式未开启不触发
	if !t.aiMode {
		return
	}
	// 门2：空文本或与上次评估文本相同不触发
	if text == "" || text == t.lastAssessed {
		return
	}
	// 门3：只有以终止符结尾的键入才进入后续判定
	if !endsWithAny(text, sentenceTerminators) {
		return
	}
	// 门4：完整度启发式
	if !t.completenessLocked(text) {
		return
	}
	// 门5：候选文本相对原文首句过短则不评估
	if t.tooShortLocked(text) {
		return
	}

	// 门6：防抖，新的合格键入取消并重启计时
	t.pendingText = text
	t.cancelTimerLocked()
	t.timer = t.clock.AfterFunc(t.cfg.DebounceInterval, t.fireDebounced)
}

// ForceAssess 跳过键入节奏/完整度/长度/防抖判定立即评估
// 用于用户主动刷新；AI模式开关和重复文本判定仍然生效
func (t *Trigger) ForceAssess(text string) {
	t.mu.Lock()
	if !t.aiMode || text == "" || text == t.lastAssessed {
		t.mu.Unlock()
		return
	}
	t.cancelTimerLocked()
	original, source, target, seq := t.markAssessedLocked(text)
	t.mu.Unlock()

	t.assess(original, text, source, target, seq)
}

// MarkAssessed 将文本记为已评估，不发起调用
// 用户采纳建议或替代表达后调用，避免立刻重新评估
func (t *Trigger) MarkAssessed(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastAssessed = text
	t.cancelTimerLocked()
}

// Context 返回当前原文及语言对
func (t *Trigger) Context() (original, sourceLanguage, targetLanguage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.originalText, t.sourceLanguage, t.targetLanguage
}

// IsCurrent 判断序号是否仍是最新一次发起的请求
// 过期的在途响应不应覆盖较新请求的结果
func (t *Trigger) IsCurrent(seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return seq == t.seq
}

// fireDebounced 防抖期满后执行评估
func (t *Trigger) fireDebounced() {
	t.mu.Lock()
	if !t.aiMode {
		t.mu.Unlock()
		return
	}
	text := t.pendingText
	t.timer = nil
	// 计时器回调可能与重新调度并发执行，旧回调不应重复评估同一文本
	if text == "" || text == t.lastAssessed {
		t.mu.Unlock()
		return
	}
	original, source, target, seq := t.markAssessedLocked(text)
	t.mu.Unlock()

	t.assess(original, text, source, target, seq)
}

// markAssessedLocked 发起调用前乐观地记录已评估文本并分配序号
func (t *Trigger) markAssessedLocked(text string) (original, source, target string, seq uint64) {
	t.lastAssessed = text
	t.seq++
	return t.originalText, t.sourceLanguage, t.targetLanguage, t.seq
}

func (t *Trigger) cancelTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// completenessLocked 门4：以终止符结尾，或长度变化显著
// 显著变化 = 比上次评估文本长超过SignificantGrowth，或比上次更短
func (t *Trigger) completenessLocked(text string) bool {
	if endsWithAny(text, sentenceTerminators) {
		return true
	}
	curLen := utf8.RuneCountInString(text)
	prevLen := utf8.RuneCountInString(t.lastAssessed)
	significantChange := curLen-prevLen > t.cfg.SignificantGrowth || curLen < prevLen
	return significantChange
}

// tooShortLocked 门5：候选文本过短，或不足原文首句长度的MinOriginalRatio倍
func (t *Trigger) tooShortLocked(text string) bool {
	curLen := utf8.RuneCountInString(text)
	if curLen < t.cfg.MinAssessLength {
		return true
	}
	firstLen := utf8.RuneCountInString(firstSentence(t.originalText))
	if firstLen > 0 && float64(curLen) < t.cfg.MinOriginalRatio*float64(firstLen) {
		return true
	}
	return false
}

// firstSentence 返回原文在第一个句号/感叹号/问号之前的片段
func firstSentence(text string) string {
	if idx := strings.IndexAny(text, hardTerminators); idx >= 0 {
		return text[:idx]
	}
	return text
}

// endsWithAny 判断文本最后一个字符是否属于terminators
func endsWithAny(text, terminators string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	return strings.ContainsRune(terminators, r)
}

// HasCompleteSentence 判断文本是否已构成完整句：
// 以 . ! ? 结尾，或在任意位置包含其中之一
func HasCompleteSentence(text string) bool {
	return endsWithAny(text, hardTerminators) || strings.ContainsAny(text, hardTerminators)
}
