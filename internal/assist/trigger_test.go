// internal/assist/trigger_test.go
package assist

import (
	"sync"
	"testing"
	"time"

	"github.com/talhaerkul/MutualStory-public/internal/config"
	"github.com/talhaerkul/MutualStory-public/internal/models"
)

// assessRecorder 记录触发器发起的评估调用
type assessRecorder struct {
	mu    sync.Mutex
	calls []assessCall
}

type assessCall struct {
	Original string
	Text     string
	Source   string
	Target   string
	Seq      uint64
}

func (r *assessRecorder) fn(original, text, source, target string, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, assessCall{original, text, source, target, seq})
}

func (r *assessRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *assessRecorder) last() assessCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

// newTestTrigger 创建用于测试的触发器及其配套对象
func newTestTrigger(original string) (*Trigger, *ManualClock, *assessRecorder) {
	clock := NewManualClock()
	recorder := &assessRecorder{}
	trigger := NewTrigger(config.DefaultAssistConfig(), clock, recorder.fn)
	trigger.SetOriginal(original, "de", "en")
	return trigger, clock, recorder
}

// TestTriggerAIModeDisabled AI模式关闭时任何键入都不触发评估
func TestTriggerAIModeDisabled(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")

	trigger.OnTextChange("The dog runs fast.")
	clock.Advance(2 * time.Second)

	if recorder.count() != 0 {
		t.Fatalf("AI模式关闭时不应触发评估，实际调用了%d次", recorder.count())
	}
}

// TestTriggerEmptyOrIdenticalText 空文本或与上次评估相同的文本不触发
func TestTriggerEmptyOrIdenticalText(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	trigger.OnTextChange("")
	clock.Advance(2 * time.Second)
	if recorder.count() != 0 {
		t.Fatal("空文本不应触发评估")
	}

	trigger.OnTextChange("The dog runs fast.")
	clock.Advance(2 * time.Second)
	if recorder.count() != 1 {
		t.Fatalf("应触发一次评估，实际%d次", recorder.count())
	}

	// 相同文本再次键入不应重复评估
	trigger.OnTextChange("The dog runs fast.")
	clock.Advance(2 * time.Second)
	if recorder.count() != 1 {
		t.Fatalf("重复文本不应再次评估，实际%d次", recorder.count())
	}
}

// TestTriggerNonTerminatorKeystroke 不以终止符结尾的键入不触发评估
func TestTriggerNonTerminatorKeystroke(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	trigger.OnTextChange("The dog runs fast")
	clock.Advance(2 * time.Second)

	if recorder.count() != 0 {
		t.Fatal("非终止符键入不应触发评估")
	}
}

// TestTriggerMinimumLength 低于最小长度的文本无论如何都不评估
func TestTriggerMinimumLength(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	// 9个字符，以终止符结尾
	trigger.OnTextChange("The dog,.")
	clock.Advance(2 * time.Second)

	if recorder.count() != 0 {
		t.Fatal("长度不足10的文本不应触发评估")
	}
}

// TestTriggerOriginalRatio 相对原文首句过短的文本不评估
func TestTriggerOriginalRatio(t *testing.T) {
	// 首句42个字符，阈值为0.4倍即16.8
	trigger, clock, recorder := newTestTrigger("Eins zwei drei vier fuenf sechs sieben ach. Und mehr.")
	trigger.EnableAIMode("")

	trigger.OnTextChange("One two t,") // 10字符但不足16.8
	clock.Advance(2 * time.Second)
	if recorder.count() != 0 {
		t.Fatal("不足原文首句0.4倍长度的文本不应触发评估")
	}

	trigger.OnTextChange("One two three four five.")
	clock.Advance(2 * time.Second)
	if recorder.count() != 1 {
		t.Fatalf("达到长度阈值后应触发评估，实际%d次", recorder.count())
	}
}

// TestTriggerDebounce 防抖期满前不调用，期满后恰好调用一次
func TestTriggerDebounce(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	trigger.OnTextChange("The dog runs fast.")

	clock.Advance(999 * time.Millisecond)
	if recorder.count() != 0 {
		t.Fatal("防抖期未满不应调用评估")
	}

	clock.Advance(1 * time.Millisecond)
	if recorder.count() != 1 {
		t.Fatalf("防抖期满应恰好调用一次，实际%d次", recorder.count())
	}

	call := recorder.last()
	if call.Original != "Der Hund läuft schnell." || call.Text != "The dog runs fast." {
		t.Fatalf("评估入参不正确: %+v", call)
	}
	if call.Source != "de" || call.Target != "en" {
		t.Fatalf("语言对不正确: %+v", call)
	}
}

// TestTriggerDebounceReset 防抖期内新的合格键入重置计时，最终只调用一次
func TestTriggerDebounceReset(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	trigger.OnTextChange("The dog runs fast,")
	clock.Advance(500 * time.Millisecond)

	trigger.OnTextChange("The dog runs fast.")
	clock.Advance(500 * time.Millisecond)
	if recorder.count() != 0 {
		t.Fatal("计时被重置后原定时刻不应调用")
	}

	clock.Advance(500 * time.Millisecond)
	if recorder.count() != 1 {
		t.Fatalf("重置后的防抖期满应只调用一次，实际%d次", recorder.count())
	}
	if recorder.last().Text != "The dog runs fast." {
		t.Fatalf("应使用最新文本评估，实际: %s", recorder.last().Text)
	}
}

// TestTriggerStaleTimerCallback 已被取代的计时器回调不重复评估同一文本
// 真实时钟下Stop可能在回调已开始执行后才返回，旧回调仍会进入fireDebounced
func TestTriggerStaleTimerCallback(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	// 没有挂起文本时回调直接返回
	trigger.fireDebounced()
	if recorder.count() != 0 {
		t.Fatalf("无挂起文本的回调不应评估，实际%d次", recorder.count())
	}

	trigger.OnTextChange("The dog runs fast.")
	clock.Advance(time.Second)
	if recorder.count() != 1 {
		t.Fatalf("防抖期满应调用一次，实际%d次", recorder.count())
	}

	trigger.fireDebounced()
	if recorder.count() != 1 {
		t.Fatalf("过期的计时器回调不应重复评估，实际%d次", recorder.count())
	}
}

// TestTriggerForceAssess 强制评估跳过键入节奏和防抖立即执行
func TestTriggerForceAssess(t *testing.T) {
	trigger, _, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	// 无终止符结尾也立即评估
	trigger.ForceAssess("The dog runs fast")
	if recorder.count() != 1 {
		t.Fatalf("强制评估应立即执行，实际%d次", recorder.count())
	}

	// 相同文本的强制评估仍被去重
	trigger.ForceAssess("The dog runs fast")
	if recorder.count() != 1 {
		t.Fatal("重复文本的强制评估应被忽略")
	}

	// AI模式关闭后强制评估无效
	trigger.DisableAIMode()
	trigger.ForceAssess("Another translation here.")
	if recorder.count() != 1 {
		t.Fatal("AI模式关闭后强制评估不应执行")
	}
}

// TestTriggerEnableAIModeChecksCurrentText 开启AI模式时若已有完整句立即评估一次
func TestTriggerEnableAIModeChecksCurrentText(t *testing.T) {
	trigger, _, recorder := newTestTrigger("Der Hund läuft schnell.")

	trigger.EnableAIMode("The dog runs fast.")
	if recorder.count() != 1 {
		t.Fatalf("开启AI模式时已有完整句应立即评估，实际%d次", recorder.count())
	}

	trigger2, _, recorder2 := newTestTrigger("Der Hund läuft schnell.")
	trigger2.EnableAIMode("The dog")
	if recorder2.count() != 0 {
		t.Fatal("开启AI模式时无完整句不应评估")
	}
}

// TestTriggerMarkAssessed 采纳建议后文本被视为已评估
func TestTriggerMarkAssessed(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	trigger.MarkAssessed("The dog runs quickly.")
	trigger.OnTextChange("The dog runs quickly.")
	clock.Advance(2 * time.Second)

	if recorder.count() != 0 {
		t.Fatal("已标记为评估过的文本不应再次触发")
	}
}

// TestTriggerStaleSequence 序号机制能识别过期的在途响应
func TestTriggerStaleSequence(t *testing.T) {
	trigger, _, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	trigger.ForceAssess("First translation attempt.")
	firstSeq := recorder.last().Seq

	trigger.ForceAssess("Second translation attempt.")
	secondSeq := recorder.last().Seq

	if trigger.IsCurrent(firstSeq) {
		t.Fatal("第一次请求的序号应已过期")
	}
	if !trigger.IsCurrent(secondSeq) {
		t.Fatal("最新请求的序号应仍然有效")
	}
}

// TestTriggerEndToEnd 完整场景：短文本不评估，补全句子后评估一次且无建议
func TestTriggerEndToEnd(t *testing.T) {
	trigger, clock, recorder := newTestTrigger("Der Hund läuft schnell.")
	trigger.EnableAIMode("")

	// 无终止符，不触发
	trigger.OnTextChange("The dog runs")
	clock.Advance(2 * time.Second)
	if recorder.count() != 0 {
		t.Fatal("无终止符的键入不应触发评估")
	}

	// 补全句子
	trigger.OnTextChange("The dog runs fast.")
	clock.Advance(time.Second)
	if recorder.count() != 1 {
		t.Fatalf("补全句子后应评估一次，实际%d次", recorder.count())
	}

	// 模拟评估返回：高分但无新译文建议
	result := &models.AssessmentResult{
		Score:        85,
		Feedback:     "Good",
		NewTranslate: false,
		Translation:  "",
	}
	view := NewReconciler(config.DefaultAssistConfig()).Reconcile(result, "The dog runs fast.")

	if view.Score != 85 || view.Feedback != "Good" {
		t.Fatalf("分数和反馈应原样透出: %+v", view)
	}
	if view.HasImprovedTranslation {
		t.Fatal("new_translate为false时不应提供建议")
	}
}
