// internal/models/assessment.go
package models

// AssessmentResult AI评估服务返回的原始结果
// Translation 仅在 NewTranslate 为 true 时有意义
type AssessmentResult struct {
	Score        int    `json:"score"` // 0-100
	Feedback     string `json:"feedback"`
	NewTranslate bool   `json:"new_translate"`
	Translation  string `json:"translation,omitempty"`
}

// AlternativesResult 备选译文列表，调用方截断至最多2条
type AlternativesResult struct {
	Alternatives []string `json:"alternatives"`
}

// TranslateResult 单词/短语机器翻译结果
type TranslateResult struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
}
