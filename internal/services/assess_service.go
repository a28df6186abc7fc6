// internal/services/assess_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talhaerkul/MutualStory-public/internal/llm"
	"github.com/talhaerkul/MutualStory-public/internal/models"
	"github.com/talhaerkul/MutualStory-public/internal/utils"
)

// 评估提示词
const translationAssessmentPrompt = `
You are an expert language translator. Your task is to evaluate the quality of a translation.
Compare the original text with the user's translation and provide a JSON response with the following format:
{
  "score": <number between 0-100>,
  "feedback": "<brief feedback on what could be improved>",
  "new_translate": <boolean - true if translation needs significant improvement>,
  "translation": "<improved translation if new_translate is true, otherwise null>"
}

Important Guidelines:
1. If the user's translation is incomplete (only a portion of the original text), only evaluate the portion they've attempted to translate.
2. Only set new_translate to true when there are significant issues with accuracy, fluency, or meaning preservation.
3. When providing an improved translation (translation field), only translate up to the point the user has translated, not the entire original text.
4. Consider the context and language-specific nuances when evaluating.
5. Be more lenient with partial translations that end with punctuation (., ,) as they likely represent work in progress.
6. IMPORTANT: If the user's translation appears to be incomplete (like cutting off mid-sentence or containing substantially less content than the corresponding part of the original text), set new_translate to false and DO NOT provide any alternative translation.
7. Only suggest a complete alternative when the user has provided a complete sentence or logical segment that can be properly evaluated.
8. When in doubt about completeness, err on the side of not providing an alternative translation.

Example: If the original text has 3 sentences but the user has only translated 1 sentence and it ends with a period, only assess that 1 completed sentence.
`

// 备选译文提示词
const alternativeTranslationsPrompt = `
You are an expert language translator. Your task is to provide alternative translations for the given text.
The user has provided their own translation, but is looking for alternatives that:
1. Preserve the original meaning
2. May use different vocabulary or sentence structure
3. Sound natural in the target language

Provide a JSON response with the following format:
{
  "alternatives": [<alternative1>, <alternative2>]
}

Important Guidelines:
1. Only generate alternatives for the specific portion of the original text that the user has attempted to translate.
2. If the user's translation ends with a period, assume it's a complete sentence and provide alternatives for that sentence.
3. If the user's translation ends with a comma, only provide alternatives up to that natural break.
4. Provide exactly 2 alternatives that are meaningfully different from each other and from the user's translation.
5. If a high-quality alternative isn't possible, provide fewer.
6. Maintain the same level of formality and style as the user's translation.

Example: If the original is a paragraph but the user has only translated the first sentence, only provide alternatives for that first sentence.
`

// AssessService 封装对AI评估/备选译文服务的调用
// Provider 在启动时构造并注入，不使用全局单例
type AssessService struct {
	provider        llm.Provider
	maxAlternatives int
	logger          *utils.Logger
}

// AssessRequest 评估/备选译文的统一入参
type AssessRequest struct {
	OriginalText    string `json:"originalText"`
	UserTranslation string `json:"userTranslation"`
	SourceLanguage  string `json:"sourceLanguage"`
	TargetLanguage  string `json:"targetLanguage"`
}

// NewAssessService 创建评估服务
func NewAssessService(provider llm.Provider, maxAlternatives int) *AssessService {
	if maxAlternatives <= 0 {
		maxAlternatives = 2
	}

	return &AssessService{
		provider:        provider,
		maxAlternatives: maxAlternatives,
		logger:          utils.GetLogger(),
	}
}

// neutralAssessment 外部调用失败时的中性结果
func neutralAssessment(feedback string) *models.AssessmentResult {
	return &models.AssessmentResult{
		Score:        0,
		Feedback:     feedback,
		NewTranslate: false,
		Translation:  "",
	}
}

// AssessTranslation 评估用户译文质量
// 任何传输或解析失败都会被捕获并转换为中性结果，不向调用方抛错
func (s *AssessService) AssessTranslation(ctx context.Context, req AssessRequest) *models.AssessmentResult {
	if s.provider == nil {
		return neutralAssessment("AI service is not configured")
	}

	prompt := fmt.Sprintf(`
Original text (%s): %s
User translation (%s): %s

Evaluate this translation and provide the JSON response as specified.
`, req.SourceLanguage, req.OriginalText, req.TargetLanguage, req.UserTranslation)

	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		SystemPrompt: translationAssessmentPrompt,
		Prompt:       prompt,
		Temperature:  0.3,
		MaxTokens:    500,
		JSONMode:     true,
	})
	if err != nil {
		s.logger.Errorf("评估译文失败: %v", err)
		return neutralAssessment("Error assessing translation")
	}

	var result struct {
		Score        int     `json:"score"`
		Feedback     string  `json:"feedback"`
		NewTranslate bool    `json:"new_translate"`
		Translation  *string `json:"translation"`
	}

	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &result); err != nil {
		s.logger.Errorf("解析评估响应失败: %v", err)
		return neutralAssessment("Error processing assessment")
	}

	assessment := &models.AssessmentResult{
		Score:        result.Score,
		Feedback:     result.Feedback,
		NewTranslate: result.NewTranslate,
	}
	if assessment.Feedback == "" {
		assessment.Feedback = "No feedback available"
	}
	if result.Translation != nil {
		assessment.Translation = *result.Translation
	}

	return assessment
}

// GetAlternativeTranslations 获取备选译文，最多返回 maxAlternatives 条
// 失败时返回空列表而不是错误
func (s *AssessService) GetAlternativeTranslations(ctx context.Context, req AssessRequest) []string {
	if s.provider == nil {
		return nil
	}

	prompt := fmt.Sprintf(`
Original text (%s): %s
User translation (%s): %s

Please provide exactly 2 alternative translations only for the part that the user has translated.
`, req.SourceLanguage, req.OriginalText, req.TargetLanguage, req.UserTranslation)

	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		SystemPrompt: alternativeTranslationsPrompt,
		Prompt:       prompt,
		Temperature:  0.7,
		MaxTokens:    500,
		JSONMode:     true,
	})
	if err != nil {
		s.logger.Errorf("获取备选译文失败: %v", err)
		return nil
	}

	var result models.AlternativesResult
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &result); err != nil {
		s.logger.Errorf("解析备选译文响应失败: %v", err)
		return nil
	}

	// 无论服务返回多少条，调用方截断至上限
	if len(result.Alternatives) > s.maxAlternatives {
		return result.Alternatives[:s.maxAlternatives]
	}

	return result.Alternatives
}

// AutoCompleteTranslation 补全用户的部分译文
// 失败时原样返回用户输入
func (s *AssessService) AutoCompleteTranslation(ctx context.Context, req AssessRequest) string {
	if s.provider == nil {
		return req.UserTranslation
	}

	systemPrompt := fmt.Sprintf(`You are an expert language translator from %s to %s.
Complete the partial translation provided by the user in a natural way,
preserving the meaning from the original text. Only provide the completed translation.`,
		req.SourceLanguage, req.TargetLanguage)

	prompt := fmt.Sprintf(`
Original text (%s): %s
Partial translation (%s): %s

Please complete the translation in a natural way.
`, req.SourceLanguage, req.OriginalText, req.TargetLanguage, req.UserTranslation)

	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		Temperature:  0.3,
		MaxTokens:    500,
	})
	if err != nil {
		s.logger.Errorf("补全译文失败: %v", err)
		return req.UserTranslation
	}

	completed := strings.TrimSpace(resp.Text)
	if completed == "" {
		return req.UserTranslation
	}

	return completed
}

// extractJSON 容错提取响应中的JSON对象
// 有些模型会在JSON前后附加说明文字或代码块标记
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}

	return text
}
