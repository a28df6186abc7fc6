// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorForbidden     = "FORBIDDEN"
	ErrorUnauthorized  = "UNAUTHORIZED"

	// 故事相关错误
	ErrorStoryNotFound     = "STORY_NOT_FOUND"
	ErrorStoryCreateFailed = "STORY_CREATE_FAILED"
	ErrorStoryInvalid      = "STORY_INVALID"

	// 译文相关错误
	ErrorTranslationNotFound = "TRANSLATION_NOT_FOUND"
	ErrorTranslationInvalid  = "TRANSLATION_INVALID"

	// 草稿相关错误
	ErrorDraftNotFound     = "DRAFT_NOT_FOUND"
	ErrorDraftCreateFailed = "DRAFT_CREATE_FAILED"

	// 内容管理相关错误
	ErrorBannerNotFound = "BANNER_NOT_FOUND"
	ErrorQuoteNotFound  = "QUOTE_NOT_FOUND"

	// AI辅助相关错误
	ErrorAssessFailed          = "ASSESS_FAILED"
	ErrorTranslateFailed       = "TRANSLATE_FAILED"
	ErrorIncompleteSentence    = "INCOMPLETE_SENTENCE"
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
	ErrorAPIKeyMissing         = "API_KEY_MISSING"
)
