// internal/api/handlers.go
package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talhaerkul/MutualStory-public/internal/assist"
	"github.com/talhaerkul/MutualStory-public/internal/auth"
	"github.com/talhaerkul/MutualStory-public/internal/config"
	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
	"github.com/talhaerkul/MutualStory-public/internal/models"
	"github.com/talhaerkul/MutualStory-public/internal/services"
)

// Handler 处理API请求
type Handler struct {
	StoryService     *services.StoryService     // 故事服务
	ContentService   *services.ContentService   // 横幅/名言服务
	DraftService     *services.DraftService     // 翻译草稿服务
	AssessService    *services.AssessService    // AI评估服务
	TranslateService *services.TranslateService // 单词翻译服务
	AssistConfig     config.AssistConfig        // 翻译助手阈值
	Response         *ResponseHelper            // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(
	storyService *services.StoryService,
	contentService *services.ContentService,
	draftService *services.DraftService,
	assessService *services.AssessService,
	translateService *services.TranslateService,
	assistCfg config.AssistConfig,
) *Handler {
	return &Handler{
		StoryService:     storyService,
		ContentService:   contentService,
		DraftService:     draftService,
		AssessService:    assessService,
		TranslateService: translateService,
		AssistConfig:     assistCfg,
		Response:         NewResponseHelper(),
	}
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// StoryRequest 创建/更新故事的请求结构
type StoryRequest struct {
	Title            string                     `json:"title"`
	OriginalStory    string                     `json:"original_story"`
	OriginalLanguage string                     `json:"original_language"`
	Level            models.StoryLevel          `json:"level"`
	Translations     []models.TranslationUpdate `json:"translations"`
}

// DraftRequest 保存草稿的请求结构
type DraftRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}

// AssessTranslationRequest AI评估的请求结构
type AssessTranslationRequest struct {
	OriginalText    string `json:"original_text"`
	UserTranslation string `json:"user_translation"`
	SourceLanguage  string `json:"source_language"`
	TargetLanguage  string `json:"target_language"`
}

// TranslateRequest 单词/短语翻译的请求结构
type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Password string `json:"password"`
}

// respondServiceError 将服务层错误映射到HTTP响应
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFoundError(err):
		h.Response.Error(c, 404, ErrorNotFound, err.Error())
	case apperrors.IsValidationError(err):
		h.Response.BadRequest(c, err.Error())
	case apperrors.IsUnauthorizedError(err):
		h.Response.Unauthorized(c, err.Error())
	default:
		h.Response.InternalError(c, err.Error())
	}
}

// ========================================
// 认证
// ========================================

// AdminLogin 管理员登录，校验口令后签发令牌
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	cfg := config.GetCurrentConfig()
	if cfg.AdminPassword == "" {
		h.Response.Forbidden(c, "管理员登录未启用")
		return
	}

	if req.Password != cfg.AdminPassword {
		h.Response.Unauthorized(c, "口令错误")
		return
	}

	token, err := GenerateUserToken("admin", auth.RoleAdmin)
	if err != nil {
		h.Response.InternalError(c, "令牌签发失败", err.Error())
		return
	}

	h.Response.Success(c, gin.H{"token": token}, "登录成功")
}

// ========================================
// 故事
// ========================================

// GetStories 分页获取故事列表
func (h *Handler) GetStories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))

	result, err := h.StoryService.GetStoriesPaginated(page, limit)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, result)
}

// SearchStories 搜索故事
func (h *Handler) SearchStories(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		h.Response.BadRequest(c, "缺少搜索关键词")
		return
	}

	stories, err := h.StoryService.SearchStories(term)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, stories)
}

// GetStory 获取故事及其全部译文
func (h *Handler) GetStory(c *gin.Context) {
	result, err := h.StoryService.GetStoryWithTranslations(c.Param("id"))
	if err != nil {
		h.Response.NotFound(c, "故事", err.Error())
		return
	}

	h.Response.Success(c, result)
}

// GetTranslation 获取故事在指定语言下的译文
func (h *Handler) GetTranslation(c *gin.Context) {
	translation, err := h.StoryService.GetTranslation(c.Param("id"), c.Param("language"))
	if err != nil {
		h.Response.NotFound(c, "译文", err.Error())
		return
	}

	h.Response.Success(c, translation)
}

// CreateStory 创建故事（管理员）
func (h *Handler) CreateStory(c *gin.Context) {
	var req StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	story, err := h.StoryService.CreateStoryWithTranslations(
		req.Title, req.OriginalStory, req.OriginalLanguage, req.Level, req.Translations)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Created(c, story, "故事创建成功")
}

// UpdateStory 更新故事（管理员）
func (h *Handler) UpdateStory(c *gin.Context) {
	var req StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if err := h.StoryService.UpdateStory(c.Param("id"),
		req.Title, req.OriginalStory, req.OriginalLanguage, req.Level, req.Translations); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "故事更新成功")
}

// DeleteStory 删除故事（管理员）
func (h *Handler) DeleteStory(c *gin.Context) {
	if err := h.StoryService.DeleteStory(c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "故事删除成功")
}

// ========================================
// 收藏
// ========================================

// ToggleFavorite 切换故事收藏状态
func (h *Handler) ToggleFavorite(c *gin.Context) {
	userID, authenticated := GetUserFromContext(c)
	if !authenticated {
		h.Response.Unauthorized(c, "需要登录才能收藏")
		return
	}

	favorited, err := h.StoryService.ToggleFavorite(userID, c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"favorited": favorited})
}

// GetFavoriteStories 获取当前用户收藏的故事
func (h *Handler) GetFavoriteStories(c *gin.Context) {
	userID, authenticated := GetUserFromContext(c)
	if !authenticated {
		h.Response.Unauthorized(c, "需要登录才能查看收藏")
		return
	}

	stories, err := h.StoryService.GetFavoriteStories(userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, stories)
}

// ========================================
// 横幅与名言
// ========================================

// GetActiveBanner 获取当前启用的横幅
func (h *Handler) GetActiveBanner(c *gin.Context) {
	banner, err := h.ContentService.GetActiveBanner()
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, banner)
}

// GetBanners 获取全部横幅（管理员）
func (h *Handler) GetBanners(c *gin.Context) {
	banners, err := h.ContentService.GetAllBanners()
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, banners)
}

// CreateBanner 创建横幅（管理员）
func (h *Handler) CreateBanner(c *gin.Context) {
	var req models.Banner
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	banner, err := h.ContentService.CreateBanner(
		req.Title, req.Description, req.ImageURL, req.ButtonText, req.ButtonLink)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Created(c, banner, "横幅创建成功")
}

// UpdateBanner 更新横幅（管理员）
func (h *Handler) UpdateBanner(c *gin.Context) {
	var req models.Banner
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if err := h.ContentService.UpdateBanner(c.Param("id"),
		req.Title, req.Description, req.ImageURL, req.ButtonText, req.ButtonLink); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "横幅更新成功")
}

// ActivateBanner 启用横幅（管理员）
func (h *Handler) ActivateBanner(c *gin.Context) {
	if err := h.ContentService.ActivateBanner(c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "横幅已启用")
}

// DeleteBanner 删除横幅（管理员）
func (h *Handler) DeleteBanner(c *gin.Context) {
	if err := h.ContentService.DeleteBanner(c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "横幅删除成功")
}

// GetActiveQuote 获取当前启用的名言
func (h *Handler) GetActiveQuote(c *gin.Context) {
	quote, err := h.ContentService.GetActiveQuote()
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, quote)
}

// GetQuotes 获取全部名言（管理员）
func (h *Handler) GetQuotes(c *gin.Context) {
	quotes, err := h.ContentService.GetAllQuotes()
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, quotes)
}

// CreateQuote 创建名言（管理员）
func (h *Handler) CreateQuote(c *gin.Context) {
	var req models.Quote
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	quote, err := h.ContentService.CreateQuote(req.Text, req.Author)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Created(c, quote, "名言创建成功")
}

// ActivateQuote 启用名言（管理员）
func (h *Handler) ActivateQuote(c *gin.Context) {
	if err := h.ContentService.ActivateQuote(c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "名言已启用")
}

// DeleteQuote 删除名言（管理员）
func (h *Handler) DeleteQuote(c *gin.Context) {
	if err := h.ContentService.DeleteQuote(c.Param("id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "名言删除成功")
}

// ========================================
// 翻译草稿
// ========================================

// draftUserID 草稿归属的用户ID，未登录用户按IP派生匿名ID
func draftUserID(c *gin.Context) string {
	if userID, authenticated := GetUserFromContext(c); authenticated {
		return userID
	}
	return services.AnonymousUserID(c.ClientIP())
}

// CreateDraft 保存翻译草稿
func (h *Handler) CreateDraft(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	draft, err := h.DraftService.CreateDraft(draftUserID(c), c.Param("id"), req.Content, req.Language)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Created(c, draft, "草稿保存成功")
}

// GetDrafts 获取当前用户在该故事下的全部草稿
func (h *Handler) GetDrafts(c *gin.Context) {
	drafts, err := h.DraftService.GetDrafts(draftUserID(c), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, drafts)
}

// GetDraft 获取单份草稿
func (h *Handler) GetDraft(c *gin.Context) {
	draft, err := h.DraftService.GetDraft(draftUserID(c), c.Param("id"), c.Param("draft_id"))
	if err != nil {
		h.Response.NotFound(c, "草稿", err.Error())
		return
	}

	h.Response.Success(c, draft)
}

// DeleteDraft 删除草稿
func (h *Handler) DeleteDraft(c *gin.Context) {
	if err := h.DraftService.DeleteDraft(draftUserID(c), c.Param("id"), c.Param("draft_id")); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Response.Success(c, nil, "草稿删除成功")
}

// ========================================
// AI辅助
// ========================================

// AssessTranslation 评估用户译文并返回校验后的展示状态
func (h *Handler) AssessTranslation(c *gin.Context) {
	var req AssessTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if req.UserTranslation == "" {
		h.Response.BadRequest(c, "译文不能为空")
		return
	}

	result := h.AssessService.AssessTranslation(c.Request.Context(), services.AssessRequest{
		OriginalText:    req.OriginalText,
		UserTranslation: req.UserTranslation,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
	})

	view := assist.NewReconciler(h.AssistConfig).Reconcile(result, req.UserTranslation)
	h.Response.Success(c, view)
}

// GetAlternatives 获取备选译法
// 译文需包含完整句，否则返回提示信息而不调用外部服务
func (h *Handler) GetAlternatives(c *gin.Context) {
	var req AssessTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if !assist.HasCompleteSentence(req.UserTranslation) {
		h.Response.Success(c, gin.H{
			"alternatives": []string{},
			"message":      "请先完成一个完整的句子再获取备选译法",
		})
		return
	}

	alternatives := h.AssessService.GetAlternativeTranslations(c.Request.Context(), services.AssessRequest{
		OriginalText:    req.OriginalText,
		UserTranslation: req.UserTranslation,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
	})

	if len(alternatives) == 0 {
		h.Response.Success(c, gin.H{
			"alternatives": []string{},
			"message":      "暂时没有可用的备选译法",
		})
		return
	}

	h.Response.Success(c, gin.H{"alternatives": alternatives})
}

// AutoCompleteTranslation 续写用户译文
func (h *Handler) AutoCompleteTranslation(c *gin.Context) {
	var req AssessTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	completed := h.AssessService.AutoCompleteTranslation(c.Request.Context(), services.AssessRequest{
		OriginalText:    req.OriginalText,
		UserTranslation: req.UserTranslation,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
	})

	h.Response.Success(c, gin.H{"completed": completed})
}

// TranslateText 单词/短语即时翻译
func (h *Handler) TranslateText(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	result, err := h.TranslateService.TranslateWords(
		c.Request.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		h.Response.Error(c, 502, ErrorTranslateFailed, "Error translating text", err.Error())
		return
	}

	h.Response.Success(c, result)
}
