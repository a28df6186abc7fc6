// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/talhaerkul/MutualStory-public/internal/assist"
	"github.com/talhaerkul/MutualStory-public/internal/config"
	"github.com/talhaerkul/MutualStory-public/internal/services"
	"github.com/talhaerkul/MutualStory-public/internal/utils"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// WorkbenchMessage 翻译工作台的客户端消息
type WorkbenchMessage struct {
	Type           string `json:"type"`
	Text           string `json:"text,omitempty"`
	Original       string `json:"original,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	Enabled        bool   `json:"enabled,omitempty"`
}

// WorkbenchSession 一条翻译工作台连接
// 每个会话持有独立的评估触发器，键入事件经过全部判定门后
// 由防抖定时器驱动评估，结果按请求序号丢弃过期响应
type WorkbenchSession struct {
	conn       *websocket.Conn
	storyID    string
	userID     string
	trigger    *assist.Trigger
	reconciler *assist.Reconciler
	assess     *services.AssessService
	logger     *utils.Logger

	writeMu sync.Mutex
	closed  bool
}

// WorkbenchHandler 管理翻译工作台的WebSocket会话
type WorkbenchHandler struct {
	assessService *services.AssessService
	assistCfg     config.AssistConfig
	clock         assist.Clock
	logger        *utils.Logger
}

// NewWorkbenchHandler 创建工作台处理器
func NewWorkbenchHandler(assessService *services.AssessService, assistCfg config.AssistConfig) *WorkbenchHandler {
	return &WorkbenchHandler{
		assessService: assessService,
		assistCfg:     assistCfg,
		clock:         assist.NewRealClock(),
		logger:        utils.GetLogger(),
	}
}

// WorkbenchWebSocket 处理 GET /ws/workbench/:id 连接
func (wh *WorkbenchHandler) WorkbenchWebSocket(c *gin.Context) {
	storyID := c.Param("id")
	if storyID == "" {
		NewResponseHelper().BadRequest(c, "缺少故事ID")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wh.logger.Errorf("WebSocket升级失败: %v", err)
		return
	}

	session := &WorkbenchSession{
		conn:       conn,
		storyID:    storyID,
		userID:     draftUserID(c),
		reconciler: assist.NewReconciler(wh.assistCfg),
		assess:     wh.assessService,
		logger:     wh.logger,
	}
	session.trigger = assist.NewTrigger(wh.assistCfg, wh.clock, session.runAssessment)

	wh.logger.Infof("工作台会话已建立 (故事: %s, 用户: %s)", storyID, session.userID)
	session.readLoop()
}

// readLoop 读取并分发客户端消息，连接断开后清理会话
func (s *WorkbenchSession) readLoop() {
	defer func() {
		s.writeMu.Lock()
		s.closed = true
		s.writeMu.Unlock()
		s.trigger.DisableAIMode()
		s.conn.Close()
		s.logger.Infof("工作台会话已断开 (故事: %s, 用户: %s)", s.storyID, s.userID)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg WorkbenchMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError("消息格式错误")
			continue
		}

		s.handleMessage(msg)
	}
}

// handleMessage 分发一条工作台消息
func (s *WorkbenchSession) handleMessage(msg WorkbenchMessage) {
	switch msg.Type {
	case "set_original":
		s.trigger.SetOriginal(msg.Original, msg.SourceLanguage, msg.TargetLanguage)

	case "set_ai_mode":
		if msg.Enabled {
			s.trigger.EnableAIMode(msg.Text)
		} else {
			s.trigger.DisableAIMode()
		}

	case "text_change":
		s.trigger.OnTextChange(msg.Text)

	case "force_assess":
		s.trigger.ForceAssess(msg.Text)

	case "apply_suggestion":
		// 用户采纳了建议或备选译法，标记为已评估避免立即重评
		s.trigger.MarkAssessed(msg.Text)

	case "request_alternatives":
		s.requestAlternatives(msg.Text)

	default:
		s.sendError("未知的消息类型: " + msg.Type)
	}
}

// runAssessment 触发器判定通过后执行实际评估并下发结果
func (s *WorkbenchSession) runAssessment(originalText, userText, sourceLanguage, targetLanguage string, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := s.assess.AssessTranslation(ctx, services.AssessRequest{
		OriginalText:    originalText,
		UserTranslation: userText,
		SourceLanguage:  sourceLanguage,
		TargetLanguage:  targetLanguage,
	})

	// 已有更新的评估请求在途时丢弃本次结果
	if !s.trigger.IsCurrent(seq) {
		s.logger.Debugf("丢弃过期的评估结果 (seq=%d)", seq)
		return
	}

	view := s.reconciler.Reconcile(result, userText)
	s.send(map[string]interface{}{
		"type": "assessment",
		"seq":  seq,
		"data": view,
	})
}

// requestAlternatives 获取备选译法并下发
func (s *WorkbenchSession) requestAlternatives(text string) {
	if !assist.HasCompleteSentence(text) {
		s.send(map[string]interface{}{
			"type":    "alternatives",
			"data":    []string{},
			"message": "请先完成一个完整的句子再获取备选译法",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 工作台协议约定 set_original 先于 request_alternatives 到达
	original, source, target := s.trigger.Context()
	alternatives := s.assess.GetAlternativeTranslations(ctx, services.AssessRequest{
		OriginalText:    original,
		UserTranslation: text,
		SourceLanguage:  source,
		TargetLanguage:  target,
	})

	if len(alternatives) == 0 {
		s.send(map[string]interface{}{
			"type":    "alternatives",
			"data":    []string{},
			"message": "暂时没有可用的备选译法",
		})
		return
	}

	s.send(map[string]interface{}{
		"type": "alternatives",
		"data": alternatives,
	})
}

// send 线程安全地下发一条JSON消息
func (s *WorkbenchSession) send(message map[string]interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return
	}

	if err := s.conn.WriteJSON(message); err != nil {
		s.logger.Warnf("下发工作台消息失败: %v", err)
	}
}

// sendError 下发错误提示
func (s *WorkbenchSession) sendError(errorMsg string) {
	s.send(map[string]interface{}{
		"type":      "error",
		"error":     errorMsg,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
