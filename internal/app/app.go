// internal/app/app.go
package app

import (
	"fmt"
	"path/filepath"

	"github.com/talhaerkul/MutualStory-public/internal/config"
	"github.com/talhaerkul/MutualStory-public/internal/di"
	"github.com/talhaerkul/MutualStory-public/internal/llm"
	"github.com/talhaerkul/MutualStory-public/internal/services"
	"github.com/talhaerkul/MutualStory-public/internal/storage"
	"github.com/talhaerkul/MutualStory-public/internal/utils"

	// 注册LLM提供者
	_ "github.com/talhaerkul/MutualStory-public/internal/llm/providers/openai"
	_ "github.com/talhaerkul/MutualStory-public/internal/llm/providers/openrouter"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()
	logger := utils.GetLogger()

	// 1. 文件存储
	store, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}
	container.Register("storage", store)

	// 2. LLM提供者（可选，未配置密钥时评估功能降级）
	var provider llm.Provider
	if cfg.LLMConfig["api_key"] != "" {
		provider, err = llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
		if err != nil {
			return fmt.Errorf("初始化LLM提供者失败: %w", err)
		}
		container.Register("llm", provider)
		logger.Infof("LLM提供者已就绪: %s", provider.GetName())
	} else {
		logger.Warnf("未配置LLM API密钥，AI评估功能不可用")
	}

	// 3. 业务服务
	container.Register("story", services.NewStoryService(store))
	container.Register("content", services.NewContentService(store))
	container.Register("draft", services.NewDraftService(store))
	container.Register("assess", services.NewAssessService(provider, cfg.Assist.MaxAlternatives))
	container.Register("translate", services.NewTranslateService(cfg.TranslateAPIKey))

	return nil
}

// InitLogger 初始化日志系统
func InitLogger(logDir string) error {
	return utils.InitLogger(filepath.Join(logDir, "server.log"))
}
