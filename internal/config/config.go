// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AssistConfig 翻译助手的启发式阈值
// 这些阈值来自线上观察到的行为，保持原样
type AssistConfig struct {
	MinAssessLength    int           `json:"min_assess_length"`    // 低于此长度不评估
	MinOriginalRatio   float64       `json:"min_original_ratio"`   // 相对原文首句的最小长度比
	SuggestionMaxRatio float64       `json:"suggestion_max_ratio"` // 建议译文相对用户译文的最大长度比
	SignificantGrowth  int           `json:"significant_growth"`   // 视为显著变化的最小增量
	DebounceInterval   time.Duration `json:"debounce_interval"`    // 评估去抖间隔
	MaxAlternatives    int           `json:"max_alternatives"`     // 备选译文上限
}

// DefaultAssistConfig 返回默认阈值
func DefaultAssistConfig() AssistConfig {
	return AssistConfig{
		MinAssessLength:    10,
		MinOriginalRatio:   0.4,
		SuggestionMaxRatio: 1.5,
		SignificantGrowth:  15,
		DebounceInterval:   1000 * time.Millisecond,
		MaxAlternatives:    2,
	}
}

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port             string `json:"port"`
	OpenAIAPIKey     string `json:"openai_api_key,omitempty"`
	TranslateAPIKey  string `json:"translate_api_key,omitempty"` // Google Translate v2 密钥
	AdminTokenSecret string `json:"admin_token_secret,omitempty"`
	AdminPassword    string `json:"admin_password,omitempty"`
	DataDir          string `json:"data_dir"`
	LogDir           string `json:"log_dir"`
	DebugMode        bool   `json:"debug_mode"`

	// LLM相关配置
	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`

	// 翻译助手阈值
	Assist AssistConfig `json:"assist"`
}

// Config 存储从环境变量加载的基础配置
type Config struct {
	Port             string
	OpenAIAPIKey     string
	TranslateAPIKey  string
	AdminTokenSecret string
	AdminPassword    string
	DataDir          string
	LogDir           string
	DebugMode        bool
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:             getEnv("PORT", "8080"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		TranslateAPIKey:  getEnv("GOOGLE_TRANSLATE_API_KEY", ""),
		AdminTokenSecret: getEnv("ADMIN_TOKEN_SECRET", ""),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		DataDir:          getEnvPath("DATA_DIR", "data"),
		LogDir:           getEnvPath("LOG_DIR", "logs"),
		DebugMode:        getEnvBool("DEBUG_MODE", true),
	}

	if config.OpenAIAPIKey == "" {
		// 只记录警告，不返回错误
		log.Println("警告: 未设置OpenAI API密钥，AI评估功能将不可用")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:             baseConfig.Port,
		OpenAIAPIKey:     baseConfig.OpenAIAPIKey,
		TranslateAPIKey:  baseConfig.TranslateAPIKey,
		AdminTokenSecret: baseConfig.AdminTokenSecret,
		AdminPassword:    baseConfig.AdminPassword,
		DataDir:          baseConfig.DataDir,
		LogDir:           baseConfig.LogDir,
		DebugMode:        baseConfig.DebugMode,
		LLMProvider:      "openai",
		LLMConfig: map[string]string{
			"api_key":       baseConfig.OpenAIAPIKey,
			"default_model": "gpt-4o-mini",
		},
		Assist: DefaultAssistConfig(),
	}

	// 尝试从文件加载已保存的配置
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// 合并配置，保留文件中的LLM和阈值设置，但使用最新的基础配置
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				if savedConfig.LLMConfig != nil && savedConfig.LLMConfig["api_key"] == "" {
					savedConfig.LLMConfig["api_key"] = baseConfig.OpenAIAPIKey
				}
				if savedConfig.TranslateAPIKey == "" {
					savedConfig.TranslateAPIKey = baseConfig.TranslateAPIKey
				}
				if savedConfig.AdminTokenSecret == "" {
					savedConfig.AdminTokenSecret = baseConfig.AdminTokenSecret
				}
				if savedConfig.AdminPassword == "" {
					savedConfig.AdminPassword = baseConfig.AdminPassword
				}
				if savedConfig.Assist.DebounceInterval == 0 {
					savedConfig.Assist = DefaultAssistConfig()
				}

				currentConfig = &savedConfig
			}
		}
	}

	return saveConfigLocked()
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 紧急情况，返回一个基本配置
		baseConfig, _ := Load()
		return &AppConfig{
			Port:             baseConfig.Port,
			OpenAIAPIKey:     baseConfig.OpenAIAPIKey,
			TranslateAPIKey:  baseConfig.TranslateAPIKey,
			AdminTokenSecret: baseConfig.AdminTokenSecret,
			AdminPassword:    baseConfig.AdminPassword,
			DataDir:          baseConfig.DataDir,
			LogDir:           baseConfig.LogDir,
			DebugMode:        baseConfig.DebugMode,
			LLMProvider:      "openai",
			LLMConfig: map[string]string{
				"api_key": baseConfig.OpenAIAPIKey,
			},
			Assist: DefaultAssistConfig(),
		}
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateLLMConfig 更新LLM配置
func UpdateLLMConfig(provider string, config map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = config

	return saveConfigLocked()
}

// SaveConfig 保存当前配置到文件
func SaveConfig() error {
	configMutex.Lock()
	defer configMutex.Unlock()

	return saveConfigLocked()
}

func saveConfigLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
