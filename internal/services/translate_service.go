// internal/services/translate_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/talhaerkul/MutualStory-public/internal/errors"
	"github.com/talhaerkul/MutualStory-public/internal/models"
)

const defaultTranslateEndpoint = "https://translation.googleapis.com/language/translate/v2"

// TranslateService 调用机器翻译服务（Google Translate v2 REST）
// 与评估服务不同，这里的失败会作为错误返回并由UI内联展示
type TranslateService struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewTranslateService 创建翻译服务
func NewTranslateService(apiKey string) *TranslateService {
	return &TranslateService{
		apiKey:   apiKey,
		endpoint: defaultTranslateEndpoint,
		client:   &http.Client{},
	}
}

// SetEndpoint 覆盖默认端点（测试用）
func (s *TranslateService) SetEndpoint(endpoint string) {
	s.endpoint = endpoint
}

// TranslateWords 翻译选中的单词或短语
func (s *TranslateService) TranslateWords(ctx context.Context, text, sourceLanguage, targetLanguage string) (*models.TranslateResult, error) {
	if text == "" || sourceLanguage == "" || targetLanguage == "" {
		return nil, apperrors.NewValidationError("缺少必填字段", nil)
	}

	requestBody := map[string]string{
		"q":      text,
		"source": sourceLanguage,
		"target": targetLanguage,
		"format": "text",
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, apperrors.NewProcessingError("序列化翻译请求失败", err)
	}

	url := fmt.Sprintf("%s?key=%s", s.endpoint, s.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperrors.NewProcessingError("创建翻译请求失败", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewExternalError("翻译服务请求失败", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		json.NewDecoder(httpResp.Body).Decode(&errResp)
		message := errResp.Error.Message
		if message == "" {
			message = fmt.Sprintf("翻译服务返回状态码 %d", httpResp.StatusCode)
		}
		return nil, apperrors.NewExternalError(message, nil)
	}

	var response struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}

	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return nil, apperrors.NewExternalError("解析翻译响应失败", err)
	}

	if len(response.Data.Translations) == 0 {
		return nil, apperrors.NewExternalError("翻译服务未返回结果", nil)
	}

	return &models.TranslateResult{
		Original:   text,
		Translated: response.Data.Translations[0].TranslatedText,
	}, nil
}
