package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/codelens/core/internal/config"
	"github.com/codelens/core/internal/models"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
	"go.uber.org/zap"
)

const (
	defaultAnalysisTimeout  = 60 * time.Second
	analysisMaxOutputTokens = 2048
	analysisTemperature     = 0.4
)

var (
	errNoProvider         = errors.New("no enabled analysis provider")
	errEmptyResponse      = errors.New("empty response from analysis provider")
	errUnparsableAnalysis = errors.New("invalid JSON in analysis response")
)

// Analyzer invokes the external analysis provider. It is safe for concurrent
// use; each request gets exactly one attempt and no retries.
type Analyzer struct {
	cfg    appcfg.AIConfig
	logger *zap.Logger
	client *http.Client
}

func NewAnalyzer(cfg appcfg.AIConfig, logger *zap.Logger) *Analyzer {
	timeout := defaultAnalysisTimeout
	if cfg.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	return &Analyzer{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Analyze submits the review prompt to the configured provider and decodes
// the response into an AnalysisResult. Any provider failure (network, auth,
// non-2xx, empty candidates, unparsable text) is returned as an error for
// the caller to absorb.
func (a *Analyzer) Analyze(ctx context.Context, code, filename, language string) (*models.AnalysisResult, error) {
	provider := a.selectProvider()
	if provider == nil {
		return nil, errNoProvider
	}

	systemPrompt, prompt := buildReviewPrompt(code, filename, language)
	a.logger.Debug("analysis request",
		zap.String("provider", provider.ID),
		zap.String("model", provider.DefaultModel),
		zap.String("filename", filename),
		zap.String("language", language),
	)

	var raw string
	var err error
	switch {
	case isGeminiProviderType(provider.Type):
		raw, err = a.callGemini(ctx, provider, systemPrompt, prompt)
	case isOpenAICompatibleProviderType(provider.Type):
		raw, err = a.callOpenAICompatible(ctx, provider, systemPrompt, prompt)
	default:
		raw, err = a.callLanguageModel(ctx, provider, systemPrompt, prompt)
	}
	if err != nil {
		return nil, err
	}

	result, err := decodeAnalysisResult(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (raw: %s)", err, truncateText(raw, 200))
	}
	return result, nil
}

// selectProvider picks the assigned provider, or the first enabled one.
func (a *Analyzer) selectProvider() *appcfg.AIProvider {
	var providerID, overrideModel string
	if assignment := a.cfg.ReviewModel; assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range a.cfg.Providers {
			if provider.Enabled && strings.TrimSpace(provider.ID) == providerID {
				return pick(provider)
			}
		}
	}
	for _, provider := range a.cfg.Providers {
		if provider.Enabled {
			return pick(provider)
		}
	}
	return nil
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func isGeminiProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "" || t == "gemini" || t == "google"
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

// callGemini posts the prompt to the Gemini generateContent endpoint and
// extracts the first candidate's text. A structured (JSON) response type is
// requested through generationConfig.
func (a *Analyzer) callGemini(ctx context.Context, provider *appcfg.AIProvider, systemPrompt, prompt string) (string, error) {
	if strings.TrimSpace(provider.APIKey) == "" {
		return "", errors.New("analysis provider api key is empty")
	}

	endpoint := normalizeGeminiEndpoint(provider.Endpoint)
	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = "gemini-pro"
	}

	body, _ := json.Marshal(map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      analysisTemperature,
			"maxOutputTokens":  analysisMaxOutputTokens,
			"responseMimeType": "application/json",
		},
	})

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		endpoint, model, neturl.QueryEscape(strings.TrimSpace(provider.APIKey)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("gemini error (HTTP %d): %s", resp.StatusCode, truncateText(strings.TrimSpace(string(respBody)), 300))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 {
		return "", errEmptyResponse
	}

	var full strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		full.WriteString(part.Text)
	}
	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// callOpenAICompatible posts a chat completion request to any endpoint that
// speaks the OpenAI wire protocol.
func (a *Analyzer) callOpenAICompatible(ctx context.Context, provider *appcfg.AIProvider, systemPrompt, prompt string) (string, error) {
	if strings.TrimSpace(provider.APIKey) == "" {
		return "", errors.New("analysis provider api key is empty")
	}

	endpoint := normalizeOpenAICompatibleEndpoint(provider.Endpoint)
	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = "gpt-4o-mini"
	}

	body, _ := json.Marshal(map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":      analysisMaxOutputTokens,
		"temperature":     analysisTemperature,
		"response_format": map[string]string{"type": "json_object"},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(provider.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("analysis provider error (HTTP %d): %s", resp.StatusCode, truncateText(strings.TrimSpace(string(respBody)), 300))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", fmt.Errorf("analysis provider error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", errEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

// callLanguageModel handles openai and anthropic providers through their SDKs.
func (a *Analyzer) callLanguageModel(ctx context.Context, provider *appcfg.AIProvider, systemPrompt, prompt string) (string, error) {
	model, err := buildLanguageModel(provider, a.client.Timeout)
	if err != nil {
		return "", err
	}

	messages := []jetapi.Message{
		&jetapi.SystemMessage{Content: systemPrompt},
		&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)},
	}
	resp, err := jetai.GenerateText(
		ctx,
		messages,
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(analysisMaxOutputTokens),
	)
	if err != nil {
		return "", err
	}
	return extractTextFromModelResponse(resp)
}

func buildLanguageModel(provider *appcfg.AIProvider, timeout time.Duration) (jetapi.LanguageModel, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, errors.New("analysis provider api key is empty")
	}

	modelID := strings.TrimSpace(provider.DefaultModel)
	endpoint := strings.TrimSpace(provider.Endpoint)

	if normalizeProviderType(provider.Type) == "anthropic" {
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
			anthropicoption.WithRequestTimeout(timeout),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		return jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)), nil
	}

	if modelID == "" {
		modelID = "gpt-4o-mini"
	}
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
		openaioption.WithRequestTimeout(timeout),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	client := openaiclient.NewClient(opts...)
	return jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)), nil
}

func extractTextFromModelResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// decodeAnalysisResult turns the provider's text into a typed result using a
// strict-then-lenient two-stage decode: direct unmarshal, then fence
// stripping, then the first balanced {...} span. Missing optional arrays
// normalize to empty.
func decodeAnalysisResult(raw string) (*models.AnalysisResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var out models.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		out.Normalize()
		return &out, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		out = models.AnalysisResult{}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &out); err == nil {
			out.Normalize()
			return &out, nil
		}
	}

	return nil, errUnparsableAnalysis
}

func normalizeGeminiEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://generativelanguage.googleapis.com"
	}
	return strings.TrimRight(base, "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}
	cleaned := strings.TrimRight(base, "/")
	cleaned = strings.TrimSuffix(cleaned, "/v1")
	return cleaned
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
