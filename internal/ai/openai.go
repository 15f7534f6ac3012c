package ai

import (
	"context"
	"fmt"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type openAIProvider struct {
	apiKey  string
	baseURL string
}

type openAIChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	Stream    bool      `json:"stream"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	return chatCompletions(ctx, p.Name(), p.baseURL, map[string]string{"Authorization": "Bearer " + p.apiKey}, req)
}

// chatCompletions speaks the OpenAI chat completions dialect, which OpenRouter shares.
// The system prompt travels as the leading system message.
func chatCompletions(ctx context.Context, provider, baseURL string, headers map[string]string, req *ChatRequest) (string, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/chat/completions"
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, req.Messages...)
	body := openAIChatRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    false,
	}
	var out openAIChatResponse
	if err := postJSON(ctx, nil, provider, endpoint, headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", upstreamError(provider, fmt.Errorf("%s response has no choices", provider))
	}
	return out.Choices[0].Message.Content, nil
}

func createOpenAIFactory(args interface{}) (IProvider, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	provider := &openAIProvider{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
	}
	return provider, nil
}

func init() {
	Register("openai", createOpenAIFactory)
}
