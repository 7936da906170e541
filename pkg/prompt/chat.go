package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatSynthesizer は OpenAI 互換の chat completions エンドポイント（LocalAI 等）を使う Synthesizer です。
type ChatSynthesizer struct {
	httpClient HTTPClient
	endpoint   string
	model      string
	template   string
}

// NewChatSynthesizer は依存関係と設定を検証して ChatSynthesizer を初期化します。
func NewChatSynthesizer(httpClient HTTPClient, endpoint, model, template string) (*ChatSynthesizer, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}

	return &ChatSynthesizer{
		httpClient: httpClient,
		endpoint:   endpoint,
		model:      model,
		template:   template,
	}, nil
}

// Synthesize はユーザーロールのメッセージ1件だけを送り、choices[0].message.content を返します。
// リトライは行いません。
func (s *ChatSynthesizer) Synthesize(ctx context.Context, passphrase string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Render(s.template, passphrase)},
		},
	}

	body, err := s.httpClient.PostJSONAndFetchBytes(ctx, s.endpoint, req)
	if err != nil {
		slog.WarnContext(ctx, "LLM APIの呼び出しに失敗しました", "endpoint", s.endpoint, "error", err)
		return "", fmt.Errorf("%w: chat request: %v", ErrNoPrompt, err)
	}

	content, err := parseChatResponse(body)
	if err != nil {
		slog.WarnContext(ctx, "LLM APIの応答を解析できませんでした", "endpoint", s.endpoint, "error", err)
		return "", err
	}
	return content, nil
}

func parseChatResponse(body []byte) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty response body", ErrNoPrompt)
	}

	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrNoPrompt, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrNoPrompt)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: choices[0].message.content is empty", ErrNoPrompt)
	}
	return content, nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}
