package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GeminiSynthesizer は Gemini を使う Synthesizer です。
// ChatSynthesizer と同じテンプレートと失敗時の振る舞いを持ちます。
type GeminiSynthesizer struct {
	aiClient TextGenerator
	model    string
	template string
}

// NewGeminiSynthesizer は GeminiSynthesizer を初期化します。
// aiClient には gemini.GenerativeModel か ModelsGenerator を渡します。
func NewGeminiSynthesizer(aiClient TextGenerator, model, template string) (*GeminiSynthesizer, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (TextGenerator) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}
	return &GeminiSynthesizer{aiClient: aiClient, model: model, template: template}, nil
}

// Synthesize は1回だけ Gemini を呼び出し、最初の候補のテキストを返します。
func (g *GeminiSynthesizer) Synthesize(ctx context.Context, passphrase string) (string, error) {
	resp, err := g.aiClient.GenerateContent(ctx, g.model, Render(g.template, passphrase))
	if err != nil {
		slog.WarnContext(ctx, "Gemini呼び出しに失敗しました", "model", g.model, "error", err)
		return "", fmt.Errorf("%w: gemini request: %v", ErrNoPrompt, err)
	}

	text, err := parseGeminiResponse(resp)
	if err != nil {
		slog.WarnContext(ctx, "Geminiの応答からテキストを取得できませんでした", "model", g.model, "error", err)
		return "", err
	}
	return text, nil
}

func parseGeminiResponse(resp *gemini.Response) (string, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 || resp.RawResponse.Candidates[0] == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrNoPrompt)
	}

	// 最初の候補のみを利用する。
	candidate := resp.RawResponse.Candidates[0]

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text != "" {
		return text, nil
	}
	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("%w: generation stopped (FinishReason: %s)", ErrNoPrompt, candidate.FinishReason)
	}
	return "", fmt.Errorf("%w: gemini returned empty text", ErrNoPrompt)
}

// ModelsGenerator は genai.Models を TextGenerator として使うアダプタです。
type ModelsGenerator struct {
	models ContentGenerator
}

// NewModelsGenerator は ModelsGenerator を返します。models には genai.Client.Models を渡します。
func NewModelsGenerator(models ContentGenerator) (*ModelsGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("models (ContentGenerator) is required")
	}
	return &ModelsGenerator{models: models}, nil
}

// GenerateContent はテキスト1件を送り、応答を gemini.Response に包んで返します。
func (m *ModelsGenerator) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	resp, err := m.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}
