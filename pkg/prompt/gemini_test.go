package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, &genai.Part{Text: t})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}, FinishReason: genai.FinishReasonStop},
		},
	}
}

func TestGeminiSynthesizer_Synthesize(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: テンプレート適用済みのテキストが送られるのだ", func(t *testing.T) {
		aiClient := &mockAIClient{
			generateFunc: func(model string, prompt string) (*gemini.Response, error) {
				assert.Equal(t, "gemini-2.0-flash", model)
				assert.Equal(t, Render(DefaultTemplate, "pw"), prompt)
				return &gemini.Response{RawResponse: textResponse("a quiet ", "lighthouse")}, nil
			},
		}
		g, err := NewGeminiSynthesizer(aiClient, "gemini-2.0-flash", DefaultTemplate)
		require.NoError(t, err)

		got, err := g.Synthesize(ctx, "pw")

		require.NoError(t, err)
		assert.Equal(t, "a quiet lighthouse", got)
		assert.Equal(t, 1, aiClient.calls)
	})

	t.Run("失敗: クライアントエラーは ErrNoPrompt になるのだ", func(t *testing.T) {
		aiClient := &mockAIClient{
			generateFunc: func(model string, prompt string) (*gemini.Response, error) {
				return nil, errors.New("quota exceeded")
			},
		}
		g, _ := NewGeminiSynthesizer(aiClient, "m", DefaultTemplate)

		_, err := g.Synthesize(ctx, "pw")

		assert.ErrorIs(t, err, ErrNoPrompt)
		assert.Equal(t, 1, aiClient.calls)
	})

	t.Run("失敗: 安全フィルタで止まった候補", func(t *testing.T) {
		aiClient := &mockAIClient{
			generateFunc: func(model string, prompt string) (*gemini.Response, error) {
				return &gemini.Response{RawResponse: &genai.GenerateContentResponse{
					Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
				}}, nil
			},
		}
		g, _ := NewGeminiSynthesizer(aiClient, "m", DefaultTemplate)

		_, err := g.Synthesize(ctx, "pw")

		assert.ErrorIs(t, err, ErrNoPrompt)
		assert.Contains(t, err.Error(), string(genai.FinishReasonSafety))
	})

	t.Run("失敗: 候補なし", func(t *testing.T) {
		aiClient := &mockAIClient{
			generateFunc: func(model string, prompt string) (*gemini.Response, error) {
				return &gemini.Response{RawResponse: &genai.GenerateContentResponse{}}, nil
			},
		}
		g, _ := NewGeminiSynthesizer(aiClient, "m", DefaultTemplate)

		_, err := g.Synthesize(ctx, "pw")

		assert.ErrorIs(t, err, ErrNoPrompt)
	})

	t.Run("失敗: RawResponse が nil", func(t *testing.T) {
		aiClient := &mockAIClient{
			generateFunc: func(model string, prompt string) (*gemini.Response, error) {
				return &gemini.Response{}, nil
			},
		}
		g, _ := NewGeminiSynthesizer(aiClient, "m", DefaultTemplate)

		_, err := g.Synthesize(ctx, "pw")

		assert.ErrorIs(t, err, ErrNoPrompt)
	})
}

func TestNewGeminiSynthesizer(t *testing.T) {
	_, err := NewGeminiSynthesizer(nil, "m", DefaultTemplate)
	assert.Error(t, err)

	_, err = NewGeminiSynthesizer(&mockAIClient{}, "", DefaultTemplate)
	assert.Error(t, err)

	_, err = NewGeminiSynthesizer(&mockAIClient{}, "m", "no placeholder")
	assert.Error(t, err)
}

func TestModelsGenerator_GenerateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success/ShouldSendSingleTextContent", func(t *testing.T) {
		models := &mockContentGenerator{
			generateFunc: func(model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
				assert.Equal(t, "gemini-2.0-flash", model)
				require.Len(t, contents, 1)
				require.Len(t, contents[0].Parts, 1)
				assert.Equal(t, "draw pw", contents[0].Parts[0].Text)
				return textResponse("a lighthouse"), nil
			},
		}
		m, err := NewModelsGenerator(models)
		require.NoError(t, err)

		resp, err := m.GenerateContent(ctx, "gemini-2.0-flash", "draw pw")

		require.NoError(t, err)
		require.NotNil(t, resp.RawResponse)
		assert.Equal(t, "a lighthouse", resp.RawResponse.Candidates[0].Content.Parts[0].Text)
		assert.Equal(t, 1, models.calls)
	})

	t.Run("Synthesizer経由でも1回だけ呼ぶのだ", func(t *testing.T) {
		models := &mockContentGenerator{
			generateFunc: func(model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
				return nil, errors.New("unavailable")
			},
		}
		m, _ := NewModelsGenerator(models)
		g, _ := NewGeminiSynthesizer(m, "m", DefaultTemplate)

		_, err := g.Synthesize(ctx, "pw")

		assert.ErrorIs(t, err, ErrNoPrompt)
		assert.Equal(t, 1, models.calls)
	})

	t.Run("nilチェック", func(t *testing.T) {
		_, err := NewModelsGenerator(nil)
		assert.Error(t, err)
	})
}
