package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/shouni/mnemonic-image-kit/pkg/domain"
)

// LocalAIGenerator は OpenAI 互換の images/generations エンドポイントで画像を生成します。
type LocalAIGenerator struct {
	httpClient HTTPClient
	endpoint   string
}

// NewLocalAIGenerator は LocalAIGenerator を初期化するのだ。
func NewLocalAIGenerator(httpClient HTTPClient, endpoint string) (*LocalAIGenerator, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid image endpoint %q: %w", endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid image endpoint %q", endpoint)
	}

	return &LocalAIGenerator{
		httpClient: httpClient,
		endpoint:   endpoint,
	}, nil
}

// GenerateImage は1回だけ画像生成を依頼し、data[0].url をリモート参照として返します。
// 対象APIにはネガティブプロンプト用のパラメータがないため、"|" で連結した1つの文字列として送ります。
func (g *LocalAIGenerator) GenerateImage(ctx context.Context, prompt, negativePrompt string) (domain.ImageReference, error) {
	req := openai.ImageRequest{
		Prompt: JoinPrompt(prompt, negativePrompt),
		Model:  Model,
		Size:   ImageSize,
	}

	body, err := g.httpClient.PostJSONAndFetchBytes(ctx, g.endpoint, req)
	if err != nil {
		slog.WarnContext(ctx, "画像生成APIの呼び出しに失敗しました", "endpoint", g.endpoint, "error", err)
		return domain.ImageReference{}, fmt.Errorf("%w: image request: %v", ErrNoImage, err)
	}

	imageURL, err := parseImageResponse(body)
	if err != nil {
		slog.WarnContext(ctx, "画像生成APIの応答を解析できませんでした", "endpoint", g.endpoint, "error", err)
		return domain.ImageReference{}, err
	}

	slog.InfoContext(ctx, "画像が生成されました", "url", imageURL)
	return domain.NewRemoteReference(imageURL), nil
}

// JoinPrompt はプロンプトとネガティブプロンプトを NegativeSeparator で連結します。
func JoinPrompt(prompt, negativePrompt string) string {
	return prompt + NegativeSeparator + negativePrompt
}

func parseImageResponse(body []byte) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty response body", ErrNoImage)
	}

	var resp openai.ImageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrNoImage, err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("%w: response has no data", ErrNoImage)
	}

	imageURL := strings.TrimSpace(resp.Data[0].URL)
	if imageURL == "" {
		return "", fmt.Errorf("%w: data[0].url is empty", ErrNoImage)
	}
	return imageURL, nil
}
