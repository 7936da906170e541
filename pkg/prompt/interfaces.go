package prompt

import (
	"context"
	"errors"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// ErrNoPrompt は、プロンプト生成が失敗したことを示します。
// 通信エラー、非2xxステータス、スキーマ不一致はすべてこのエラーに集約されます。
var ErrNoPrompt = errors.New("no prompt")

// Synthesizer はパスフレーズを画像生成用の短い説明文に変換します。
// 失敗時は ErrNoPrompt をラップしたエラーを返し、panic はしません。
type Synthesizer interface {
	Synthesize(ctx context.Context, passphrase string) (string, error)
}

// HTTPClient は httpkit.ClientInterface のうち、JSON POST に必要な部分です。
type HTTPClient interface {
	PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error)
}

// TextGenerator は gemini.GenerativeModel のうち、テキストプロンプトから生成する部分です。
type TextGenerator interface {
	GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error)
}

// ContentGenerator は genai.Models の GenerateContent を抽象化します。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
