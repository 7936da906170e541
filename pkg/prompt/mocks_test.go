package prompt

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// mockHTTPClient は HTTPClient のテスト用モックなのだ。
type mockHTTPClient struct {
	postFunc func(ctx context.Context, url string, data any) ([]byte, error)
	calls    int
	lastURL  string
	lastData any
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	m.calls++
	m.lastURL = url
	m.lastData = data
	if m.postFunc != nil {
		return m.postFunc(ctx, url, data)
	}
	return nil, nil
}

// mockAIClient は TextGenerator (gemini.GenerativeModel) のテスト用モックなのだ。
type mockAIClient struct {
	generateFunc func(model string, prompt string) (*gemini.Response, error)
	calls        int
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(model, prompt)
	}
	return nil, nil
}

// mockContentGenerator は ContentGenerator のテスト用モックなのだ。
type mockContentGenerator struct {
	generateFunc func(model string, contents []*genai.Content) (*genai.GenerateContentResponse, error)
	calls        int
}

func (m *mockContentGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(model, contents)
	}
	return nil, nil
}
