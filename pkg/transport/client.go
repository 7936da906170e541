package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// Client は推論サーバー向けの HTTP クライアントです。
// httpkit.Client の Do を使い、1回の呼び出しにつきリクエストを1回だけ送ります。
// レスポンスの判定（2xx 以外はエラー、サイズ上限）は httpkit.HandleResponse に従います。
type Client struct {
	doer httpkit.Doer
}

// New は localhost の推論サーバーに接続できる Client を返します。
// httpkit の SSRF 検証はループバックを拒否するため無効にしています。
func New(timeout time.Duration) *Client {
	return NewWithDoer(httpkit.New(timeout, httpkit.WithSkipNetworkValidation(true)))
}

// NewWithDoer は任意の httpkit.Doer を使う Client を返します。
func NewWithDoer(doer httpkit.Doer) *Client {
	return &Client{doer: doer}
}

// PostJSONAndFetchBytes は data を JSON として POST し、レスポンスボディを返します。
func (c *Client) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("JSONデータのシリアライズに失敗しました: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエスト作成失敗 (url: %s): %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// FetchBytes は GET リクエストを送り、レスポンスボディを返します。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエスト作成失敗 (url: %s): %w", url, err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", httpkit.UserAgent)
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエスト失敗 (URL: %s): %w", req.URL.String(), err)
	}
	return httpkit.HandleResponse(resp)
}
