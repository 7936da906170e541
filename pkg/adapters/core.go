package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/mnemonic-image-kit/pkg/domain"
)

var (
	// ErrUnsupportedReference は取得方法のない画像参照を示します。
	ErrUnsupportedReference = errors.New("unsupported image reference")
	// ErrFetchFailed は画像バイト列の取得に失敗したことを示します。
	ErrFetchFailed = errors.New("image fetch failed")
)

// HTTPClient は、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ReferenceFetcher は ImageReference から画像バイト列を取得します。
// リモート参照は httpClient、ローカル参照は reader を使います。
type ReferenceFetcher struct {
	httpClient HTTPClient
	reader     remoteio.InputReader
}

// NewReferenceFetcher は依存関係を注入して ReferenceFetcher を初期化します。
func NewReferenceFetcher(httpClient HTTPClient, reader remoteio.InputReader) (*ReferenceFetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	return &ReferenceFetcher{httpClient: httpClient, reader: reader}, nil
}

// Fetch は参照先の画像バイト列を返します。
func (f *ReferenceFetcher) Fetch(ctx context.Context, ref domain.ImageReference) ([]byte, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty reference", ErrUnsupportedReference)
	}

	switch ref.Kind {
	case domain.RemoteImage:
		return f.fetchRemote(ctx, ref.Location)
	case domain.LocalImage:
		return f.readLocal(ctx, ref.Location)
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedReference, ref.Kind)
	}
}

func (f *ReferenceFetcher) fetchRemote(ctx context.Context, rawURL string) ([]byte, error) {
	// 生成APIは file:// の URL を返すこともある。
	if strings.HasPrefix(rawURL, fileScheme) {
		return f.readLocal(ctx, rawURL)
	}
	if err := validateRemoteURL(rawURL); err != nil {
		return nil, err
	}

	data, err := f.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "生成画像のダウンロードに失敗しました", "url", rawURL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return data, nil
}

func (f *ReferenceFetcher) readLocal(ctx context.Context, location string) ([]byte, error) {
	rc, err := f.reader.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFetchFailed, location, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFetchFailed, location, err)
	}
	return data, nil
}

// validateRemoteURL は URL を検証します。生成APIはローカルホストで動くことが前提のため、
// ループバックやプライベートアドレスは拒否しません。
func validateRemoteURL(rawURL string) error {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: URLパース失敗: %v", ErrUnsupportedReference, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%w: 不許可スキーム: %s", ErrUnsupportedReference, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%w: ホストがありません", ErrUnsupportedReference)
	}
	return nil
}
