package adapters

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const fileScheme = "file://"

var _ remoteio.InputReader = (*LocalReader)(nil)

// LocalReader はローカルファイルシステム用の remoteio.InputReader です。
// 通常のパスと file:// URI の両方を受け付けます。
type LocalReader struct{}

// NewLocalReader は LocalReader を返します。
func NewLocalReader() *LocalReader {
	return &LocalReader{}
}

// Open はファイルを開きます。
func (r *LocalReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := ToLocalPath(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// List はディレクトリ直下の通常ファイルのパスを fn に渡します。
func (r *LocalReader) List(ctx context.Context, uri string, fn func(string) error) error {
	dir, err := ToLocalPath(uri)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			continue
		}
		if err := fn(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ToLocalPath は file:// URI または通常のパスをファイルパスに変換します。
func ToLocalPath(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsupportedReference)
	}
	if !strings.HasPrefix(uri, fileScheme) {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedReference, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote file host %q", ErrUnsupportedReference, u.Host)
	}
	return filepath.FromSlash(u.Path), nil
}

// FileExists は path が存在する通常ファイルかどうかを返します。
func FileExists(path string) bool {
	p, err := ToLocalPath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
