package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidFilename は出力ファイル名にパス要素が含まれていることを示します。
	ErrInvalidFilename = errors.New("invalid output filename")
	// ErrWriteFailed は画像ファイルの書き込みに失敗したことを示します。
	ErrWriteFailed = errors.New("image write failed")
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
	// 一時ファイル名は出力ファイル名の長さに依存しない。
	tempPattern = ".mnemonic-*.tmp"
)

// ImageStore は出力ディレクトリに画像ファイルを保存します。
// 書き込みは同じディレクトリの一時ファイルに行い、完了後に rename するため、
// 失敗時に対象パスへ中途半端なファイルが残ることはありません。
type ImageStore struct {
	dir string
}

// NewImageStore は ImageStore を初期化します。ディレクトリは Save 時に作成されます。
func NewImageStore(dir string) (*ImageStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	return &ImageStore{dir: dir}, nil
}

// Dir は出力ディレクトリを返します。
func (s *ImageStore) Dir() string {
	return s.dir
}

// PathFor は filename の保存先パスを返します。
func (s *ImageStore) PathFor(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Save は data を {dir}/{filename} に書き込み、そのパスを返します。
// 同名ファイルが既にあれば上書きします。
func (s *ImageStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}

	// 作成に失敗しても中断しない。続く書き込みで失敗として扱われる。
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		slog.WarnContext(ctx, "出力ディレクトリを作成できませんでした", "dir", s.dir, "error", err)
	}

	target := s.PathFor(filename)

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	if err := writeTemp(tmp, data); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: rename: %v", ErrWriteFailed, err)
	}

	slog.InfoContext(ctx, "画像を保存しました", "path", target, "size_bytes", len(data))
	return target, nil
}

// writeTemp は f に data を書き込み、同期してから閉じます。
func writeTemp(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	// CreateTemp は 0600 で作成する。
	if err := f.Chmod(filePerm); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ValidateFilename は filename がディレクトリ要素を含まない単一のファイル名であることを確認します。
func ValidateFilename(filename string) error {
	switch {
	case strings.TrimSpace(filename) == "":
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	case filename == "." || filename == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	case strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename:
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, filename)
	}
	return nil
}
