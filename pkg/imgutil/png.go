package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// ErrDecode は入力が画像としてデコードできなかったことを示します。
var ErrDecode = errors.New("image decode failed")

// EncodePNG は画像データ（PNG, JPEG, GIF, WebP）をデコードし、PNG形式で再エンコードします。
// 戻り値の2つ目はデコード時に検出した元のフォーマット名です。
func EncodePNG(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty data", ErrDecode)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, format, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), format, nil
}
