package generator

import (
	"context"
	"errors"

	"github.com/shouni/mnemonic-image-kit/pkg/domain"
)

// ErrNoImage は、画像生成APIから画像URLを得られなかったことを示します。
var ErrNoImage = errors.New("no image generated")

// ImageSynthesizer はビジネスロジック層が利用する画像生成の窓口です。
type ImageSynthesizer interface {
	GenerateImage(ctx context.Context, prompt, negativePrompt string) (domain.ImageReference, error)
}

// HTTPClient は、JSON を POST して応答本文を取得するためのインターフェースです。
type HTTPClient interface {
	PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error)
}
