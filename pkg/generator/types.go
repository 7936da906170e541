package generator

import "github.com/sashabaranov/go-openai"

const (
	// Model は画像生成APIに渡すモデル名です。
	Model = "stablediffusion"
	// ImageSize は生成画像のサイズです。変更できません。
	ImageSize = openai.CreateImageSize512x512
	// NegativeSeparator はプロンプトとネガティブプロンプトを区切る文字です。
	NegativeSeparator = "|"
)
