package domain

import (
	"time"

	"github.com/shouni/mnemonic-image-kit/pkg/utils"
)

const (
	// NoImagePath は画像生成に失敗したエントリに保存される値です。
	NoImagePath = "None"
	// TimestampLayout はパスワードエントリの登録日時の表示形式です。
	TimestampLayout = "02.01.2006 15:04"
	imageExtension  = ".png"
)

// MnemonicRecord はパスワードエントリ1件です。保存はエントリストア側の責務で、
// パイプラインは ImagePath の値だけを生成します。
type MnemonicRecord struct {
	Website   string `json:"website"`
	Password  string `json:"password"`
	Timestamp string `json:"timestamp"`
	ImagePath string `json:"image_path"`
}

// NewMnemonicRecord はパイプラインの結果からエントリを組み立てます。
// 生成に失敗した場合 (genErr != nil) は ImagePath に NoImagePath が入ります。
func NewMnemonicRecord(website, password string, at time.Time, imagePath string, genErr error) MnemonicRecord {
	if genErr != nil || imagePath == "" {
		imagePath = NoImagePath
	}
	return MnemonicRecord{
		Website:   website,
		Password:  password,
		Timestamp: at.Format(TimestampLayout),
		ImagePath: imagePath,
	}
}

// HasImage は記憶画像が紐づいているかを返します。
func (r MnemonicRecord) HasImage() bool {
	return r.ImagePath != "" && r.ImagePath != NoImagePath
}

// OutputFilename はユーザー名とWebサイトから保存ファイル名 "{user}_{website}.png" を作ります。
func OutputFilename(user, website string) string {
	return utils.SanitizeFilenamePart(user) + "_" + utils.SanitizeFilenamePart(website) + imageExtension
}
