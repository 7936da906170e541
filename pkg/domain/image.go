package domain

// GenerationRequest はパスフレーズ1件分の記憶画像生成要求です。
// 1回のパイプライン呼び出しの間は変更しません。
type GenerationRequest struct {
	Passphrase     string `json:"passphrase"`
	OutputFilename string `json:"output_filename"`
}

// ReferenceKind は ImageReference の取得元を表します。
type ReferenceKind int

const (
	// RemoteImage は画像生成APIが返したURLです。
	RemoteImage ReferenceKind = iota + 1
	// LocalImage は運用者が用意したフォールバック画像のファイルパスです。
	LocalImage
)

func (k ReferenceKind) String() string {
	switch k {
	case RemoteImage:
		return "remote"
	case LocalImage:
		return "local"
	default:
		return "unknown"
	}
}

// ImageReference は保存対象の画像バイト列の取得元です。
// リモートURLかローカルのフォールバック画像か、必ずどちらか一方です。
type ImageReference struct {
	Kind     ReferenceKind
	Location string
}

// NewRemoteReference は画像生成APIが返したURLから参照を作ります。
func NewRemoteReference(url string) ImageReference {
	return ImageReference{Kind: RemoteImage, Location: url}
}

// NewLocalReference はローカルファイルのパスから参照を作ります。
func NewLocalReference(path string) ImageReference {
	return ImageReference{Kind: LocalImage, Location: path}
}

// IsZero は参照が未設定かどうかを返します。
func (r ImageReference) IsZero() bool {
	return r.Kind == 0 || r.Location == ""
}
