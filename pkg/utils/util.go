package utils

import "strings"

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"..", "_",
	"\x00", "",
)

// SanitizeFilenamePart は、ファイル名の一部として使えない文字を "_" に置き換えます。
// パス区切りや親ディレクトリ参照が残らないことを保証します。
func SanitizeFilenamePart(s string) string {
	return filenameReplacer.Replace(strings.TrimSpace(s))
}
