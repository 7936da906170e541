package prompt

import (
	"fmt"
	"strings"
)

const (
	// Placeholder はテンプレート中でパスフレーズに置換される文字列です。
	Placeholder = "{passphrase}"
	// DefaultTemplate は既定のプロンプトテンプレートです。
	DefaultTemplate = `Generate a short non-detailed image description to visualize the passphrase: "{passphrase}".`
)

// ValidateTemplate はテンプレートに Placeholder が含まれているかを検証します。
func ValidateTemplate(tmpl string) error {
	if !strings.Contains(tmpl, Placeholder) {
		return fmt.Errorf("prompt template must contain %s", Placeholder)
	}
	return nil
}

// Render はテンプレートの Placeholder をすべてパスフレーズに置き換えます。
func Render(tmpl, passphrase string) string {
	return strings.ReplaceAll(tmpl, Placeholder, passphrase)
}
