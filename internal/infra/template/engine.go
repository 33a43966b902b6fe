package template

import (
	"regexp"
	"strings"

	"wabalerts/internal/domain/notification"
)

var _ notification.TemplateRenderer = (*Engine)(nil)

// legacyPrefix is the placeholder prefix of templates written for the WooCommerce plugin.
const legacyPrefix = "WOOCOM_"

var tokenRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Engine substitutes {NAME} placeholders in message templates.
type Engine struct{}

// NewEngine creates a new placeholder engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Render replaces each {NAME} token whose upper-cased name is in data.
// Tokens are matched case-insensitively and unknown ones are left untouched.
// Substituted values are not scanned again.
func (e *Engine) Render(tmpl string, data notification.RenderContext) string {
	if tmpl == "" || len(data) == 0 {
		return tmpl
	}

	return tokenRe.ReplaceAllStringFunc(tmpl, func(token string) string {
		name := strings.ToUpper(token[1 : len(token)-1])
		if v, ok := data[name]; ok {
			return v
		}
		if trimmed, found := strings.CutPrefix(name, legacyPrefix); found {
			if v, ok := data[trimmed]; ok {
				return v
			}
		}
		return token
	})
}
