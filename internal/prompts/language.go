package prompts

import (
	"strings"

	"txtension/internal/models"
)

// ResolveLanguage returns the catalog label for code, the upper-cased code
// when the catalog does not know it, or fallback when code is empty.
func ResolveLanguage(catalog *models.Catalog, code, fallback string) string {
	if code == "" {
		return fallback
	}
	if label, ok := catalog.LanguageLabel(code); ok && label != "" {
		return label
	}
	return strings.ToUpper(code)
}
