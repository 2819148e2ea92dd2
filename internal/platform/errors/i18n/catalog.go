// Package i18n renders localized error messages.
package i18n

import (
	"bytes"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/pocketduel/internal/platform/i18n/catalog"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	// catalogs caches catalogs by resolved locale.
	catalogs = map[string]*Catalog{}
)

// GetCatalog returns the catalog for the given locale.
// Unknown locales resolve to the closest available one, then en-US.
func GetCatalog(locale string) *Catalog {
	bundle := i18ncatalog.Default()
	resolved := bundle.ResolveLocale(locale)

	catalogsMu.RLock()
	cat, ok := catalogs[resolved]
	catalogsMu.RUnlock()
	if ok {
		return cat
	}

	messages := bundle.NamespaceMessages(i18ncatalog.BaseLocale, i18ncatalog.NamespaceErrors)
	for code, tmpl := range bundle.NamespaceMessages(resolved, i18ncatalog.NamespaceErrors) {
		messages[code] = tmpl
	}
	built := NewCatalog(resolved, messages)

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[resolved]; ok {
		return existing
	}
	catalogs[resolved] = built
	return built
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found, and to the
// raw template if it fails to parse or execute.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}
