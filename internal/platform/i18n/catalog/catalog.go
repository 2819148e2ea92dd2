// Package catalog loads localized message catalogs and builds x/text
// printers from them.
//
// Catalog files live at locales/<locale>/<namespace>.yaml. The "battle"
// namespace maps base-locale format strings to translated formats; the
// base locale needs no battle file because an unknown key renders as
// itself.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	xcatalog "golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

const (
	// BaseLocale is the canonical source locale for catalogs.
	BaseLocale = "en-US"
	// NamespaceBattle holds battle log formats.
	NamespaceBattle = "battle"
	// NamespaceErrors holds user-facing error messages keyed by code.
	NamespaceErrors = "errors"
)

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// LocaleCatalog stores all messages for one locale, grouped by namespace.
type LocaleCatalog struct {
	Locale     string
	Namespaces map[string]map[string]string
}

// Bundle contains all locale catalogs loaded from disk.
type Bundle struct {
	locales map[string]*LocaleCatalog

	mu       sync.Mutex
	builders map[string]*xcatalog.Builder
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads catalog files embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads catalog files from the provided filesystem.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]*LocaleCatalog{}}
	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := bundle.addFile(path, file); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func (b *Bundle) addFile(path string, file catalogFile) error {
	localeFromPath := filepath.Base(filepath.Dir(path))
	namespaceFromPath := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", path)
	}
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, locale, localeFromPath)
	}
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: invalid locale %q: %w", path, locale, err)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if namespace == "" {
		return fmt.Errorf("catalog %s: namespace is required", path)
	}
	if namespace != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", path, namespace, namespaceFromPath)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}

	lc, ok := b.locales[locale]
	if !ok {
		lc = &LocaleCatalog{Locale: locale, Namespaces: map[string]map[string]string{}}
		b.locales[locale] = lc
	}
	if _, exists := lc.Namespaces[namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", path, namespace, locale)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if namespace == NamespaceBattle && countVerbs(key) != countVerbs(value) {
			return fmt.Errorf("catalog %s: %q translation must keep %d format verbs", path, key, countVerbs(key))
		}
		messages[key] = value
	}
	lc.Namespaces[namespace] = messages
	return nil
}

// countVerbs counts fmt verbs, ignoring escaped percent signs.
func countVerbs(format string) int {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all available locale identifiers, base locale first.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		if locale != BaseLocale {
			out = append(out, locale)
		}
	}
	sort.Strings(out)
	if _, ok := b.locales[BaseLocale]; ok {
		out = append([]string{BaseLocale}, out...)
	}
	return out
}

// ResolveLocale maps a requested locale ("pt", "pt-br", "fr-FR") to the
// closest available one, falling back to BaseLocale.
func (b *Bundle) ResolveLocale(requested string) string {
	requested = strings.TrimSpace(requested)
	if b.HasLocale(requested) {
		return requested
	}
	locales := b.Locales()
	if len(locales) == 0 || requested == "" {
		return BaseLocale
	}
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = language.Make(l)
	}
	_, idx, confidence := language.NewMatcher(tags).Match(language.Make(requested))
	if confidence == language.No {
		return BaseLocale
	}
	return locales[idx]
}

// NamespaceMessages returns an exact namespace message map copy for a locale.
func (b *Bundle) NamespaceMessages(locale string, namespace string) map[string]string {
	if b == nil {
		return map[string]string{}
	}
	lc, ok := b.locales[strings.TrimSpace(locale)]
	if !ok || lc == nil {
		return map[string]string{}
	}
	return copyMap(lc.Namespaces[strings.TrimSpace(namespace)])
}

// NamespaceMessagesWithFallback returns namespace messages and the locale
// that satisfied the lookup.
func (b *Bundle) NamespaceMessagesWithFallback(locale string, namespace string) (string, map[string]string) {
	resolved := b.ResolveLocale(locale)
	if messages := b.NamespaceMessages(resolved, namespace); len(messages) > 0 {
		return resolved, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

// Message returns one message value with base-locale fallback.
func (b *Bundle) Message(locale, namespace, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	for _, l := range []string{b.ResolveLocale(locale), BaseLocale} {
		if lc, ok := b.locales[l]; ok {
			if value, exists := lc.Namespaces[namespace][key]; exists {
				return value, true
			}
		}
	}
	return "", false
}

// Printer returns a new printer rendering battle formats for locale.
// Printers are not safe for concurrent use; take one per battle.
func (b *Bundle) Printer(locale string) *message.Printer {
	resolved := b.ResolveLocale(locale)
	tag := language.Make(resolved)
	return message.NewPrinter(tag, message.Catalog(b.builder(resolved, tag)))
}

func (b *Bundle) builder(locale string, tag language.Tag) *xcatalog.Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if builder, ok := b.builders[locale]; ok {
		return builder
	}
	builder := xcatalog.NewBuilder(xcatalog.Fallback(language.Make(BaseLocale)))
	messages := b.NamespaceMessages(locale, NamespaceBattle)
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		// Validated on load: SetString only fails for malformed tags.
		_ = builder.SetString(tag, key, messages[key])
	}
	if b.builders == nil {
		b.builders = map[string]*xcatalog.Builder{}
	}
	b.builders[locale] = builder
	return builder
}

func copyMap(source map[string]string) map[string]string {
	out := make(map[string]string, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return bundle
}
