// Package requestctx carries request-scoped values through contexts.
package requestctx

import "context"

// localeContextKey is the context key for the negotiated response locale.
type localeContextKey struct{}

// WithLocale stores a resolved locale in context.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// LocaleFromContext returns the locale stored in context.
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(localeContextKey{}).(string)
	return value
}
