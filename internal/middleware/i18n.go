package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// LocaleResolver maps a BCP 47 tag or Accept-Language value onto a supported
// language.
type LocaleResolver interface {
	Resolve(locale string) language.Tag
}

// I18N stores the negotiated locale in the request context and echoes it in
// Content-Language. Precedence: X-Locale header, lang query parameter,
// Accept-Language, defaultLocale.
func I18N(defaultLocale string, resolver LocaleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale, resolver)
			w.Header().Set("Content-Language", locale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, resolver LocaleResolver) string {
	candidates := []string{
		r.Header.Get("X-Locale"),
		r.URL.Query().Get("lang"),
		r.Header.Get("Accept-Language"),
		fallback,
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c == "" {
			continue
		}
		if resolver != nil {
			return resolver.Resolve(c).String()
		}
		if base := baseLanguage(c); base != "" {
			return base
		}
	}
	return "en"
}

// baseLanguage returns the base language of the first parseable tag in v.
func baseLanguage(v string) string {
	tags, _, err := language.ParseAcceptLanguage(v)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, conf := tags[0].Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}
