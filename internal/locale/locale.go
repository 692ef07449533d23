// Package locale resolves the visitor's language preference and the layout
// direction that goes with it.
//
// The preference is read once per request by Middleware and handed to
// handlers through the gin context; Set is the only way to change it.
package locale

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// CookieName is the key the preference is persisted under on the client.
const CookieName = "language"

const contextKey = "locale.preference"

// Dir is the text direction of the layout.
type Dir string

const (
	LTR Dir = "ltr"
	RTL Dir = "rtl"
)

// Preference is the resolved language of one visitor.
type Preference struct {
	Language string
	Dir      Dir
}

var (
	supported = []language.Tag{language.English, language.Arabic, language.French}
	matcher   = language.NewMatcher(supported)
	rtl       = map[string]bool{"ar": true, "he": true, "fa": true, "ur": true}
)

// Supported lists the language codes the site can be shown in.
func Supported() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// Resolve matches raw (a language tag or an Accept-Language value) against the
// supported languages. Anything unusable resolves to fallback.
func Resolve(raw, fallback string) Preference {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return preferenceFor(fallback)
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return preferenceFor(fallback)
	}
	return preferenceFor(supported[idx].String())
}

func preferenceFor(lang string) Preference {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	p := Preference{Language: base.String(), Dir: LTR}
	if rtl[p.Language] {
		p.Dir = RTL
	}
	return p
}

// Middleware resolves the preference from the cookie, then Accept-Language.
func Middleware(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err != nil || raw == "" {
			raw = c.GetHeader("Accept-Language")
		}
		c.Set(contextKey, Resolve(raw, fallback))
		c.Next()
	}
}

// FromContext returns the preference set by Middleware, or English.
func FromContext(c *gin.Context) Preference {
	if v, ok := c.Get(contextKey); ok {
		if p, ok := v.(Preference); ok {
			return p
		}
	}
	return preferenceFor("en")
}

// Set persists lang for the visitor and updates the current request.
func Set(c *gin.Context, lang string) Preference {
	p := Resolve(lang, FromContext(c).Language)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, p.Language, 365*24*60*60, "/", "", false, false)
	c.Set(contextKey, p)
	return p
}
