package session

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/common"
)

// Options are the cookie attributes applied to every session cookie.
type Options struct {
	Name     string
	MaxAge   time.Duration
	Path     string
	HTTPOnly bool
	SameSite http.SameSite
	Secure   bool
}

// DefaultOptions returns the WriterLab cookie attributes. Secure is only set
// in production, where the site is served over TLS.
func DefaultOptions(production bool) Options {
	return Options{
		Name:     common.SessionCookieName,
		MaxAge:   30 * 24 * time.Hour,
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   production,
	}
}

func (o Options) normalize() Options {
	def := DefaultOptions(o.Secure)
	if o.Name == "" {
		o.Name = def.Name
	}
	if o.MaxAge <= 0 {
		o.MaxAge = def.MaxAge
	}
	if o.Path == "" {
		o.Path = def.Path
	}
	if o.SameSite == 0 {
		o.SameSite = def.SameSite
	}
	return o
}
