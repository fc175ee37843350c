package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"
)

// CookieOptions controls the session cookies.
type CookieOptions struct {
	// Prefix is prepended to each slot name to form the cookie name.
	Prefix   string
	Path     string
	Domain   string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieOptions returns HttpOnly, Lax, host-wide session cookies.
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Prefix:   "gg_",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) withDefaults() CookieOptions {
	d := DefaultCookieOptions()
	if o.Prefix == "" {
		o.Prefix = d.Prefix
	}
	if o.Path == "" {
		o.Path = d.Path
	}
	if o.SameSite == 0 {
		o.SameSite = d.SameSite
	}
	return o
}

// CookieStorage is a session.Storage over the cookies of one request. Writes
// become Set-Cookie headers on the response and are visible to later reads
// through the same CookieStorage.
//
// A CookieStorage must not outlive its request.
type CookieStorage struct {
	r       *http.Request
	w       http.ResponseWriter
	opts    CookieOptions
	pending map[string]*string
}

// NewCookieStorage returns a storage bound to r and w.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStorage {
	return &CookieStorage{
		r:       r,
		w:       w,
		opts:    opts.withDefaults(),
		pending: make(map[string]*string, 2),
	}
}

func (c *CookieStorage) name(key string) string {
	return c.opts.Prefix + key
}

// Get returns the decoded cookie value. Values that are not valid base64url
// are returned verbatim so the session store can reject them.
func (c *CookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := c.pending[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	ck, err := c.r.Cookie(c.name(key))
	if err != nil {
		return "", false, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return ck.Value, true, nil
	}
	return string(raw), true, nil
}

func (c *CookieStorage) Set(_ context.Context, key, value string) error {
	ck := c.cookie(key)
	ck.Value = base64.RawURLEncoding.EncodeToString([]byte(value))
	if c.opts.MaxAge > 0 {
		ck.MaxAge = int(c.opts.MaxAge / time.Second)
	}
	http.SetCookie(c.w, ck)

	v := value
	c.pending[key] = &v
	return nil
}

// SetMany writes every slot into the same response, so the browser applies
// them together.
func (c *CookieStorage) SetMany(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if err := c.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *CookieStorage) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		ck := c.cookie(key)
		ck.MaxAge = -1
		http.SetCookie(c.w, ck)
		c.pending[key] = nil
	}
	return nil
}

func (c *CookieStorage) cookie(key string) *http.Cookie {
	return &http.Cookie{
		Name:     c.name(key),
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		Secure:   c.opts.Secure,
		HttpOnly: true,
		SameSite: c.opts.SameSite,
	}
}
