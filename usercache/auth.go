package usercache

import (
	"time"

	"github.com/goliatone/go-kvcache/cache"
)

const (
	// KeyAuthTokens is the logical key of the token pair.
	KeyAuthTokens = "auth_tokens"

	// AuthTokenTTL bounds how long a token pair is served from the cache.
	AuthTokenTTL = time.Hour
)

// Tokens is an access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"access_token" msgpack:"access_token" yaml:"access_token"`
	RefreshToken string `json:"refresh_token" msgpack:"refresh_token" yaml:"refresh_token"`
}

// AuthTokens caches the session token pair with a short ttl.
type AuthTokens struct {
	view *cache.Typed[Tokens]
}

// NewAuthTokens binds an AuthTokens cache to engine.
func NewAuthTokens(engine *cache.Engine, opts ...Option) *AuthTokens {
	o := newOptions(AuthTokenTTL, opts)
	return &AuthTokens{view: typed[Tokens](engine, KeyAuthTokens, o)}
}

// Key returns the logical key.
func (a *AuthTokens) Key() string { return a.view.Key() }

// Set stores tokens.
func (a *AuthTokens) Set(tokens Tokens) bool { return a.view.Set(tokens) }

// Get returns the stored tokens while they are live.
func (a *AuthTokens) Get() (Tokens, bool) { return a.view.Get() }

// Remove deletes the stored tokens.
func (a *AuthTokens) Remove() bool { return a.view.Remove() }

// HasValidToken reports whether a live token pair is stored.
func (a *AuthTokens) HasValidToken() bool {
	_, ok := a.Get()
	return ok
}
