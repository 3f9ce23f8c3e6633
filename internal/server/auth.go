package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fcaengine/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const actorHeader = "X-Actor-ID"

var errNoCredentials = errors.New("no credentials on request")

// KeySetSource returns the key set tokens are verified against. *jwk.Cache
// satisfies it.
type KeySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

// Authenticator turns request credentials into an actor id. Identity is
// issued elsewhere; this only verifies it.
type Authenticator struct {
	disabled   bool
	cookieName string
	cookie     *securecookie.SecureCookie
	keys       KeySetSource
	jwksURL    string
}

func NewAuthenticator(config *types.Config, keys KeySetSource) (*Authenticator, error) {
	a := &Authenticator{
		disabled:   config.AuthDisabled,
		cookieName: config.CookieName,
		keys:       keys,
		jwksURL:    config.JWKSURL,
	}

	if config.CookieHashKey != "" {
		hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
		}
		blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
		}
		a.cookie = securecookie.New(hashKey, blockKey)
	}

	return a, nil
}

// Actor returns the caller's id. With auth disabled the X-Actor-ID header is
// trusted as is. Otherwise a bearer token or the encrypted access token
// cookie must carry a JWT whose subject is the actor.
func (a *Authenticator) Actor(r *http.Request) (string, error) {
	if a.disabled {
		actor := strings.TrimSpace(r.Header.Get(actorHeader))
		if actor == "" {
			return "", errNoCredentials
		}
		return actor, nil
	}

	accessToken, err := a.accessToken(r)
	if err != nil {
		return "", err
	}

	if a.keys == nil {
		return "", errors.New("no key set configured")
	}

	set, err := a.keys.Lookup(r.Context(), a.jwksURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse JWT: %w", err)
	}

	actor, ok := token.Subject()
	if !ok || actor == "" {
		return "", errors.New("no subject claim in JWT")
	}

	return actor, nil
}

func (a *Authenticator) accessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return "", errors.New("malformed authorization header")
		}
		return strings.TrimSpace(token), nil
	}

	if a.cookie == nil {
		return "", errNoCredentials
	}

	cookie, err := r.Cookie(a.cookieName)
	if err != nil {
		return "", errNoCredentials
	}

	var accessToken string
	if err := a.cookie.Decode(a.cookieName, cookie.Value, &accessToken); err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return accessToken, nil
}
