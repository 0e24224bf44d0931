// Package session turns a session payload into an opaque cookie value and
// back.
//
// A token is an HS256 JWT carrying the payload and its expiry, sealed with
// AES-256-GCM and base64url encoded. Each configured secret yields its own
// signing and encryption keys. The first secret writes new tokens; all of
// them are tried, in order, when reading one, which lets secrets be rotated
// without logging everybody out.
package session

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keySize = 32

	encInfo  = "writerlab/session/enc"
	signInfo = "writerlab/session/sign"

	// maxTokenSize keeps the whole Set-Cookie value under the 4 KiB browsers
	// accept.
	maxTokenSize = 3800
)

var ErrTokenTooLarge = errors.New("session token too large for a cookie")

type claims struct {
	jwt.RegisteredClaims
	Data Payload `json:"data"`
}

type keySet struct {
	enc  []byte
	sign []byte
}

type Codec struct {
	keys []keySet
	opts Options
	now  func() time.Time
}

// NewCodec derives keys for every non-blank secret. It fails with
// common.ErrConfiguration when no usable secret is given.
func NewCodec(secrets []string, opts Options) (*Codec, error) {
	keys := make([]keySet, 0, len(secrets))
	for _, s := range secrets {
		if strings.TrimSpace(s) == "" {
			continue
		}
		enc, err := cryptox.DeriveKey([]byte(s), encInfo, keySize)
		if err != nil {
			return nil, err
		}
		sign, err := cryptox.DeriveKey([]byte(s), signInfo, keySize)
		if err != nil {
			return nil, err
		}
		keys = append(keys, keySet{enc: enc, sign: sign})
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: session secrets are empty", common.ErrConfiguration)
	}

	return &Codec{keys: keys, opts: opts.normalize(), now: time.Now}, nil
}

func (c *Codec) Options() Options {
	return c.opts
}

// Encode produces a token for p that expires after Options.MaxAge.
func (c *Codec) Encode(p Payload) (string, error) {
	now := c.now()
	primary := c.keys[0]

	if p == nil {
		p = Payload{}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.opts.MaxAge)),
		},
		Data: p,
	})

	signed, err := token.SignedString(primary.sign)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	sealed, err := cryptox.Seal(primary.enc, []byte(signed))
	if err != nil {
		return "", fmt.Errorf("seal session: %w", err)
	}

	out := base64.RawURLEncoding.EncodeToString(sealed)
	if len(out) > maxTokenSize {
		return "", ErrTokenTooLarge
	}
	return out, nil
}

// Decode returns the payload of a token made by Encode under any configured
// secret. Malformed, tampered, foreign or expired tokens all yield an error
// wrapping common.ErrDecode.
func (c *Codec) Decode(token string) (Payload, error) {
	if token == "" || len(token) > maxTokenSize {
		return nil, fmt.Errorf("%w: bad token length", common.ErrDecode)
	}

	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", common.ErrDecode)
	}

	for _, k := range c.keys {
		plain, err := cryptox.Open(k.enc, sealed)
		if err != nil {
			continue
		}
		p, err := c.verify(string(plain), k.sign)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDecode, err)
		}
		return p, nil
	}

	return nil, fmt.Errorf("%w: no matching secret", common.ErrDecode)
}

func (c *Codec) verify(signed string, key []byte) (Payload, error) {
	cl := &claims{}
	_, err := jwt.ParseWithClaims(signed, cl,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, err
	}
	if cl.Data == nil {
		return nil, errors.New("missing data claim")
	}
	return cl.Data.clone(), nil
}

// Cookie wraps value in a cookie carrying the configured attributes.
func (c *Codec) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     c.opts.Name,
		Value:    value,
		Path:     c.opts.Path,
		MaxAge:   int(c.opts.MaxAge / time.Second),
		HttpOnly: c.opts.HTTPOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	}
}

// ExpiredCookie tells the browser to drop the session cookie.
func (c *Codec) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.opts.Name,
		Value:    "",
		Path:     c.opts.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: c.opts.HTTPOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	}
}
