package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier validates bearer tokens issued by the external auth service.
// Only validation lives here; token issuance is not this service's concern.
type Verifier struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Now       func() time.Time
}

var errEmptyToken = errors.New("auth: empty token")

// Parse verifies the raw token's signature and claims and returns its subject.
func (v Verifier) Parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errEmptyToken
	}
	if len(v.Secret) == 0 {
		return "", errors.New("auth: verifier secret not configured")
	}

	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.Secret),
		jwt.WithValidate(true),
	}
	if v.Now != nil {
		now := v.Now()
		options = append(options, jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })))
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		options = append(options, jwt.WithAudience(v.Audience))
	}

	tok, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return "", err
	}
	sub := strings.TrimSpace(tok.Subject())
	if sub == "" {
		return "", errors.New("auth: token missing subject")
	}
	return sub, nil
}
