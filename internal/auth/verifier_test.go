package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/arkan-dev/backend-pos/internal/common"
)

var testSecret = []byte("test-secret-key")

func signToken(t *testing.T, mutate func(b *jwt.Builder)) string {
	t.Helper()
	b := jwt.NewBuilder().
		Subject("user-1").
		Issuer("pos-auth").
		Audience([]string{"pos-api"}).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(15 * time.Minute))
	if mutate != nil {
		mutate(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func newVerifier() Verifier {
	return Verifier{
		Secret:    testSecret,
		Issuer:    "pos-auth",
		Audience:  "pos-api",
		ClockSkew: 30 * time.Second,
	}
}

func TestVerifierParse(t *testing.T) {
	sub, err := newVerifier().Parse(signToken(t, nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestVerifierRejectsExpiredToken(t *testing.T) {
	raw := signToken(t, func(b *jwt.Builder) {
		b.Expiration(time.Now().Add(-time.Hour))
	})
	if _, err := newVerifier().Parse(raw); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifierRejectsWrongAudience(t *testing.T) {
	raw := signToken(t, func(b *jwt.Builder) {
		b.Audience([]string{"some-other-api"})
	})
	if _, err := newVerifier().Parse(raw); err == nil {
		t.Fatal("expected wrong audience to be rejected")
	}
}

func TestVerifierRejectsMissingSubject(t *testing.T) {
	raw := signToken(t, func(b *jwt.Builder) {
		b.Subject("")
	})
	if _, err := newVerifier().Parse(raw); err == nil {
		t.Fatal("expected missing subject to be rejected")
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	mw := Middleware{Verifier: newVerifier()}
	var seenUser string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seenUser != "user-1" {
		t.Fatalf("status=%d user=%q", rec.Code, seenUser)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d", rec.Code)
	}
}
