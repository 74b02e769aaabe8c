package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","count":3}`))
	var p samplePayload
	if err := DecodeAndValidate(r, &p); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":-1}`))
	p = samplePayload{}
	err := DecodeAndValidate(r, &p)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION" {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := appErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("details type %T", appErr.Details)
	}
	if details["Name"] != "required" || details["Count"] != "gte" {
		t.Fatalf("unexpected details: %v", details)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	if err := DecodeAndValidate(r, &p); err == nil {
		t.Fatal("expected decode error for malformed body")
	}
}

func TestFormatMinorUnits(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		2400:  "24.00",
		24050: "240.50",
		-150:  "-1.50",
	}
	for amount, want := range cases {
		if got := FormatMinorUnits(amount); got != want {
			t.Fatalf("FormatMinorUnits(%d) = %q, want %q", amount, got, want)
		}
	}
}
