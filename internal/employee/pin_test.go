package employee

import (
	"testing"

	"github.com/alexedwards/argon2id"
)

func TestPINHashRoundTrip(t *testing.T) {
	hash, err := argon2id.CreateHash("4321", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	if hash == "4321" {
		t.Fatal("PIN must not be stored in the clear")
	}

	match, err := argon2id.ComparePasswordAndHash("4321", hash)
	if err != nil {
		t.Fatalf("ComparePasswordAndHash: %v", err)
	}
	if !match {
		t.Fatal("correct PIN should match its hash")
	}

	match, err = argon2id.ComparePasswordAndHash("0000", hash)
	if err != nil {
		t.Fatalf("ComparePasswordAndHash: %v", err)
	}
	if match {
		t.Fatal("wrong PIN must not match")
	}
}
