package weather

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestKeyStoreSetGetDelete(t *testing.T) {
	gokeyring.MockInit()
	k := NewKeyStore()

	if _, err := k.APIKey(); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("APIKey() error = %v, want ErrNoAPIKey", err)
	}
	if k.HasAPIKey() {
		t.Error("HasAPIKey() should be false")
	}

	if err := k.SetAPIKey("  abcdef123456  "); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}
	got, err := k.APIKey()
	if err != nil {
		t.Fatalf("APIKey() error = %v", err)
	}
	if got != "abcdef123456" {
		t.Errorf("APIKey() = %q", got)
	}

	if err := k.DeleteAPIKey(); err != nil {
		t.Fatalf("DeleteAPIKey() error = %v", err)
	}
	if err := k.DeleteAPIKey(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("second DeleteAPIKey() error = %v, want ErrNoAPIKey", err)
	}
}

func TestKeyStoreRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := NewKeyStore().SetAPIKey("   "); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("abcdef123456"); got != "********3456" {
		t.Errorf("MaskKey() = %q", got)
	}
	if got := MaskKey("abc"); got != "***" {
		t.Errorf("MaskKey() = %q", got)
	}
}
