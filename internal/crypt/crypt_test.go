package crypt

import (
	"bytes"
	"errors"
	"testing"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	plaintext := []byte(`{"manifest":{"version":1}}`)
	sealed, err := Seal(testKey(), plaintext)
	if err != nil {
		t.Fatal(err)
	}

	opened, err := Open(testKey(), sealed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, opened) {
		t.Errorf("got %s, want %s", opened, plaintext)
	}
}

func TestSealRejectsBadKey(t *testing.T) {
	t.Parallel()

	if _, err := Seal([]byte("short"), []byte("data")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("got %v, want ErrInvalidKey", err)
	}
	if _, err := Seal(nil, []byte("data")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("got %v, want ErrInvalidKey", err)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	sealed, err := Seal(testKey(), []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	wrong := testKey()
	wrong[0] ^= 0xff
	if _, err := Open(wrong, sealed); err == nil {
		t.Error("opening with the wrong key must fail")
	}
}

func TestSealNonceUnique(t *testing.T) {
	t.Parallel()

	a, err := Seal(testKey(), []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Seal(testKey(), []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two seals of the same payload must not produce identical envelopes")
	}

	// both still open to the same plaintext
	for _, sealed := range [][]byte{a, b} {
		pt, err := Open(testKey(), sealed)
		if err != nil {
			t.Fatal(err)
		}
		if string(pt) != "payload" {
			t.Errorf("got %s", pt)
		}
	}
}
