package wire

import (
	"math/rand"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		tok := RandomToken(rng)
		decoded, err := DecodeToken(tok.String())
		if err != nil {
			t.Fatalf("unexpected error decoding %q: %v", tok.String(), err)
		}
		if decoded != tok {
			t.Fatalf("round trip mismatch: %v != %v", decoded, tok)
		}
	}
}

func TestTokenBadLength(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tok := RandomToken(rng)
	short := tok.String()
	// Drop the last symbol's worth of runes by re-slicing on rune boundaries.
	runes := []rune(short)
	if _, err := DecodeToken(string(runes[:len(runes)-1])); err != ErrBadTokenLength {
		t.Fatalf("expected ErrBadTokenLength, got %v", err)
	}
	if _, err := DecodeToken(short + short); err != ErrBadTokenLength {
		t.Fatalf("expected ErrBadTokenLength, got %v", err)
	}
}

func TestTokenBadChar(t *testing.T) {
	if _, err := DecodeToken("ABCDEFGHIJ"); err != ErrBadTokenChar {
		t.Fatalf("expected ErrBadTokenChar, got %v", err)
	}
}
