package cursor

import (
	"encoding/base64"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind string
		id   int64
	}{
		{"vessel", "vessel", 1},
		{"cargo", "cargo_item", 42},
		{"large id", "vessel", 9007199254740993},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := Encode(tt.kind, tt.id)

			kind, id, err := Decode(token)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, kind)
			}
			if id != tt.id {
				t.Errorf("expected id %d, got %d", tt.id, id)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "not!!base64"},
		{"no separators", base64.RawURLEncoding.EncodeToString([]byte("garbage"))},
		{"non-numeric id", base64.RawURLEncoding.EncodeToString([]byte("vessel#abc#00000000"))},
		{"bad checksum", base64.RawURLEncoding.EncodeToString([]byte("vessel#1#deadbeef"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.token); err == nil {
				t.Errorf("expected error for token %q", tt.token)
			}
		})
	}
}

func TestDecode_ChecksumBindsKind(t *testing.T) {
	// A token's checksum covers the kind, so swapping the kind inside a
	// decoded token must not validate.
	token := Encode("vessel", 7)
	raw, _ := base64.RawURLEncoding.DecodeString(token)
	tampered := base64.RawURLEncoding.EncodeToString(
		append([]byte("cargo_item"), raw[len("vessel"):]...))

	if _, _, err := Decode(tampered); err == nil {
		t.Error("expected tampered token to fail checksum")
	}
}
