package pricing

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBuildKeyIsOrderIndependent(t *testing.T) {
	a := BuildKey("fmt-a4", "mat-135", []string{"fin-mat", "fin-gloss"}, 100)
	b := BuildKey("fmt-a4", "mat-135", []string{"fin-gloss", "fin-mat"}, 100)
	if a != b {
		t.Fatalf("BuildKey not symmetric: %q != %q", a, b)
	}
	if want := "fmt-a4::mat-135::fin-gloss|fin-mat::100"; a != want {
		t.Fatalf("BuildKey = %q, want %q", a, want)
	}
}

func TestVariantKey(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty", nil, NoVariant},
		{"blank ids", []string{" ", ""}, NoVariant},
		{"dedupe", []string{"b", "a", "b"}, "a|b"},
		{"trim", []string{" a "}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VariantKey(tt.ids); got != tt.want {
				t.Fatalf("VariantKey(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	ctx := Context{FormatID: "fmt-a4", MaterialID: "mat-135", VariantIDs: []string{"fin-mat"}}
	k, err := ParseKey(ctx.Key(250))
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if k.Quantity != 250 || k.FormatID != "fmt-a4" || k.MaterialID != "mat-135" || k.Variant != "fin-mat" {
		t.Fatalf("unexpected parsed key: %+v", k)
	}
	if k.String() != ctx.Key(250) {
		t.Fatalf("String() = %q, want %q", k.String(), ctx.Key(250))
	}
	if k.Context().Prefix() != ctx.Prefix() {
		t.Fatalf("Context().Prefix() = %q, want %q", k.Context().Prefix(), ctx.Prefix())
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "a::b::none", "a::b::none::x", "a::b::c::d::1"} {
		if _, err := ParseKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("ParseKey(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"f::m::b|a::100", "f::m::a|b::100"},
		{"f::m::a|b::100", "f::m::a|b::100"},
		{"f::m::::100", "f::m::none::100"},
		{"f::m::b|b::250", "f::m::b::250"},
	}
	for _, tt := range tests {
		got, err := CanonicalKey(tt.key)
		if err != nil {
			t.Fatalf("CanonicalKey(%q) returned error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Fatalf("CanonicalKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
	if _, err := CanonicalKey("f::m::x"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("CanonicalKey(f::m::x) error = %v, want ErrInvalidKey", err)
	}
}

func TestAnchorStoreDecodeCanonicalisesKeys(t *testing.T) {
	var s AnchorStore
	if err := json.Unmarshal([]byte(`{"f::m::b|a::100":{"price":80,"isLocked":true}}`), &s); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	ctx := Context{FormatID: "f", MaterialID: "m", VariantIDs: []string{"b", "a"}}
	if e := s.Get(ctx.Key(100)); !e.IsLocked || e.Price != 80 {
		t.Fatalf("Get(%s) = %+v, keys %v", ctx.Key(100), e, s.Keys())
	}
	if got := s.ActiveAnchors(ctx); len(got) != 1 {
		t.Fatalf("ActiveAnchors = %v, want one", got)
	}

	err := json.Unmarshal([]byte(`{"not-a-key":{"price":1}}`), &s)
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Unmarshal(bad key) error = %v, want ErrInvalidKey", err)
	}
}
