package utils

import (
	"testing"

	"github.com/shopspring/decimal"

	"trykkeri-admin/models"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		in   string
		kind models.AssetKind
		name string
		ok   bool
	}{
		{"finish_soft-touch.png", models.AssetKindFinish, "soft touch", true},
		{"Material_Silk_135g.JPG", models.AssetKindMaterial, "Silk 135g", true},
		{"icon_pdf.webp", models.AssetKindIcon, "pdf", true},
		{"finish_soft-touch.gif", "", "", false},
		{"softtouch.png", "", "", false},
		{"banner_big.png", "", "", false},
		{"finish_--.png", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFileName(tt.in)
			if !tt.ok {
				if err == nil {
					t.Fatalf("ParseFileName(%q) = %+v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFileName(%q) returned error: %v", tt.in, err)
			}
			if got.Kind != tt.kind || got.Name != tt.name {
				t.Fatalf("ParseFileName(%q) = %+v, want %s %q", tt.in, got, tt.kind, tt.name)
			}
		})
	}
}

func TestFormatDKK(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00 kr."},
		{"45", "45,00 kr."},
		{"1234.5", "1.234,50 kr."},
		{"1234567.891", "1.234.567,89 kr."},
		{"-99.999", "-100,00 kr."},
		{"-0.001", "0,00 kr."},
	}
	for _, tt := range tests {
		if got := FormatDKK(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("FormatDKK(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatAmount(decimal.RequireFromString("2500")); got != "2.500,00" {
		t.Fatalf("FormatAmount = %q", got)
	}
}
