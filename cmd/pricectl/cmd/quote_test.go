package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		raw      string
		quantity int
		price    float64
		markup   float64
		wantErr  bool
	}{
		{raw: "100=45", quantity: 100, price: 45},
		{raw: " 500 = 40,5 ", quantity: 500, price: 40.5},
		{raw: "1000=30@12,5", quantity: 1000, price: 30, markup: 12.5},
		{raw: "100", wantErr: true},
		{raw: "0=10", wantErr: true},
		{raw: "abc=10", wantErr: true},
		{raw: "100=", wantErr: true},
		{raw: "100=10@x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseAnchor(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseAnchor(%q) = %+v, want error", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseAnchor(%q) returned error: %v", tt.raw, err)
		}
		if got.Quantity != tt.quantity || got.Price != tt.price || got.Markup != tt.markup {
			t.Fatalf("parseAnchor(%q) = %+v", tt.raw, got)
		}
	}
}

func TestQuoteCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"quote", "--anchor", "100=45", "--anchor", "500=40", "--at", "300", "--master", "20", "--round", "5"})
	if err := Execute(); err != nil {
		t.Fatalf("quote returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("quote output =\n%s", out.String())
	}
	// 42.5 * 1.2 = 51, rounded to 5
	fields := strings.Fields(lines[1])
	if len(fields) != 3 || fields[0] != "300" || fields[1] != "42.50" || fields[2] != "50.00" {
		t.Fatalf("quote row = %q", lines[1])
	}
}
