package pricing

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestImportCSVScenario(t *testing.T) {
	input := "Format;Materiale;100;500\nA4;135g;45;40\n"
	res, err := ImportCSV(strings.NewReader(input), testGroups(), NewClassifier(nil))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}
	if len(res.Anchors) != 2 {
		t.Fatalf("len(Anchors) = %d, want 2: %+v", len(res.Anchors), res.Anchors)
	}
	for key, want := range map[string]float64{
		"fmt-a4::mat-135::none::100": 45,
		"fmt-a4::mat-135::none::500": 40,
	} {
		e, ok := res.Anchors[key]
		if !ok {
			t.Fatalf("missing anchor %s", key)
		}
		if !e.IsLocked || e.Price != want {
			t.Fatalf("anchor %s = %+v, want locked %v", key, e, want)
		}
	}
	if len(res.Quantities) != 2 || res.Quantities[0] != 100 || res.Quantities[1] != 500 {
		t.Fatalf("Quantities = %v, want [100 500]", res.Quantities)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestImportCSVCommaSeparatedWithFinish(t *testing.T) {
	input := strings.Join([]string{
		`Størrelse,Papir,Efterbehandling,"1.000",2500`,
		`a5,250 G,Mat laminering,"1.234,50",900`,
		`A4,135g,,80,`,
		`B2,135g,,10,20`,
		``,
	}, "\n")
	res, err := ImportCSV(strings.NewReader(input), testGroups(), NewClassifier(nil))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}

	key := BuildKey("fmt-a5", "mat-250", []string{"fin-mat"}, 1000)
	if e := res.Anchors[key]; !nearlyEqual(e.Price, 1234.5) {
		t.Fatalf("anchor %s = %+v, want 1234.5", key, e)
	}
	if e := res.Anchors[BuildKey("fmt-a4", "mat-135", nil, 1000)]; e.Price != 80 {
		t.Fatalf("A4 anchor = %+v, want 80", e)
	}
	if len(res.Anchors) != 3 {
		t.Fatalf("len(Anchors) = %d, want 3: %+v", len(res.Anchors), res.Anchors)
	}
	if res.Skipped != 1 || len(res.Warnings) == 0 {
		t.Fatalf("unknown format B2 should be skipped with a warning: skipped=%d warnings=%v", res.Skipped, res.Warnings)
	}
}

func TestImportCSVLongFormat(t *testing.T) {
	input := "Format;Materiale;Oplag;Pris\nA4;135g;100;45\nA4;135g;250;42,5\n"
	res, err := ImportCSV(strings.NewReader(input), testGroups(), NewClassifier(nil))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}
	if e := res.Anchors[a4Paper.Key(250)]; e.Price != 42.5 {
		t.Fatalf("anchor at 250 = %+v, want 42.5", e)
	}
	if len(res.Quantities) != 2 {
		t.Fatalf("Quantities = %v, want [100 250]", res.Quantities)
	}
}

func TestImportCSVEmpty(t *testing.T) {
	if _, err := ImportCSV(strings.NewReader(""), testGroups(), NewClassifier(nil)); !errors.Is(err, ErrEmptyCSV) {
		t.Fatalf("ImportCSV(empty) error = %v, want ErrEmptyCSV", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := NewState("prod-1", testStructure())
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 45})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 500, Price: 40.25})
	s = mustReduce(t, s, SetMasterMarkup{Percent: 10})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, s, testGroups(), ExportOptions{}); err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), metaPrefix) {
		t.Fatalf("export does not start with the meta line: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "A4;135g;45;40,25") {
		t.Fatalf("export missing A4 row: %s", buf.String())
	}

	res, err := ImportCSV(&buf, testGroups(), NewClassifier(nil))
	if err != nil {
		t.Fatalf("ImportCSV returned error: %v", err)
	}
	if len(res.Anchors) != 2 || res.Anchors[a4Paper.Key(500)].Price != 40.25 {
		t.Fatalf("round trip anchors = %+v", res.Anchors)
	}
	if res.Structure == nil || res.Structure.Generator == nil || res.Structure.Generator.MasterMarkup != 10 {
		t.Fatalf("round trip lost the structure: %+v", res.Structure)
	}
}

func TestExportFinalPrices(t *testing.T) {
	s := NewState("prod-1", testStructure())
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 100})
	s = mustReduce(t, s, SetMasterMarkup{Percent: 10})

	var buf bytes.Buffer
	if err := ExportCSV(&buf, s, testGroups(), ExportOptions{Mode: ExportFinal, Delimiter: ',', NoMeta: true}); err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Format,Materiale,100,500" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "A4,135g,110,110" {
		t.Fatalf("first row = %q", lines[1])
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"45", 45},
		{"42,5", 42.5},
		{"1.234,50", 1234.5},
		{"1,234.50", 1234.5},
		{"1.000", 1000},
		{"45.5", 45.5},
		{"1 250 kr.", 1250},
		{"99,-", 99},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if err != nil {
			t.Fatalf("ParseNumber(%q) returned error: %v", tt.in, err)
		}
		if !nearlyEqual(got, tt.want) {
			t.Fatalf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseNumber("abc"); err == nil {
		t.Fatalf("ParseNumber(abc) should fail")
	}
}
