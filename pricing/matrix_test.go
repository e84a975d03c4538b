package pricing

import (
	"encoding/json"
	"testing"

	"trykkeri-admin/models"
)

func TestBuildMatrix(t *testing.T) {
	s := NewState("prod-1", testStructure())
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 45})

	rows := BuildMatrix(s, testGroups())
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	first := rows[0]
	if first.FormatName != "A4" || first.MaterialName != "135g" {
		t.Fatalf("row names = %q/%q", first.FormatName, first.MaterialName)
	}
	if len(first.Points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(first.Points))
	}
	if p := first.Points[0]; p.Source != SourceAnchor || p.Final != 45 {
		t.Fatalf("point at 100 = %+v", p)
	}
	// a single anchor holds its price for every quantity
	if p := first.Points[1]; p.Source != SourceInterpolated || p.Final != 45 {
		t.Fatalf("point at 500 = %+v", p)
	}
	if p := rows[1].Points[0]; p.Source != SourceNone || p.Final != 0 {
		t.Fatalf("row without anchors = %+v", p)
	}
}

func TestPublishRowsOnlyPricedActiveQuantities(t *testing.T) {
	s := NewState("prod-1", testStructure())
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 45})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 2000, Price: 10})

	rows, err := PublishRows(s, testGroups())
	if err != nil {
		t.Fatalf("PublishRows returned error: %v", err)
	}
	// 2000 is not in the quantity set; both 100 and 500 are priced from the curve
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2: %+v", len(rows), rows)
	}
	for _, r := range rows {
		if r.ProductID != "prod-1" || r.VariantName != "fmt-a4::mat-135" || r.VariantValue != NoVariant {
			t.Fatalf("unexpected row: %+v", r)
		}
		if r.Quantity == 2000 {
			t.Fatalf("orphan quantity published")
		}
	}

	var extra PublishedExtra
	if err := json.Unmarshal(rows[0].ExtraData, &extra); err != nil {
		t.Fatalf("extra_data is not JSON: %v", err)
	}
	if !extra.IsLocked || extra.BasePrice != 45 || extra.Source != SourceAnchor {
		t.Fatalf("extra = %+v", extra)
	}
}

func TestAnchorsFromPublishedRestoresLockedCells(t *testing.T) {
	s := NewState("prod-1", testStructure())
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 45})
	s = mustReduce(t, s, SetAnchorMarkup{Context: a4Paper, Quantity: 100, Markup: 10})

	rows, err := PublishRows(s, testGroups())
	if err != nil {
		t.Fatalf("PublishRows returned error: %v", err)
	}
	entries, quantities := s.AnchorsFromPublished(rows)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1: %+v", len(entries), entries)
	}
	e := entries[a4Paper.Key(100)]
	if !e.IsLocked || e.Price != 45 || e.MarkupPercent != 10 {
		t.Fatalf("restored entry = %+v", e)
	}
	if len(quantities) != 2 {
		t.Fatalf("quantities = %v, want [100 500]", quantities)
	}
}

func TestAnchorsFromPublishedWithoutExtra(t *testing.T) {
	rows := []models.GeneratedPrice{
		{VariantName: "fmt-a4::mat-135", VariantValue: "fin-mat", Quantity: 250, Price: 80},
		{VariantName: "broken", Quantity: 100, Price: 10},
	}
	entries, _ := NewState("prod-1", testStructure()).AnchorsFromPublished(rows)
	key := BuildKey("fmt-a4", "mat-135", []string{"fin-mat"}, 250)
	if e, ok := entries[key]; !ok || e.Price != 80 || !e.IsLocked {
		t.Fatalf("entries = %+v, want locked 80 at %s", entries, key)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
}

func TestPublishIgnoresRemovedQuantityAnchors(t *testing.T) {
	structure := testStructure()
	structure.Quantities = []int{100, 200, 500}
	s := NewState("prod-1", structure)
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 1000})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 500, Price: 100})
	s = mustReduce(t, s, RemoveQuantity{Quantity: 100})

	rows, err := PublishRows(s, testGroups())
	if err != nil {
		t.Fatalf("PublishRows returned error: %v", err)
	}
	published := make(map[int]float64)
	for _, r := range rows {
		published[r.Quantity] = r.Price
	}
	if len(published) != 2 || published[200] != 100 || published[500] != 100 {
		t.Fatalf("published = %v, want 200 and 500 at 100", published)
	}

	reloaded := NewState("prod-1", s.PersistedStructure())
	entries, _ := reloaded.AnchorsFromPublished(rows)
	reloaded.Anchors = NewAnchorStore(entries)
	again, err := PublishRows(reloaded, testGroups())
	if err != nil {
		t.Fatalf("PublishRows after reload returned error: %v", err)
	}
	if len(again) != len(rows) {
		t.Fatalf("len(rows) after reload = %d, want %d", len(again), len(rows))
	}
	for i := range rows {
		if again[i].Quantity != rows[i].Quantity || again[i].Price != rows[i].Price {
			t.Fatalf("row %d after reload = %d@%v, want %d@%v", i, again[i].Quantity, again[i].Price, rows[i].Quantity, rows[i].Price)
		}
	}
}

func TestAnchorsFromPublishedWithoutExtraRemovesMarkups(t *testing.T) {
	structure := testStructure()
	structure.Generator = &GeneratorSettings{
		ProductMarkups: ProductMarkups{"fmt-a4::mat-135": 20},
		MasterMarkup:   10,
		Rounding:       RoundToOne,
	}
	s := NewState("prod-1", structure)
	rows := []models.GeneratedPrice{
		{VariantName: "fmt-a4::mat-135", VariantValue: NoVariant, Quantity: 100, Price: 132},
	}

	entries, _ := s.AnchorsFromPublished(rows)
	if e := entries[a4Paper.Key(100)]; !nearlyEqual(e.Price, 100) {
		t.Fatalf("restored base = %v, want 100", e.Price)
	}
	s.Anchors = NewAnchorStore(entries)
	if p := s.PriceAt(a4Paper, 100); p.Final != 132 {
		t.Fatalf("PriceAt(100).Final after reload = %v, want 132", p.Final)
	}
}
