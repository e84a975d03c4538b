package pricing

import (
	"encoding/json"
	"errors"
	"testing"
)

var a4Paper = Context{FormatID: "fmt-a4", MaterialID: "mat-135"}

func curveState(t *testing.T) State {
	t.Helper()
	s := NewState("prod-1", PricingStructure{Quantities: []int{500, 100, 200, 100}})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 100})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 500, Price: 300})
	return s
}

func TestNewStateNormalizesQuantities(t *testing.T) {
	s := NewState("prod-1", PricingStructure{Quantities: []int{500, 100, -1, 100}})
	if got := s.Structure.Quantities; len(got) != 2 || got[0] != 100 || got[1] != 500 {
		t.Fatalf("Quantities = %v, want [100 500]", got)
	}
	if s.Rounding != RoundToOne {
		t.Fatalf("Rounding = %d, want 1", s.Rounding)
	}
}

func TestNewStateReadsGeneratorSettings(t *testing.T) {
	s := NewState("prod-1", PricingStructure{Generator: &GeneratorSettings{
		ProductMarkups: ProductMarkups{"fmt-a4::mat-135": 15},
		MasterMarkup:   5,
		Rounding:       RoundToTen,
	}})
	if s.MasterMarkup != 5 || s.Rounding != RoundToTen || s.ProductMarkups["fmt-a4::mat-135"] != 15 {
		t.Fatalf("generator settings not applied: %+v", s)
	}
	persisted := s.PersistedStructure()
	if persisted.Generator == nil || persisted.Generator.Rounding != RoundToTen {
		t.Fatalf("PersistedStructure lost generator: %+v", persisted.Generator)
	}
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	before := curveState(t)
	_ = mustReduce(t, before, SetAnchorPrice{Context: a4Paper, Quantity: 200, Price: 999})
	_ = mustReduce(t, before, SetProductMarkup{FormatID: "fmt-a4", MaterialID: "mat-135", Percent: 30})
	_ = mustReduce(t, before, AddQuantity{Quantity: 1000})

	if _, ok := before.Anchors.Lookup(a4Paper.Key(200)); ok {
		t.Fatalf("input anchors were modified")
	}
	if len(before.ProductMarkups) != 0 {
		t.Fatalf("input product markups were modified: %v", before.ProductMarkups)
	}
	if before.Structure.HasQuantity(1000) {
		t.Fatalf("input quantities were modified")
	}
}

func TestSetAnchorPriceLocksAndClears(t *testing.T) {
	s := curveState(t)
	e := s.GetAnchor(a4Paper, 100)
	if !e.IsLocked || e.Price != 100 {
		t.Fatalf("anchor at 100 = %+v, want locked at 100", e)
	}

	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 0})
	e = s.GetAnchor(a4Paper, 100)
	if e.IsLocked || e.Price != 0 {
		t.Fatalf("anchor at 100 after clear = %+v, want unlocked", e)
	}
}

func TestRowMarkupPromotesInterpolatedRow(t *testing.T) {
	s := curveState(t)
	// 100 -> 100, 500 -> 300, so 200 sits at 150 on the curve
	s = mustReduce(t, s, SetRowMarkup{Context: a4Paper, Quantity: 200, Markup: 10})

	e := s.GetAnchor(a4Paper, 200)
	if !e.IsLocked || !e.ExcludeFromCurve || !nearlyEqual(e.Price, 150) || e.MarkupPercent != 10 {
		t.Fatalf("promoted entry = %+v, want locked manual 150 with 10%%", e)
	}
	if got := len(s.Anchors.ActiveAnchors(a4Paper)); got != 2 {
		t.Fatalf("promoted row joined the curve: %d active anchors", got)
	}
	if p := s.PriceAt(a4Paper, 200); p.Source != SourceManual || p.Final != 165 {
		t.Fatalf("PriceAt(200) = %+v, want manual 165", p)
	}

	s = mustReduce(t, s, SetRowMarkup{Context: a4Paper, Quantity: 200, Markup: 0})
	e = s.GetAnchor(a4Paper, 200)
	if e.IsLocked || e.ExcludeFromCurve || e.Price != 0 {
		t.Fatalf("reverted entry = %+v, want cleared", e)
	}
	if p := s.PriceAt(a4Paper, 200); p.Source != SourceInterpolated || p.Final != 150 {
		t.Fatalf("PriceAt(200) after revert = %+v, want interpolated 150", p)
	}
}

func TestRowMarkupOnAnchorKeepsItOnCurve(t *testing.T) {
	s := curveState(t)
	s = mustReduce(t, s, SetRowMarkup{Context: a4Paper, Quantity: 100, Markup: 20})
	e := s.GetAnchor(a4Paper, 100)
	if !e.IsLocked || e.ExcludeFromCurve || e.MarkupPercent != 20 || e.Price != 100 {
		t.Fatalf("anchor after slider = %+v", e)
	}
}

func TestRowMarkupZeroOnInterpolatedRowIsNoop(t *testing.T) {
	s := curveState(t)
	next := mustReduce(t, s, SetRowMarkup{Context: a4Paper, Quantity: 200, Markup: 0})
	if _, ok := next.Anchors.Lookup(a4Paper.Key(200)); ok {
		t.Fatalf("zero slider created an entry")
	}
}

func TestSetLockCapturesInterpolatedPrice(t *testing.T) {
	s := curveState(t)
	s = mustReduce(t, s, SetLock{Context: a4Paper, Quantity: 200, Locked: true})
	e := s.GetAnchor(a4Paper, 200)
	if !e.IsLocked || !nearlyEqual(e.Price, 150) {
		t.Fatalf("locked entry = %+v, want price 150", e)
	}

	s = mustReduce(t, s, SetExcludeFromCurve{Context: a4Paper, Quantity: 200, Exclude: true})
	s = mustReduce(t, s, SetLock{Context: a4Paper, Quantity: 200, Locked: false})
	e = s.GetAnchor(a4Paper, 200)
	if e.IsLocked || e.ExcludeFromCurve {
		t.Fatalf("unlocked entry = %+v, want exclude cleared", e)
	}
}

func TestQuantityActions(t *testing.T) {
	s := curveState(t)
	s = mustReduce(t, s, AddQuantity{Quantity: 1000})
	s = mustReduce(t, s, AddQuantity{Quantity: 1000})
	if got := s.Structure.Quantities; len(got) != 4 || got[3] != 1000 {
		t.Fatalf("Quantities = %v", got)
	}
	if _, err := Reduce(s, AddQuantity{Quantity: 0}); err == nil {
		t.Fatalf("AddQuantity(0) should fail")
	}

	s = mustReduce(t, s, RemoveQuantity{Quantity: 100})
	if s.Structure.HasQuantity(100) {
		t.Fatalf("quantity 100 still present")
	}
	if _, ok := s.Anchors.Lookup(a4Paper.Key(100)); !ok {
		t.Fatalf("anchor of removed quantity was dropped")
	}
}

func TestRemovedQuantityLeavesCurve(t *testing.T) {
	s := NewState("prod-1", PricingStructure{Quantities: []int{100, 200, 500}})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 1000})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 500, Price: 100})
	s = mustReduce(t, s, RemoveQuantity{Quantity: 100})

	if p := s.PriceAt(a4Paper, 200); p.Source != SourceInterpolated || p.Final != 100 {
		t.Fatalf("PriceAt(200) = %+v, want interpolated 100 from the anchor at 500 only", p)
	}

	s = mustReduce(t, s, SetLock{Context: a4Paper, Quantity: 200, Locked: true})
	if e := s.GetAnchor(a4Paper, 200); !nearlyEqual(e.Price, 100) {
		t.Fatalf("locked entry at 200 = %+v, want price 100", e)
	}

	s = mustReduce(t, s, AddQuantity{Quantity: 100})
	s = mustReduce(t, s, SetLock{Context: a4Paper, Quantity: 200, Locked: false})
	if p := s.PriceAt(a4Paper, 200); p.Final != 775 {
		t.Fatalf("PriceAt(200) after restoring 100 = %+v, want 775", p)
	}
}

func TestRowMarkupIgnoresRemovedQuantity(t *testing.T) {
	s := NewState("prod-1", PricingStructure{Quantities: []int{100, 200, 500}})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 100, Price: 1000})
	s = mustReduce(t, s, SetAnchorPrice{Context: a4Paper, Quantity: 500, Price: 100})
	s = mustReduce(t, s, RemoveQuantity{Quantity: 100})
	s = mustReduce(t, s, SetRowMarkup{Context: a4Paper, Quantity: 200, Markup: 10})

	if e := s.GetAnchor(a4Paper, 200); !nearlyEqual(e.Price, 100) || !e.ExcludeFromCurve {
		t.Fatalf("promoted entry = %+v, want manual base 100", e)
	}
}

func TestMarkupActions(t *testing.T) {
	s := curveState(t)
	s = mustReduce(t, s, SetProductMarkup{FormatID: "fmt-a4", MaterialID: "mat-135", Percent: 20})
	s = mustReduce(t, s, SetAnchorMarkup{Context: a4Paper, Quantity: 100, Markup: 10})
	s = mustReduce(t, s, SetMasterMarkup{Percent: 0})

	if p := s.PriceAt(a4Paper, 100); p.Final != 132 {
		t.Fatalf("PriceAt(100).Final = %v, want 132", p.Final)
	}

	s = mustReduce(t, s, SetRounding{Unit: 5})
	if p := s.PriceAt(a4Paper, 100); p.Final != 130 {
		t.Fatalf("PriceAt(100).Final rounded to 5 = %v, want 130", p.Final)
	}
	if _, err := Reduce(s, SetRounding{Unit: 7}); err == nil {
		t.Fatalf("SetRounding(7) should fail")
	}

	s = mustReduce(t, s, SetProductMarkup{FormatID: "fmt-a4", MaterialID: "mat-135", Percent: 0})
	if len(s.ProductMarkups) != 0 {
		t.Fatalf("zero product markup not removed: %v", s.ProductMarkups)
	}
}

func TestProductMarkupVariantOrder(t *testing.T) {
	ctx := Context{FormatID: "f", MaterialID: "m", VariantIDs: []string{"a", "b"}}
	s := NewState("prod-1", PricingStructure{Quantities: []int{100}})
	s = mustReduce(t, s, SetAnchorPrice{Context: ctx, Quantity: 100, Price: 100})
	s = mustReduce(t, s, SetProductMarkup{FormatID: "f", MaterialID: "m", Variant: "b|a", Percent: 50})

	if got := s.ProductMarkups.For(ctx); got != 50 {
		t.Fatalf("For(a|b) = %v, want 50 (markups %v)", got, s.ProductMarkups)
	}
	if p := s.PriceAt(ctx, 100); p.Final != 150 {
		t.Fatalf("PriceAt(100).Final = %v, want 150", p.Final)
	}

	s = mustReduce(t, s, SetProductMarkup{FormatID: "f", MaterialID: "m", Variant: "a|b", Percent: 0})
	if len(s.ProductMarkups) != 0 {
		t.Fatalf("clearing a|b left %v", s.ProductMarkups)
	}
}

func TestProductMarkupsDecodeSortsVariant(t *testing.T) {
	var pm ProductMarkups
	if err := json.Unmarshal([]byte(`{"f::m::b|a":50,"f::m":10}`), &pm); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if pm["f::m::a|b"] != 50 || pm["f::m"] != 10 {
		t.Fatalf("ProductMarkups = %v", pm)
	}
}

func TestApplyImportCanonicalisesKeys(t *testing.T) {
	ctx := Context{FormatID: "f", MaterialID: "m", VariantIDs: []string{"a", "b"}}
	s := NewState("prod-1", PricingStructure{Quantities: []int{100}})

	a, err := DecodeAction([]byte(`{"type":"apply_import","anchors":{"f::m::b|a::100":{"price":80,"isLocked":true}}}`))
	if err != nil {
		t.Fatalf("DecodeAction returned error: %v", err)
	}
	s = mustReduce(t, s, a)
	if e := s.GetAnchor(ctx, 100); !e.IsLocked || e.Price != 80 {
		t.Fatalf("GetAnchor(a|b, 100) = %+v, want locked 80 (keys %v)", e, s.Anchors.Keys())
	}
	if p := s.PriceAt(ctx, 100); p.Source != SourceAnchor || p.Final != 80 {
		t.Fatalf("PriceAt(100) = %+v, want anchor 80", p)
	}

	bad := ApplyImport{Anchors: map[string]AnchorEntry{"f::m::100": {Price: 1, IsLocked: true}}}
	if _, err := Reduce(s, bad); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Reduce(malformed key) error = %v, want ErrInvalidKey", err)
	}
}

func TestApplyImportMergesOrReplaces(t *testing.T) {
	s := curveState(t)
	imported := map[string]AnchorEntry{a4Paper.Key(1000): {Price: 500, IsLocked: true}}

	merged := mustReduce(t, s, ApplyImport{Anchors: imported, Quantities: []int{1000}})
	if merged.Anchors.Len() != 3 || !merged.Structure.HasQuantity(1000) {
		t.Fatalf("merge result: %d anchors, quantities %v", merged.Anchors.Len(), merged.Structure.Quantities)
	}

	replaced := mustReduce(t, s, ApplyImport{Anchors: imported, Replace: true})
	if replaced.Anchors.Len() != 1 {
		t.Fatalf("replace kept %d anchors, want 1", replaced.Anchors.Len())
	}
}

func TestDecodeAction(t *testing.T) {
	a, err := DecodeAction([]byte(`{"type":"set_row_markup","context":{"formatId":"fmt-a4","materialId":"mat-135"},"quantity":200,"markup":12.5}`))
	if err != nil {
		t.Fatalf("DecodeAction returned error: %v", err)
	}
	act, ok := a.(SetRowMarkup)
	if !ok {
		t.Fatalf("DecodeAction returned %T, want SetRowMarkup", a)
	}
	if act.Quantity != 200 || act.Markup != 12.5 || act.Context.FormatID != "fmt-a4" {
		t.Fatalf("unexpected action: %+v", act)
	}

	if _, err := DecodeAction([]byte(`{"type":"explode"}`)); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("DecodeAction(explode) error = %v, want ErrUnknownAction", err)
	}
	if _, err := DecodeAction([]byte(`not json`)); err == nil {
		t.Fatalf("DecodeAction(not json) should fail")
	}
}
