package pricing

import (
	"math"
	"testing"

	"trykkeri-admin/models"
)

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testGroups() []models.AttributeGroup {
	return []models.AttributeGroup{
		{
			ID: "grp-format", Name: "Format", Kind: models.GroupKindFormat,
			Values: []models.AttributeValue{
				{ID: "fmt-a4", Name: "A4", Enabled: true},
				{ID: "fmt-a5", Name: "A5", Enabled: true},
				{ID: "fmt-a3", Name: "A3", Enabled: false},
			},
		},
		{
			ID: "grp-paper", Name: "Papir", Kind: models.GroupKindMaterial,
			Values: []models.AttributeValue{
				{ID: "mat-135", Name: "135g", Enabled: true},
				{ID: "mat-250", Name: "250 g", Enabled: true},
			},
		},
		{
			ID: "grp-finish", Name: "Efterbehandling", Kind: models.GroupKindFinish,
			Values: []models.AttributeValue{
				{ID: "fin-mat", Name: "Mat laminering", Enabled: true},
				{ID: "fin-gloss", Name: "Blank laminering", Enabled: true},
			},
		},
	}
}

func testStructure() PricingStructure {
	return PricingStructure{
		Version:      LayoutVersion,
		VerticalAxis: VerticalAxis{GroupID: "grp-format", Kind: models.GroupKindFormat},
		LayoutRows: []LayoutRow{{
			ID: "row-1",
			Sections: []LayoutSection{
				{ID: "sec-paper", GroupID: "grp-paper", Kind: models.GroupKindMaterial},
			},
		}},
		Quantities: []int{100, 500},
	}
}

func mustReduce(t *testing.T, s State, a Action) State {
	t.Helper()
	next, err := Reduce(s, a)
	if err != nil {
		t.Fatalf("Reduce(%s) returned error: %v", a.ActionType(), err)
	}
	return next
}
