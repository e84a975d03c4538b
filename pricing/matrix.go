package pricing

import (
	"encoding/json"
	"strings"

	"trykkeri-admin/models"
)

// PriceSource tells where a cell's base price came from
type PriceSource string

const (
	SourceAnchor       PriceSource = "anchor"
	SourceManual       PriceSource = "manual"
	SourceInterpolated PriceSource = "interpolated"
	SourceNone         PriceSource = "none"
)

// PricePoint is one computed cell of the matrix
type PricePoint struct {
	Quantity         int         `json:"quantity"`
	Base             float64     `json:"base"`
	LocalMarkup      float64     `json:"localMarkup"`
	ProductMarkup    float64     `json:"productMarkup"`
	MasterMarkup     float64     `json:"masterMarkup"`
	Final            float64     `json:"final"`
	Source           PriceSource `json:"source"`
	IsLocked         bool        `json:"isLocked"`
	ExcludeFromCurve bool        `json:"excludeFromCurve"`
}

// PriceAt computes the cell of a context at any quantity, including ad hoc ones outside the set
func (s State) PriceAt(ctx Context, quantity int) PricePoint {
	e := s.GetAnchor(ctx, quantity)
	p := PricePoint{
		Quantity:         quantity,
		ProductMarkup:    s.ProductMarkups.For(ctx),
		MasterMarkup:     s.MasterMarkup,
		IsLocked:         e.IsLocked,
		ExcludeFromCurve: e.ExcludeFromCurve,
		Source:           SourceNone,
	}

	if e.IsLocked && e.Price > 0 {
		p.Base = e.Price
		p.LocalMarkup = e.MarkupPercent
		p.Source = SourceAnchor
		if e.ExcludeFromCurve {
			p.Source = SourceManual
		}
	} else {
		anchors := s.ActiveAnchors(ctx)
		if len(anchors) == 0 {
			return p
		}
		p.Base = Interpolate(quantity, anchors)
		p.Source = SourceInterpolated
	}

	p.Final = FinalPrice(p.Base, p.LocalMarkup, p.ProductMarkup, p.MasterMarkup, s.Rounding)
	return p
}

// MatrixRow is one context of the matrix with a cell per active quantity
type MatrixRow struct {
	Context      Context      `json:"context"`
	Key          string       `json:"key"`
	FormatName   string       `json:"formatName"`
	MaterialName string       `json:"materialName"`
	VariantNames []string     `json:"variantNames,omitempty"`
	Points       []PricePoint `json:"points"`
}

// BuildMatrix computes every row and cell described by the state's structure
func BuildMatrix(s State, groups []models.AttributeGroup) []MatrixRow {
	names := valueNames(groups)
	contexts := s.Structure.Contexts(groups)
	rows := make([]MatrixRow, 0, len(contexts))
	for _, ctx := range contexts {
		row := MatrixRow{
			Context:      ctx,
			Key:          ctx.Prefix(),
			FormatName:   names.name(ctx.FormatID),
			MaterialName: names.name(ctx.MaterialID),
			Points:       make([]PricePoint, 0, len(s.Structure.Quantities)),
		}
		for _, id := range ctx.VariantIDs {
			row.VariantNames = append(row.VariantNames, names.name(id))
		}
		for _, q := range s.Structure.Quantities {
			row.Points = append(row.Points, s.PriceAt(ctx, q))
		}
		rows = append(rows, row)
	}
	return rows
}

type nameIndex map[string]string

func valueNames(groups []models.AttributeGroup) nameIndex {
	out := nameIndex{}
	for _, g := range groups {
		for _, v := range g.Values {
			out[v.ID] = v.Name
		}
	}
	return out
}

func (n nameIndex) name(id string) string {
	if v, ok := n[id]; ok {
		return v
	}
	return id
}

// PublishedExtra is stored in extra_data of each published row
type PublishedExtra struct {
	FormatID         string      `json:"formatId"`
	MaterialID       string      `json:"materialId"`
	VariantIDs       []string    `json:"variantIds,omitempty"`
	BasePrice        float64     `json:"basePrice"`
	MarkupPercent    float64     `json:"markupPercent"`
	IsLocked         bool        `json:"isLocked"`
	ExcludeFromCurve bool        `json:"excludeFromCurve"`
	Source           PriceSource `json:"source"`
}

// VariantName is the variant_name column of a published row
func VariantName(ctx Context) string {
	return ctx.FormatID + keySep + ctx.MaterialID
}

// PublishRows flattens the matrix into rows for every active quantity with a positive price
func PublishRows(s State, groups []models.AttributeGroup) ([]models.GeneratedPrice, error) {
	var rows []models.GeneratedPrice
	for _, ctx := range s.Structure.Contexts(groups) {
		for _, q := range s.Structure.Quantities {
			p := s.PriceAt(ctx, q)
			if p.Final <= 0 {
				continue
			}
			extra, err := json.Marshal(PublishedExtra{
				FormatID:         ctx.FormatID,
				MaterialID:       ctx.MaterialID,
				VariantIDs:       SplitVariantKey(ctx.Variant()),
				BasePrice:        p.Base,
				MarkupPercent:    p.LocalMarkup,
				IsLocked:         p.IsLocked && p.Source != SourceInterpolated,
				ExcludeFromCurve: p.ExcludeFromCurve,
				Source:           p.Source,
			})
			if err != nil {
				return nil, err
			}
			rows = append(rows, models.GeneratedPrice{
				ProductID:    s.ProductID,
				VariantName:  VariantName(ctx),
				VariantValue: ctx.Variant(),
				Quantity:     q,
				Price:        p.Final,
				ExtraData:    extra,
			})
		}
	}
	return rows, nil
}

// AnchorsFromPublished rebuilds the anchor store of s from published rows. Rows carrying
// extra_data restore their locked cells. Rows without it are parsed from variant_name and
// variant_value and taken as locked anchors at their published price with the product and
// master markups of s taken back out.
func (s State) AnchorsFromPublished(rows []models.GeneratedPrice) (map[string]AnchorEntry, []int) {
	entries := make(map[string]AnchorEntry)
	var quantities []int
	for _, row := range rows {
		quantities = append(quantities, row.Quantity)

		var extra PublishedExtra
		if len(row.ExtraData) > 0 && json.Unmarshal(row.ExtraData, &extra) == nil && extra.FormatID != "" {
			if !extra.IsLocked {
				continue
			}
			key := BuildKey(extra.FormatID, extra.MaterialID, extra.VariantIDs, row.Quantity)
			entries[key] = AnchorEntry{
				Price:            extra.BasePrice,
				MarkupPercent:    extra.MarkupPercent,
				IsLocked:         true,
				ExcludeFromCurve: extra.ExcludeFromCurve,
			}
			continue
		}

		formatID, materialID, ok := strings.Cut(row.VariantName, keySep)
		if !ok || row.Price <= 0 {
			continue
		}
		ctx := Context{FormatID: formatID, MaterialID: materialID, VariantIDs: SplitVariantKey(row.VariantValue)}
		base := baseFromFinal(row.Price, s.ProductMarkups.For(ctx), s.MasterMarkup)
		entries[ctx.Key(row.Quantity)] = AnchorEntry{Price: base, IsLocked: true}
	}
	return entries, NormalizeQuantities(quantities)
}
