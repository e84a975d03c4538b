package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for an action type the reducer does not handle
var ErrUnknownAction = errors.New("unknown pricing action")

// State is the whole editing state of one product's price matrix
type State struct {
	ProductID      string           `json:"productId"`
	Structure      PricingStructure `json:"structure"`
	Anchors        AnchorStore      `json:"anchors"`
	ProductMarkups ProductMarkups   `json:"productMarkups"`
	MasterMarkup   float64          `json:"masterMarkup"`
	Rounding       RoundingUnit     `json:"rounding"`
}

// NewState builds an empty state from a persisted structure and its generator settings
func NewState(productID string, structure PricingStructure) State {
	s := State{
		ProductID:      productID,
		Structure:      structure,
		Anchors:        NewAnchorStore(nil),
		ProductMarkups: ProductMarkups{},
		Rounding:       RoundToOne,
	}
	if s.Structure.Version == "" {
		s.Structure.Version = LayoutVersion
	}
	s.Structure.Quantities = NormalizeQuantities(s.Structure.Quantities)
	if g := structure.Generator; g != nil {
		if g.ProductMarkups != nil {
			s.ProductMarkups = g.ProductMarkups.clone()
		}
		s.MasterMarkup = g.MasterMarkup
		if u, err := ParseRoundingUnit(int(g.Rounding)); err == nil {
			s.Rounding = u
		}
	}
	return s
}

// Generator returns the markup settings to persist with the layout
func (s State) Generator() GeneratorSettings {
	return GeneratorSettings{
		ProductMarkups: s.ProductMarkups.clone(),
		MasterMarkup:   s.MasterMarkup,
		Rounding:       s.Rounding,
	}
}

// PersistedStructure returns the structure with the current generator settings attached
func (s State) PersistedStructure() PricingStructure {
	out := s.Structure
	out.Version = LayoutVersion
	g := s.Generator()
	out.Generator = &g
	return out
}

// GetAnchor returns the entry of a context at a quantity
func (s State) GetAnchor(ctx Context, quantity int) AnchorEntry {
	return s.Anchors.Get(ctx.Key(quantity))
}

// ActiveAnchors returns the control points of a context. Entries at quantities outside the
// active set are kept in the store but never shape the curve.
func (s State) ActiveAnchors(ctx Context) []Anchor {
	all := s.Anchors.ActiveAnchors(ctx)
	out := all[:0]
	for _, a := range all {
		if s.Structure.HasQuantity(a.Quantity) {
			out = append(out, a)
		}
	}
	return out
}

// SetAnchor applies a partial update to the entry of a context at a quantity
func (s State) SetAnchor(ctx Context, quantity int, patch AnchorPatch) State {
	s.Anchors = s.Anchors.Set(ctx.Key(quantity), patch)
	return s
}

// Action is one edit of the state. The set of actions is closed: see DecodeAction.
type Action interface {
	ActionType() string
}

// SetAnchorPrice fixes a price at a quantity and locks it. A price of zero or less clears it.
type SetAnchorPrice struct {
	Context  Context `json:"context"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// SetAnchorMarkup changes only the local markup of a cell
type SetAnchorMarkup struct {
	Context  Context `json:"context"`
	Quantity int     `json:"quantity"`
	Markup   float64 `json:"markup"`
}

// SetRowMarkup is the per-row markup slider
type SetRowMarkup struct {
	Context  Context `json:"context"`
	Quantity int     `json:"quantity"`
	Markup   float64 `json:"markup"`
}

// SetLock locks or unlocks a cell
type SetLock struct {
	Context  Context `json:"context"`
	Quantity int     `json:"quantity"`
	Locked   bool    `json:"locked"`
}

// SetExcludeFromCurve keeps a locked cell out of interpolation
type SetExcludeFromCurve struct {
	Context  Context `json:"context"`
	Quantity int     `json:"quantity"`
	Exclude  bool    `json:"exclude"`
}

// ClearAnchor removes a cell
type ClearAnchor struct {
	Context  Context `json:"context"`
	Quantity int     `json:"quantity"`
}

// AddQuantity adds a print run to the quantity set
type AddQuantity struct {
	Quantity int `json:"quantity"`
}

// RemoveQuantity drops a print run. Its anchors stay in the store but are no longer published.
type RemoveQuantity struct {
	Quantity int `json:"quantity"`
}

// SetProductMarkup sets a markup for a format/material scope, optionally narrowed to a variant
type SetProductMarkup struct {
	FormatID   string  `json:"formatId"`
	MaterialID string  `json:"materialId"`
	Variant    string  `json:"variant,omitempty"`
	Percent    float64 `json:"percent"`
}

// SetMasterMarkup sets the markup applied to every price
type SetMasterMarkup struct {
	Percent float64 `json:"percent"`
}

// SetRounding sets the rounding unit
type SetRounding struct {
	Unit int `json:"unit"`
}

// ApplyImport merges imported anchors; Replace drops every existing anchor first
type ApplyImport struct {
	Anchors    map[string]AnchorEntry `json:"anchors"`
	Quantities []int                  `json:"quantities"`
	Replace    bool                   `json:"replace"`
}

// SetStructure replaces the layout, anchors are kept
type SetStructure struct {
	Structure PricingStructure `json:"structure"`
}

func (SetAnchorPrice) ActionType() string      { return "set_anchor_price" }
func (SetAnchorMarkup) ActionType() string     { return "set_anchor_markup" }
func (SetRowMarkup) ActionType() string        { return "set_row_markup" }
func (SetLock) ActionType() string             { return "set_lock" }
func (SetExcludeFromCurve) ActionType() string { return "set_exclude_from_curve" }
func (ClearAnchor) ActionType() string         { return "clear_anchor" }
func (AddQuantity) ActionType() string         { return "add_quantity" }
func (RemoveQuantity) ActionType() string      { return "remove_quantity" }
func (SetProductMarkup) ActionType() string    { return "set_product_markup" }
func (SetMasterMarkup) ActionType() string     { return "set_master_markup" }
func (SetRounding) ActionType() string         { return "set_rounding" }
func (ApplyImport) ActionType() string         { return "apply_import" }
func (SetStructure) ActionType() string        { return "set_structure" }

// DecodeAction decodes {"type": "...", ...} into its concrete action
func DecodeAction(data []byte) (Action, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}

	var a Action
	var err error
	switch envelope.Type {
	case "set_anchor_price":
		a, err = decodeAs[SetAnchorPrice](data)
	case "set_anchor_markup":
		a, err = decodeAs[SetAnchorMarkup](data)
	case "set_row_markup":
		a, err = decodeAs[SetRowMarkup](data)
	case "set_lock":
		a, err = decodeAs[SetLock](data)
	case "set_exclude_from_curve":
		a, err = decodeAs[SetExcludeFromCurve](data)
	case "clear_anchor":
		a, err = decodeAs[ClearAnchor](data)
	case "add_quantity":
		a, err = decodeAs[AddQuantity](data)
	case "remove_quantity":
		a, err = decodeAs[RemoveQuantity](data)
	case "set_product_markup":
		a, err = decodeAs[SetProductMarkup](data)
	case "set_master_markup":
		a, err = decodeAs[SetMasterMarkup](data)
	case "set_rounding":
		a, err = decodeAs[SetRounding](data)
	case "apply_import":
		a, err = decodeAs[ApplyImport](data)
	case "set_structure":
		a, err = decodeAs[SetStructure](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", envelope.Type, err)
	}
	return a, nil
}

func decodeAs[T Action](data []byte) (Action, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Reduce returns the state after applying a. The input state is never modified.
func Reduce(s State, a Action) (State, error) {
	switch act := a.(type) {
	case SetAnchorPrice:
		key := act.Context.Key(act.Quantity)
		e := s.Anchors.Get(key)
		if act.Price <= 0 {
			e.Price, e.IsLocked, e.ExcludeFromCurve = 0, false, false
		} else {
			e.Price, e.IsLocked = act.Price, true
		}
		s.Anchors = s.Anchors.Put(key, e)

	case SetAnchorMarkup:
		m := act.Markup
		s = s.SetAnchor(act.Context, act.Quantity, AnchorPatch{MarkupPercent: &m})

	case SetRowMarkup:
		s.Anchors = applyRowMarkup(s, act)

	case SetLock:
		key := act.Context.Key(act.Quantity)
		e := s.Anchors.Get(key)
		e.IsLocked = act.Locked
		if act.Locked && e.Price <= 0 {
			e.Price = Interpolate(act.Quantity, s.ActiveAnchors(act.Context))
		}
		if !act.Locked {
			e.ExcludeFromCurve = false
		}
		s.Anchors = s.Anchors.Put(key, e)

	case SetExcludeFromCurve:
		x := act.Exclude
		s = s.SetAnchor(act.Context, act.Quantity, AnchorPatch{ExcludeFromCurve: &x})

	case ClearAnchor:
		s.Anchors = s.Anchors.Delete(act.Context.Key(act.Quantity))

	case AddQuantity:
		if act.Quantity <= 0 {
			return s, fmt.Errorf("quantity must be positive, got %d", act.Quantity)
		}
		s.Structure.Quantities = NormalizeQuantities(append(append([]int(nil), s.Structure.Quantities...), act.Quantity))

	case RemoveQuantity:
		qs := make([]int, 0, len(s.Structure.Quantities))
		for _, q := range s.Structure.Quantities {
			if q != act.Quantity {
				qs = append(qs, q)
			}
		}
		s.Structure.Quantities = qs

	case SetProductMarkup:
		pm := s.ProductMarkups.clone()
		scope := MarkupScope(act.FormatID, act.MaterialID, canonicalVariant(act.Variant))
		if act.Percent == 0 {
			delete(pm, scope)
		} else {
			pm[scope] = act.Percent
		}
		s.ProductMarkups = pm

	case SetMasterMarkup:
		s.MasterMarkup = act.Percent

	case SetRounding:
		u, err := ParseRoundingUnit(act.Unit)
		if err != nil {
			return s, err
		}
		s.Rounding = u

	case ApplyImport:
		entries, err := CanonicalKeys(act.Anchors)
		if err != nil {
			return s, err
		}
		if act.Replace {
			s.Anchors = AnchorStore{entries: entries}
		} else {
			s.Anchors = s.Anchors.Merge(entries)
		}
		s.Structure.Quantities = NormalizeQuantities(append(append([]int(nil), s.Structure.Quantities...), act.Quantities...))

	case SetStructure:
		next := act.Structure
		next.Version = LayoutVersion
		next.Quantities = NormalizeQuantities(next.Quantities)
		next.Generator = nil
		s.Structure = next

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
	return s, nil
}

// applyRowMarkup implements the slider. Moving it on an interpolated row promotes the row to a
// locked manual override at its current interpolated price; moving it back to zero on such a row
// drops the override so the curve takes over again.
func applyRowMarkup(s State, act SetRowMarkup) AnchorStore {
	store := s.Anchors
	key := act.Context.Key(act.Quantity)
	e := store.Get(key)

	switch {
	case e.IsLocked && e.ExcludeFromCurve:
		if act.Markup == 0 {
			return store.Put(key, AnchorEntry{})
		}
		e.MarkupPercent = act.Markup
	case e.IsLocked:
		e.MarkupPercent = act.Markup
	case act.Markup == 0:
		return store
	default:
		base := Interpolate(act.Quantity, s.ActiveAnchors(act.Context))
		if base <= 0 {
			e.MarkupPercent = act.Markup
			break
		}
		e = AnchorEntry{
			Price:            base,
			MarkupPercent:    act.Markup,
			IsLocked:         true,
			ExcludeFromCurve: true,
		}
	}
	return store.Put(key, e)
}
