package pricing

import (
	"errors"
	"fmt"
	"sort"

	"trykkeri-admin/models"
)

// LayoutVersion tags the persisted layout format
const LayoutVersion = "matrix_layout_v1"

// NoAxisValue fills the format or material slot of a key when the product has no such group
const NoAxisValue = "none"

// ErrInvalidStructure is returned when a layout does not match the product's groups
var ErrInvalidStructure = errors.New("invalid pricing structure")

// VerticalAxis is the group rendered as table rows
type VerticalAxis struct {
	GroupID  string           `json:"groupId"`
	Kind     models.GroupKind `json:"kind"`
	ValueIDs []string         `json:"valueIds,omitempty"`
}

// LayoutSection places one group inside a layout row
type LayoutSection struct {
	ID       string           `json:"id"`
	Title    string           `json:"title,omitempty"`
	GroupID  string           `json:"groupId"`
	Kind     models.GroupKind `json:"kind"`
	UIMode   models.UIMode    `json:"uiMode,omitempty"`
	ValueIDs []string         `json:"valueIds,omitempty"`
}

// LayoutRow is an ordered list of sections
type LayoutRow struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Sections []LayoutSection `json:"sections"`
}

// GeneratorSettings are the markup and rounding knobs saved with the layout
type GeneratorSettings struct {
	ProductMarkups ProductMarkups `json:"productMarkups,omitempty"`
	MasterMarkup   float64        `json:"masterMarkup"`
	Rounding       RoundingUnit   `json:"rounding"`
}

// PricingStructure is the persisted layout of a product's price matrix
type PricingStructure struct {
	Version      string             `json:"version"`
	VerticalAxis VerticalAxis       `json:"verticalAxis"`
	LayoutRows   []LayoutRow        `json:"layoutRows"`
	Quantities   []int              `json:"quantities"`
	Generator    *GeneratorSettings `json:"generator,omitempty"`
}

// NormalizeQuantities returns the positive quantities sorted and deduplicated
func NormalizeQuantities(qs []int) []int {
	seen := make(map[int]struct{}, len(qs))
	out := make([]int, 0, len(qs))
	for _, q := range qs {
		if q <= 0 {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// HasQuantity reports whether q is in the active quantity set
func (s PricingStructure) HasQuantity(q int) bool {
	for _, v := range s.Quantities {
		if v == q {
			return true
		}
	}
	return false
}

func indexGroups(groups []models.AttributeGroup) map[string]models.AttributeGroup {
	out := make(map[string]models.AttributeGroup, len(groups))
	for _, g := range groups {
		out[g.ID] = g
	}
	return out
}

// Validate checks the structure against the product's groups
func (s PricingStructure) Validate(groups []models.AttributeGroup) error {
	if s.Version != "" && s.Version != LayoutVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidStructure, s.Version)
	}
	byID := indexGroups(groups)

	axis, ok := byID[s.VerticalAxis.GroupID]
	if !ok {
		return fmt.Errorf("%w: vertical axis group %q not found", ErrInvalidStructure, s.VerticalAxis.GroupID)
	}
	if !axis.Kind.IsAxis() {
		return fmt.Errorf("%w: group %q of kind %s cannot be the vertical axis", ErrInvalidStructure, axis.ID, axis.Kind)
	}
	if s.VerticalAxis.Kind != "" && s.VerticalAxis.Kind != axis.Kind {
		return fmt.Errorf("%w: vertical axis kind %s does not match group kind %s", ErrInvalidStructure, s.VerticalAxis.Kind, axis.Kind)
	}
	if err := checkValueIDs(axis, s.VerticalAxis.ValueIDs); err != nil {
		return err
	}

	for _, row := range s.LayoutRows {
		for _, sec := range row.Sections {
			g, ok := byID[sec.GroupID]
			if !ok {
				return fmt.Errorf("%w: section %q references unknown group %q", ErrInvalidStructure, sec.ID, sec.GroupID)
			}
			if g.ID == axis.ID {
				return fmt.Errorf("%w: section %q repeats the vertical axis group", ErrInvalidStructure, sec.ID)
			}
			if sec.Kind != "" && sec.Kind != g.Kind {
				return fmt.Errorf("%w: section %q kind %s does not match group kind %s", ErrInvalidStructure, sec.ID, sec.Kind, g.Kind)
			}
			if g.Kind == axis.Kind {
				return fmt.Errorf("%w: section %q uses the axis kind %s", ErrInvalidStructure, sec.ID, g.Kind)
			}
			if err := checkValueIDs(g, sec.ValueIDs); err != nil {
				return err
			}
		}
	}

	for _, q := range s.Quantities {
		if q <= 0 {
			return fmt.Errorf("%w: quantity %d must be positive", ErrInvalidStructure, q)
		}
	}
	return nil
}

func checkValueIDs(g models.AttributeGroup, ids []string) error {
	for _, id := range ids {
		if _, ok := g.Value(id); !ok {
			return fmt.Errorf("%w: value %q not in group %q", ErrInvalidStructure, id, g.ID)
		}
	}
	return nil
}

// selectedValues returns the explicitly selected ids, or every enabled value of the group
func selectedValues(g models.AttributeGroup, ids []string) []string {
	if len(ids) > 0 {
		return ids
	}
	var out []string
	for _, v := range g.Values {
		if v.Enabled {
			out = append(out, v.ID)
		}
	}
	return out
}

// dimension is one group's selected values as used by the matrix
type dimension struct {
	group  models.AttributeGroup
	values []string
}

// dimensions splits the structure into the vertical axis, the counter axis and the secondary
// sections, in layout order
func (s PricingStructure) dimensions(groups []models.AttributeGroup) (axis dimension, counter []dimension, secondary []dimension, ok bool) {
	byID := indexGroups(groups)
	g, ok := byID[s.VerticalAxis.GroupID]
	if !ok {
		return dimension{}, nil, nil, false
	}
	axis = dimension{group: g, values: selectedValues(g, s.VerticalAxis.ValueIDs)}

	for _, row := range s.LayoutRows {
		for _, sec := range row.Sections {
			sg, found := byID[sec.GroupID]
			if !found || sg.ID == g.ID {
				continue
			}
			d := dimension{group: sg, values: selectedValues(sg, sec.ValueIDs)}
			if len(d.values) == 0 {
				continue
			}
			if sg.Kind.IsAxis() {
				counter = append(counter, d)
			} else {
				secondary = append(secondary, d)
			}
		}
	}
	return axis, counter, secondary, true
}

// Contexts enumerates every matrix row the structure describes: axis values ×
// counter-axis values × one selection from each secondary section.
func (s PricingStructure) Contexts(groups []models.AttributeGroup) []Context {
	axis, counter, secondary, ok := s.dimensions(groups)
	if !ok {
		return nil
	}

	var counterValues []string
	for _, d := range counter {
		counterValues = append(counterValues, d.values...)
	}
	if len(counterValues) == 0 {
		counterValues = []string{NoAxisValue}
	}
	dims := make([][]string, 0, len(secondary))
	for _, d := range secondary {
		dims = append(dims, d.values)
	}

	variants := cartesian(dims)
	out := make([]Context, 0, len(axis.values)*len(counterValues)*len(variants))
	for _, a := range axis.values {
		for _, c := range counterValues {
			for _, v := range variants {
				ctx := Context{FormatID: a, MaterialID: c, VariantIDs: v}
				if axis.group.Kind == models.GroupKindMaterial {
					ctx.FormatID, ctx.MaterialID = c, a
				}
				out = append(out, ctx)
			}
		}
	}
	return out
}

func cartesian(dims [][]string) [][]string {
	out := [][]string{nil}
	for _, dim := range dims {
		next := make([][]string, 0, len(out)*len(dim))
		for _, prefix := range out {
			for _, v := range dim {
				combo := make([]string, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, v))
			}
		}
		out = next
	}
	return out
}
