package pricing

import "sort"

// Anchor is an interpolation control point
type Anchor struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Markup   float64 `json:"markup"`
}

func withMarkup(price, markup float64) float64 {
	return price * (1 + markup/100)
}

// Interpolate returns the price at target from sparse anchors.
// Price and markup are each interpolated on their own line and composed once at the end.
// The result is not rounded and carries no product or master markup.
func Interpolate(target int, anchors []Anchor) float64 {
	pts := normalizeAnchors(anchors)
	switch len(pts) {
	case 0:
		return 0
	case 1:
		return withMarkup(pts[0].Price, pts[0].Markup)
	}

	var before, after *Anchor
	for i := range pts {
		if pts[i].Quantity <= target {
			before = &pts[i]
		}
		if pts[i].Quantity >= target && after == nil {
			after = &pts[i]
		}
	}

	switch {
	case before == nil:
		lo, hi := pts[0], pts[1]
		return floorZero(withMarkup(extrapolate(lo, hi, target, lo), lo.Markup))
	case after == nil:
		lo, hi := pts[len(pts)-2], pts[len(pts)-1]
		return floorZero(withMarkup(extrapolate(lo, hi, target, hi), hi.Markup))
	case before.Quantity == after.Quantity:
		return withMarkup(before.Price, before.Markup)
	}

	t := float64(target-before.Quantity) / float64(after.Quantity-before.Quantity)
	price := before.Price + t*(after.Price-before.Price)
	markup := before.Markup + t*(after.Markup-before.Markup)
	return withMarkup(price, markup)
}

// extrapolate continues the lo->hi line from the given origin anchor
func extrapolate(lo, hi Anchor, target int, origin Anchor) float64 {
	slope := (hi.Price - lo.Price) / float64(hi.Quantity-lo.Quantity)
	return origin.Price + slope*float64(target-origin.Quantity)
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// normalizeAnchors sorts by quantity; a repeated quantity keeps the last anchor given
func normalizeAnchors(anchors []Anchor) []Anchor {
	byQty := make(map[int]Anchor, len(anchors))
	for _, a := range anchors {
		byQty[a.Quantity] = a
	}
	out := make([]Anchor, 0, len(byQty))
	for _, a := range byQty {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}
