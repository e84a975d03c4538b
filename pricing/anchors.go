package pricing

import (
	"encoding/json"
	"sort"
)

// AnchorEntry is the stored state of one matrix cell
type AnchorEntry struct {
	Price            float64 `json:"price"`
	MarkupPercent    float64 `json:"markup_percent"`
	IsLocked         bool    `json:"isLocked"`
	ExcludeFromCurve bool    `json:"excludeFromCurve"`
}

// Active reports whether the entry takes part in interpolation
func (a AnchorEntry) Active() bool {
	return a.IsLocked && !a.ExcludeFromCurve && a.Price > 0
}

// Manual reports whether the entry is a fixed override kept off the curve
func (a AnchorEntry) Manual() bool {
	return a.IsLocked && a.ExcludeFromCurve && a.Price > 0
}

// AnchorPatch is a partial update, nil fields are left untouched
type AnchorPatch struct {
	Price            *float64 `json:"price,omitempty"`
	MarkupPercent    *float64 `json:"markup_percent,omitempty"`
	IsLocked         *bool    `json:"isLocked,omitempty"`
	ExcludeFromCurve *bool    `json:"excludeFromCurve,omitempty"`
}

func (p AnchorPatch) apply(a AnchorEntry) AnchorEntry {
	if p.Price != nil {
		a.Price = *p.Price
	}
	if p.MarkupPercent != nil {
		a.MarkupPercent = *p.MarkupPercent
	}
	if p.IsLocked != nil {
		a.IsLocked = *p.IsLocked
	}
	if p.ExcludeFromCurve != nil {
		a.ExcludeFromCurve = *p.ExcludeFromCurve
	}
	return a
}

// AnchorStore maps matrix keys to entries. It is a value: Set and Delete return a new
// store and never modify the receiver.
type AnchorStore struct {
	entries map[string]AnchorEntry
}

// NewAnchorStore copies entries into a new store
func NewAnchorStore(entries map[string]AnchorEntry) AnchorStore {
	s := AnchorStore{entries: make(map[string]AnchorEntry, len(entries))}
	for k, v := range entries {
		s.entries[k] = v
	}
	return s
}

// Get returns the entry at key, the zero entry when absent
func (s AnchorStore) Get(key string) AnchorEntry {
	return s.entries[key]
}

// Lookup returns the entry at key and whether it exists
func (s AnchorStore) Lookup(key string) (AnchorEntry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Set applies a partial update to the entry at key
func (s AnchorStore) Set(key string, patch AnchorPatch) AnchorStore {
	return s.Put(key, patch.apply(s.entries[key]))
}

// Put replaces the entry at key
func (s AnchorStore) Put(key string, entry AnchorEntry) AnchorStore {
	next := NewAnchorStore(s.entries)
	next.entries[key] = entry
	return next
}

// Delete removes the entry at key
func (s AnchorStore) Delete(key string) AnchorStore {
	if _, ok := s.entries[key]; !ok {
		return s
	}
	next := NewAnchorStore(s.entries)
	delete(next.entries, key)
	return next
}

// Merge overlays entries on top of the store
func (s AnchorStore) Merge(entries map[string]AnchorEntry) AnchorStore {
	next := NewAnchorStore(s.entries)
	for k, v := range entries {
		next.entries[k] = v
	}
	return next
}

// Len returns the number of stored entries
func (s AnchorStore) Len() int {
	return len(s.entries)
}

// Keys returns all keys sorted
func (s AnchorStore) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the underlying map
func (s AnchorStore) Entries() map[string]AnchorEntry {
	return NewAnchorStore(s.entries).entries
}

// ActiveAnchors returns the locked on-curve entries of a context sorted by quantity, at any quantity
func (s AnchorStore) ActiveAnchors(ctx Context) []Anchor {
	prefix := ctx.Prefix() + keySep
	var out []Anchor
	for key, e := range s.entries {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix || !e.Active() {
			continue
		}
		k, err := ParseKey(key)
		if err != nil {
			continue
		}
		out = append(out, Anchor{Quantity: k.Quantity, Price: e.Price, Markup: e.MarkupPercent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

// MarshalJSON encodes the store as a flat key -> entry object
func (s AnchorStore) MarshalJSON() ([]byte, error) {
	if s.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.entries)
}

// UnmarshalJSON decodes a flat key -> entry object. Keys are canonicalised.
func (s *AnchorStore) UnmarshalJSON(data []byte) error {
	var entries map[string]AnchorEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	entries, err := CanonicalKeys(entries)
	if err != nil {
		return err
	}
	*s = AnchorStore{entries: entries}
	return nil
}
