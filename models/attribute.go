package models

import (
	"fmt"
	"strings"
)

// GroupKind decides which axis of the price matrix a group may populate
type GroupKind string

const (
	GroupKindFormat   GroupKind = "format"
	GroupKindMaterial GroupKind = "material"
	GroupKindFinish   GroupKind = "finish"
	GroupKindOther    GroupKind = "other"
	GroupKindCustom   GroupKind = "custom"
)

// ParseGroupKind normalizes and validates a group kind
func ParseGroupKind(s string) (GroupKind, error) {
	switch GroupKind(strings.ToLower(strings.TrimSpace(s))) {
	case GroupKindFormat:
		return GroupKindFormat, nil
	case GroupKindMaterial:
		return GroupKindMaterial, nil
	case GroupKindFinish:
		return GroupKindFinish, nil
	case GroupKindOther:
		return GroupKindOther, nil
	case GroupKindCustom:
		return GroupKindCustom, nil
	}
	return "", fmt.Errorf("invalid group kind: %q", s)
}

// IsAxis reports whether the kind can be used as the vertical axis
func (k GroupKind) IsAxis() bool {
	return k == GroupKindFormat || k == GroupKindMaterial
}

// UIMode controls how a group is rendered in the product configurator
type UIMode string

const (
	UIModeButtons    UIMode = "buttons"
	UIModeDropdown   UIMode = "dropdown"
	UIModeCheckboxes UIMode = "checkboxes"
	UIModeHidden     UIMode = "hidden"
)

// ParseUIMode validates a ui mode, empty defaults to buttons
func ParseUIMode(s string) (UIMode, error) {
	switch UIMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", UIModeButtons:
		return UIModeButtons, nil
	case UIModeDropdown:
		return UIModeDropdown, nil
	case UIModeCheckboxes:
		return UIModeCheckboxes, nil
	case UIModeHidden:
		return UIModeHidden, nil
	}
	return "", fmt.Errorf("invalid ui mode: %q", s)
}

// AttributeValue is one option inside a group (a paper weight, a format, a finish)
type AttributeValue struct {
	ID        string            `json:"id"`
	GroupID   string            `json:"groupId"`
	Name      string            `json:"name"`
	Enabled   bool              `json:"enabled"`
	WidthMM   *float64          `json:"widthMm,omitempty"`
	HeightMM  *float64          `json:"heightMm,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	SortOrder int               `json:"sortOrder"`
}

// AttributeGroup owns its values
type AttributeGroup struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Kind      GroupKind        `json:"kind"`
	UIMode    UIMode           `json:"uiMode"`
	SortOrder int              `json:"sortOrder"`
	Values    []AttributeValue `json:"values"`
}

// Value returns the value with the given id
func (g AttributeGroup) Value(id string) (AttributeValue, bool) {
	for _, v := range g.Values {
		if v.ID == id {
			return v, true
		}
	}
	return AttributeValue{}, false
}

// CreateAttributeGroupRequest represents the request body for creating a group
// Example: {"name": "Papir", "kind": "material", "uiMode": "dropdown"}
type CreateAttributeGroupRequest struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	UIMode    string `json:"uiMode"`
	SortOrder int    `json:"sortOrder"`
}

// UpsertAttributeValueRequest represents the request body for creating or updating a value
// Example: {"name": "A4", "enabled": true, "widthMm": 210, "heightMm": 297}
type UpsertAttributeValueRequest struct {
	Name      string            `json:"name"`
	Enabled   *bool             `json:"enabled,omitempty"`
	WidthMM   *float64          `json:"widthMm,omitempty"`
	HeightMM  *float64          `json:"heightMm,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	SortOrder int               `json:"sortOrder"`
}
