package pricing

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ColumnRole is what a CSV column holds
type ColumnRole string

const (
	RoleFormat   ColumnRole = "format"
	RoleMaterial ColumnRole = "material"
	RoleFinish   ColumnRole = "finish"
	RoleQty      ColumnRole = "qty"
	RolePrice    ColumnRole = "price"
	RoleIgnore   ColumnRole = "ignore"
	RoleUnknown  ColumnRole = "unknown"
)

// ParseColumnRole accepts the role names used in the meta line
func ParseColumnRole(s string) (ColumnRole, bool) {
	switch r := ColumnRole(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleFormat, RoleMaterial, RoleFinish, RoleQty, RolePrice, RoleIgnore, RoleUnknown:
		return r, true
	}
	return "", false
}

// MatchKind is how a rule compares terms against a folded header
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchContains
)

// ClassifierRule maps headers matching any of Terms to Role. Terms are lower case.
type ClassifierRule struct {
	Role  ColumnRole
	Match MatchKind
	Terms []string
}

// DefaultRules is the ordered rule list. The first matching rule wins, so every exact rule comes
// before every substring rule ("Papirfinish" is a finish, not a paper).
var DefaultRules = []ClassifierRule{
	{RoleIgnore, MatchExact, []string{"", "#", "id", "nr", "nr.", "sku", "varenummer", "note", "noter", "notes", "kommentar", "comment"}},
	{RoleFormat, MatchExact, []string{"format", "formater", "størrelse", "size", "str", "str.", "dimension", "dimensioner", "mål"}},
	{RoleMaterial, MatchExact, []string{"materiale", "materialer", "material", "papir", "paper", "papirtype", "papirvægt", "vægt", "gramvægt", "substrat", "substrate", "medie", "stock"}},
	{RoleFinish, MatchExact, []string{"finish", "papirfinish", "efterbehandling", "overflade", "overfladebehandling", "laminering", "lak", "coating", "finishing"}},
	{RoleQty, MatchExact, []string{"antal", "oplag", "qty", "quantity", "stk", "stk.", "mængde"}},
	{RolePrice, MatchExact, []string{"pris", "price", "beløb", "amount", "dkk", "kr", "kr."}},
	{RoleIgnore, MatchContains, []string{"kommentar", "note"}},
	{RoleFinish, MatchContains, []string{"finish", "lamin", "efterbehandl", "coating", "overflade"}},
	{RoleMaterial, MatchContains, []string{"papir", "paper", "materiale", "material", "gram", "g/m", "vægt"}},
	{RoleFormat, MatchContains, []string{"format", "størrelse", "size", "dimension"}},
	{RoleQty, MatchContains, []string{"oplag", "antal", "qty", "quantity"}},
	{RolePrice, MatchContains, []string{"pris", "price"}},
}

// Classifier applies an ordered rule list, falling back to numeric headers as quantities
type Classifier struct {
	rules []ClassifierRule
}

// NewClassifier returns a classifier over rules, DefaultRules when rules is empty
func NewClassifier(rules []ClassifierRule) Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return Classifier{rules: rules}
}

// Classify returns the role of a header
func (c Classifier) Classify(header string) ColumnRole {
	rules := c.rules
	if rules == nil {
		rules = DefaultRules
	}
	h := foldHeader(header)
	for _, rule := range rules {
		for _, term := range rule.Terms {
			switch rule.Match {
			case MatchExact:
				if h == term {
					return rule.Role
				}
			case MatchContains:
				if term != "" && strings.Contains(h, term) {
					return rule.Role
				}
			}
		}
	}
	if _, ok := HeaderQuantity(header); ok {
		return RoleQty
	}
	return RoleUnknown
}

// ClassifyHeader classifies with DefaultRules
func ClassifyHeader(header string) ColumnRole {
	return NewClassifier(nil).Classify(header)
}

// HeaderQuantity parses a numeric header such as "500" or "1.000"
func HeaderQuantity(header string) (int, bool) {
	s := strings.TrimSpace(header)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func foldHeader(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, ":")
	return cases.Fold().String(s)
}
