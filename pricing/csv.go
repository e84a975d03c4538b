package pricing

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"trykkeri-admin/models"
)

// metaPrefix starts the optional first line carrying the layout and column roles
const metaPrefix = "#meta;"

// ErrEmptyCSV is returned when the input has no header row
var ErrEmptyCSV = errors.New("csv has no header row")

// CSVMeta is the JSON payload of the meta line
type CSVMeta struct {
	Version   string            `json:"version"`
	Structure *PricingStructure `json:"structure,omitempty"`
	Columns   []MetaColumn      `json:"columns,omitempty"`
}

// MetaColumn pins the role of a column by position
type MetaColumn struct {
	Header   string     `json:"header"`
	Role     ColumnRole `json:"role"`
	GroupID  string     `json:"groupId,omitempty"`
	Quantity int        `json:"quantity,omitempty"`
}

// ImportedColumn is how a column was understood
type ImportedColumn struct {
	Index    int        `json:"index"`
	Header   string     `json:"header"`
	Role     ColumnRole `json:"role"`
	GroupID  string     `json:"groupId,omitempty"`
	Quantity int        `json:"quantity,omitempty"`
}

// ImportResult is the outcome of reading a price sheet. Problems in single rows or cells are
// reported as warnings and never abort the import.
type ImportResult struct {
	Anchors    map[string]AnchorEntry `json:"anchors"`
	Quantities []int                  `json:"quantities"`
	Structure  *PricingStructure      `json:"structure,omitempty"`
	Columns    []ImportedColumn       `json:"columns"`
	Warnings   []string               `json:"warnings,omitempty"`
	Rows       int                    `json:"rows"`
	Skipped    int                    `json:"skipped"`
}

// Action returns the reducer action that applies the import
func (r *ImportResult) Action(replace bool) ApplyImport {
	return ApplyImport{Anchors: r.Anchors, Quantities: r.Quantities, Replace: replace}
}

func (r *ImportResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ImportCSV reads a price sheet with one row per format/material/finish combination and either
// one column per quantity or a quantity column plus a price column. Separators ; and , are both
// accepted. Every price read becomes a locked anchor.
func ImportCSV(r io.Reader, groups []models.AttributeGroup, classifier Classifier) (*ImportResult, error) {
	res := &ImportResult{Anchors: map[string]AnchorEntry{}}

	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	first = strings.TrimPrefix(first, "\ufeff")

	var meta CSVMeta
	if strings.HasPrefix(first, metaPrefix) {
		if err := json.Unmarshal([]byte(strings.TrimSpace(first[len(metaPrefix):])), &meta); err != nil {
			res.warnf("meta line ignored: %v", err)
			meta = CSVMeta{}
		}
		res.Structure = meta.Structure
		first, err = br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
	}
	if strings.TrimSpace(first) == "" {
		return nil, ErrEmptyCSV
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	cr.Comma = detectDelimiter(first)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := resolveColumns(header, meta.Columns, groups, classifier, res)
	res.Columns = cols
	byID := indexGroups(groups)

	var qtyCols []ImportedColumn
	longQty, longPrice := -1, -1
	for _, c := range cols {
		switch c.Role {
		case RoleQty:
			if c.Quantity > 0 {
				qtyCols = append(qtyCols, c)
			} else if longQty < 0 {
				longQty = c.Index
			}
		case RolePrice:
			if longPrice < 0 {
				longPrice = c.Index
			}
		case RoleUnknown:
			res.warnf("column %q not recognised, ignored", c.Header)
		}
	}
	long := longQty >= 0 && longPrice >= 0
	if len(qtyCols) == 0 && !long {
		res.warnf("no quantity columns found")
		return res, nil
	}

	quantities := map[int]struct{}{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.warnf("row %d: %v", line, err)
			res.Skipped++
			continue
		}
		if blankRecord(record) {
			continue
		}
		res.Rows++

		ctx, ok := rowContext(record, cols, byID, line, res)
		if !ok {
			res.Skipped++
			continue
		}

		if long {
			q, ok := HeaderQuantity(cell(record, longQty))
			if !ok {
				res.warnf("row %d: invalid quantity %q", line, cell(record, longQty))
				continue
			}
			if addPrice(res, ctx, q, cell(record, longPrice), line) {
				quantities[q] = struct{}{}
			}
			continue
		}
		for _, c := range qtyCols {
			if addPrice(res, ctx, c.Quantity, cell(record, c.Index), line) {
				quantities[c.Quantity] = struct{}{}
			}
		}
	}

	for q := range quantities {
		res.Quantities = append(res.Quantities, q)
	}
	res.Quantities = NormalizeQuantities(res.Quantities)
	if len(res.Anchors) == 0 {
		res.warnf("no prices imported")
	}
	return res, nil
}

func addPrice(res *ImportResult, ctx Context, quantity int, raw string, line int) bool {
	if isBlankCell(raw) {
		return false
	}
	price, err := ParseNumber(raw)
	if err != nil {
		res.warnf("row %d: invalid price %q for %d", line, raw, quantity)
		return false
	}
	if price <= 0 {
		return false
	}
	res.Anchors[ctx.Key(quantity)] = AnchorEntry{Price: price, IsLocked: true}
	return true
}

func resolveColumns(header []string, pinned []MetaColumn, groups []models.AttributeGroup, classifier Classifier, res *ImportResult) []ImportedColumn {
	cols := make([]ImportedColumn, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		c := ImportedColumn{Index: i, Header: h, Role: classifier.Classify(h)}
		if i < len(pinned) {
			if role, ok := ParseColumnRole(string(pinned[i].Role)); ok {
				c.Role = role
				c.GroupID = pinned[i].GroupID
				c.Quantity = pinned[i].Quantity
			}
		}
		if c.Role == RoleQty && c.Quantity == 0 {
			c.Quantity, _ = HeaderQuantity(h)
		}
		cols[i] = c
	}

	used := map[string]bool{}
	for i := range cols {
		if cols[i].GroupID != "" {
			used[cols[i].GroupID] = true
		}
	}
	for i := range cols {
		c := &cols[i]
		if c.GroupID != "" {
			continue
		}
		var kind models.GroupKind
		switch c.Role {
		case RoleFormat:
			kind = models.GroupKindFormat
		case RoleMaterial:
			kind = models.GroupKindMaterial
		case RoleFinish:
			kind = ""
		default:
			continue
		}
		if g, ok := pickGroup(groups, kind, c.Header, used); ok {
			c.GroupID = g.ID
			used[g.ID] = true
		} else if kind != "" {
			res.warnf("column %q: product has no %s group", c.Header, kind)
		} else {
			res.warnf("column %q: no matching attribute group", c.Header)
		}
	}
	return cols
}

// pickGroup finds the group a column refers to: a group of that kind whose name matches the
// header, then the first unused group of the kind. An empty kind means any secondary group.
func pickGroup(groups []models.AttributeGroup, kind models.GroupKind, header string, used map[string]bool) (models.AttributeGroup, bool) {
	fits := func(g models.AttributeGroup) bool {
		if kind == "" {
			return !g.Kind.IsAxis()
		}
		return g.Kind == kind
	}
	h := normalizeName(header)
	for _, g := range groups {
		if fits(g) && !used[g.ID] && normalizeName(g.Name) == h {
			return g, true
		}
	}
	if kind == "" {
		for _, g := range groups {
			if g.Kind == models.GroupKindFinish && !used[g.ID] {
				return g, true
			}
		}
	}
	for _, g := range groups {
		if fits(g) && !used[g.ID] {
			return g, true
		}
	}
	return models.AttributeGroup{}, false
}

func rowContext(record []string, cols []ImportedColumn, byID map[string]models.AttributeGroup, line int, res *ImportResult) (Context, bool) {
	ctx := Context{FormatID: NoAxisValue, MaterialID: NoAxisValue}
	for _, c := range cols {
		if c.GroupID == "" {
			continue
		}
		if c.Role != RoleFormat && c.Role != RoleMaterial && c.Role != RoleFinish {
			continue
		}
		raw := cell(record, c.Index)
		g := byID[c.GroupID]
		if isBlankCell(raw) {
			if c.Role == RoleFinish {
				continue
			}
			res.warnf("row %d: missing %s", line, c.Header)
			return Context{}, false
		}
		id, ok := resolveValue(g, raw)
		if !ok {
			res.warnf("row %d: %q is not a value of %s", line, raw, g.Name)
			return Context{}, false
		}
		switch c.Role {
		case RoleFormat:
			ctx.FormatID = id
		case RoleMaterial:
			ctx.MaterialID = id
		default:
			ctx.VariantIDs = append(ctx.VariantIDs, id)
		}
	}
	return ctx, true
}

// resolveValue matches a cell by value id, then by name ignoring case and spaces
func resolveValue(g models.AttributeGroup, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if v, ok := g.Value(raw); ok {
		return v.ID, true
	}
	want := normalizeName(raw)
	for _, v := range g.Values {
		if normalizeName(v.Name) == want {
			return v.ID, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	return strings.ReplaceAll(foldHeader(s), " ", "")
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlankCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "-", "–", "none", "ingen":
		return true
	}
	return false
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter picks ; or , by counting them in the header line outside quotes
func detectDelimiter(line string) rune {
	semi, comma := 0, 0
	quoted := false
	for _, r := range line {
		switch r {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				semi++
			}
		case ',':
			if !quoted {
				comma++
			}
		}
	}
	if comma > semi {
		return ','
	}
	return ';'
}

var thousandsDots = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// ParseNumber reads Danish ("1.234,50", "45,5 kr.") and plain ("1234.5") numbers. With both
// separators present the last one is the decimal mark. A lone dot followed by groups of three
// digits is a thousands separator.
func ParseNumber(s string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"kr.", "kr", "dkk", ",-"} {
		v = strings.TrimSpace(strings.TrimSuffix(v, suffix))
	}
	v = strings.NewReplacer(" ", "", "\u00a0", "", "'", "").Replace(v)
	if v == "" {
		return 0, fmt.Errorf("empty number")
	}

	dot, comma := strings.LastIndex(v, "."), strings.LastIndex(v, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			v = strings.ReplaceAll(v, ".", "")
			v = strings.Replace(v, ",", ".", 1)
		} else {
			v = strings.ReplaceAll(v, ",", "")
		}
	case comma >= 0:
		v = strings.Replace(v, ",", ".", 1)
	case thousandsDots.MatchString(v):
		v = strings.ReplaceAll(v, ".", "")
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// ExportMode selects which prices an export writes
type ExportMode string

const (
	// ExportAnchors writes the locked base prices only, the form ImportCSV reads back
	ExportAnchors ExportMode = "anchors"
	// ExportFinal writes the computed customer prices of every cell
	ExportFinal ExportMode = "final"
)

// ExportOptions controls ExportCSV
type ExportOptions struct {
	Mode      ExportMode
	Delimiter rune
	NoMeta    bool
}

// ExportCSV writes one row per matrix context and one column per active quantity
func ExportCSV(w io.Writer, s State, groups []models.AttributeGroup, opts ExportOptions) error {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.Mode == "" {
		opts.Mode = ExportAnchors
	}

	axis, counter, secondary, ok := s.Structure.dimensions(groups)
	if !ok {
		return fmt.Errorf("%w: vertical axis group %q not found", ErrInvalidStructure, s.Structure.VerticalAxis.GroupID)
	}

	formatGroup, materialGroup := axis.group.ID, ""
	if len(counter) > 0 {
		materialGroup = counter[0].group.ID
	}
	if axis.group.Kind == models.GroupKindMaterial {
		formatGroup, materialGroup = materialGroup, axis.group.ID
	}

	header := []string{"Format", "Materiale"}
	columns := []MetaColumn{
		{Header: "Format", Role: RoleFormat, GroupID: formatGroup},
		{Header: "Materiale", Role: RoleMaterial, GroupID: materialGroup},
	}
	if formatGroup == "" {
		columns[0].Role = RoleIgnore
	}
	if materialGroup == "" {
		columns[1].Role = RoleIgnore
	}
	for _, d := range secondary {
		header = append(header, d.group.Name)
		columns = append(columns, MetaColumn{Header: d.group.Name, Role: RoleFinish, GroupID: d.group.ID})
	}
	for _, q := range s.Structure.Quantities {
		h := strconv.Itoa(q)
		header = append(header, h)
		columns = append(columns, MetaColumn{Header: h, Role: RoleQty, Quantity: q})
	}

	if !opts.NoMeta {
		structure := s.PersistedStructure()
		meta, err := json.Marshal(CSVMeta{Version: LayoutVersion, Structure: &structure, Columns: columns})
		if err != nil {
			return fmt.Errorf("failed to encode csv meta: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", metaPrefix, meta); err != nil {
			return fmt.Errorf("failed to write csv meta: %w", err)
		}
	}

	names := valueNames(groups)
	cw := csv.NewWriter(w)
	cw.Comma = opts.Delimiter
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, ctx := range s.Structure.Contexts(groups) {
		record := make([]string, 0, len(header))
		record = append(record, axisCell(names, ctx.FormatID), axisCell(names, ctx.MaterialID))
		for _, id := range ctx.VariantIDs {
			record = append(record, names.name(id))
		}
		for _, q := range s.Structure.Quantities {
			var v float64
			switch opts.Mode {
			case ExportFinal:
				v = s.PriceAt(ctx, q).Final
			default:
				if e := s.GetAnchor(ctx, q); e.IsLocked && e.Price > 0 {
					v = e.Price
				}
			}
			record = append(record, formatCell(v, opts.Delimiter))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func axisCell(names nameIndex, id string) string {
	if id == NoAxisValue {
		return ""
	}
	return names.name(id)
}

// formatCell writes whole numbers bare and others with two decimals, using a decimal comma when
// the delimiter is a semicolon
func formatCell(v float64, delim rune) string {
	if v <= 0 {
		return ""
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if delim == ';' {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}
