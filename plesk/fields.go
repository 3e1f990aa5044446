package plesk

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Params are the loosely typed, caller facing parameters of a single panel call.
// Values are rendered with fmt semantics; a nil value counts as absent.
type Params map[string]interface{}

// Category is the structural class a canonical field can belong to.
type Category string

const (
	CategoryFilter   Category = "filter"
	CategoryDataset  Category = "dataset"
	CategorySetup    Category = "setup"
	CategoryProperty Category = "property"
	CategoryExtra    Category = "extra"
)

// Placement decides how a member field is written into its section.
type Placement int

const (
	// Leaf writes <field>value</field>
	Leaf Placement = iota
	// Property writes <property><name>field</name><value>value</value></property>
	Property
)

// Section is one subtree below the operation node.  Path is relative to the operation node, an empty
// Path means fields are written directly under it.  Sections sharing a path prefix share those nodes.
type Section struct {
	Category  Category
	Path      []string
	Placement Placement
	Fields    []string // canonical member names, in wire order
	Static    []string // empty child elements always written (dataset selectors, server info types)
	Eager     bool     // attach even when nothing lands in the section
	Triggers  []string // canonical names that attach the section without being members
	Base64    bool     // member values are base64 encoded on the wire
}

// FieldTable is the declarative description of one operation's request shape.  Tables are built once
// at package init and never mutated.
type FieldTable struct {
	Required     []string          // canonical names
	RequireOneOf []string          // at least one of these canonical names, guards filters of destructive calls
	Aliases      map[string]string // caller facing name -> canonical name
	Defaults     map[string]string // canonical name -> value used when the caller omits it
	Sections     []Section
}

// Canonical resolves a caller facing name.  Unmapped names are already canonical.
func (t *FieldTable) Canonical(field string) string {
	if c, ok := t.Aliases[field]; ok {
		return c
	}
	return field
}

// AliasesOf returns every caller facing name that resolves to canonical, sorted.
func (t *FieldTable) AliasesOf(canonical string) []string {
	var names []string
	for alias, c := range t.Aliases {
		if c == canonical {
			names = append(names, alias)
		}
	}
	sort.Strings(names)
	return names
}

// Categories lists the categories a canonical name is a member of.
func (t *FieldTable) Categories(canonical string) []Category {
	var cats []Category
	for _, s := range t.Sections {
		if contains(s.Fields, canonical) {
			cats = append(cats, s.Category)
		}
	}
	return cats
}

// checkRequired reports the first required canonical field that is supplied neither directly nor
// through one of its aliases.
func (t *FieldTable) checkRequired(params Params) (missing string, ok bool) {
	for _, req := range t.Required {
		if !t.supplied(params, req) {
			return req, false
		}
	}
	if len(t.RequireOneOf) == 0 {
		return "", true
	}
	for _, name := range t.RequireOneOf {
		if t.supplied(params, name) {
			return "", true
		}
	}
	return strings.Join(t.RequireOneOf, "|"), false
}

func (t *FieldTable) supplied(params Params, canonical string) bool {
	if present(params, canonical) {
		return true
	}
	for _, alias := range t.AliasesOf(canonical) {
		if present(params, alias) {
			return true
		}
	}
	return false
}

// resolve folds params onto canonical names.  A canonical name given directly wins over its aliases,
// aliases are applied in sorted order so the outcome never depends on map iteration.
func (t *FieldTable) resolve(params Params) map[string]string {
	values := make(map[string]string, len(params)+len(t.Defaults))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		c := t.Canonical(k)
		if c == k {
			continue
		}
		if _, set := values[c]; !set {
			values[c] = formatValue(params[k])
		}
	}
	for _, k := range keys {
		if t.Canonical(k) == k {
			values[k] = formatValue(params[k])
		}
	}
	for c, v := range t.Defaults {
		if _, set := values[c]; !set {
			values[c] = v
		}
	}
	return values
}

func present(params Params, name string) bool {
	v, ok := params[name]
	return ok && v != nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
