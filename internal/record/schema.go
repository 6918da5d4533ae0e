// SPDX-License-Identifier: Apache-2.0

package record

import "strings"

// Role tells whether a field is entered by the operator or computed.
type Role string

const (
	RoleInput   Role = "input"
	RoleDerived Role = "derived"
)

// FieldSpec describes one position of the readings record.
type FieldSpec struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Role     Role   `json:"role"`
}

// Editable reports whether the field may be changed by hand.
// Derived fields are only written by a successful computation or a reset.
func (f FieldSpec) Editable() bool {
	return f.Role == RoleInput
}

// Field names in canonical order. The same strings are used as spreadsheet
// headers and as the model's feature names.
const (
	IronFeed          = "% Iron Feed"
	SilicaFeed        = "% Silica Feed"
	StarchFlow        = "Starch Flow"
	AminaFlow         = "Amina Flow"
	OrePulpFlow       = "Ore Pulp Flow"
	OrePulpPH         = "Ore Pulp pH"
	OrePulpDensity    = "Ore Pulp Density"
	IronConcentrate   = "% Iron Concentrate"
	SilicaConcentrate = "% Silica Concentrate"
)

const (
	// InputCount is the number of operator-entered fields.
	InputCount = 21
	// FieldCount is the full record width, inputs plus derived fields.
	FieldCount = InputCount + 2
)

var (
	fields = []FieldSpec{
		{Name: IronFeed},
		{Name: SilicaFeed},
		{Name: StarchFlow},
		{Name: AminaFlow},
		{Name: OrePulpFlow},
		{Name: OrePulpPH},
		{Name: OrePulpDensity},
		{Name: "Flotation Column 01 Air Flow"},
		{Name: "Flotation Column 02 Air Flow"},
		{Name: "Flotation Column 03 Air Flow"},
		{Name: "Flotation Column 04 Air Flow"},
		{Name: "Flotation Column 05 Air Flow"},
		{Name: "Flotation Column 06 Air Flow"},
		{Name: "Flotation Column 07 Air Flow"},
		{Name: "Flotation Column 01 Level"},
		{Name: "Flotation Column 02 Level"},
		{Name: "Flotation Column 03 Level"},
		{Name: "Flotation Column 04 Level"},
		{Name: "Flotation Column 05 Level"},
		{Name: "Flotation Column 06 Level"},
		{Name: "Flotation Column 07 Level"},
		{Name: IronConcentrate, Role: RoleDerived},
		{Name: SilicaConcentrate, Role: RoleDerived},
	}
	byName   = make(map[string]int, len(fields))
	byFolded = make(map[string]int, len(fields))
)

func init() {
	for i := range fields {
		fields[i].Position = i
		if fields[i].Role == "" {
			fields[i].Role = RoleInput
		}
		byName[fields[i].Name] = i
		byFolded[strings.ToLower(fields[i].Name)] = i
	}
}

// Fields returns a copy of the canonical field list.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fields))
	copy(out, fields)
	return out
}

// Names returns all 23 field names in canonical order.
func Names() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// InputNames returns the 21 input field names in canonical order.
func InputNames() []string {
	return Names()[:InputCount]
}

// Lookup finds a field by its exact name.
func Lookup(name string) (FieldSpec, bool) {
	i, ok := byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return fields[i], true
}

// LookupFold finds a field ignoring case and surrounding whitespace.
func LookupFold(name string) (FieldSpec, bool) {
	i, ok := byFolded[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FieldSpec{}, false
	}
	return fields[i], true
}

// At returns the field at a canonical position.
func At(position int) (FieldSpec, bool) {
	if position < 0 || position >= len(fields) {
		return FieldSpec{}, false
	}
	return fields[position], true
}
