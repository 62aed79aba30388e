// Package finding defines the structured validation result produced by the
// intake pipeline.
package finding

// Kind classifies a finding.
type Kind string

const (
	KindFileStructure    Kind = "file_structure"
	KindFileRead         Kind = "file_read"
	KindDataCompleteness Kind = "data_completeness"
	KindRolePermission   Kind = "role_permission"
)

// Terminal reports whether the kind stops processing of the file. Structure
// and read failures are terminal; data findings accumulate.
func (k Kind) Terminal() bool {
	return k == KindFileStructure || k == KindFileRead
}

// Finding is one detected issue. Row is the 1-based workbook row and is zero
// for findings not tied to a row; a finding with Role set always carries a
// row.
type Finding struct {
	File        string
	Row         int
	Role        string
	PSID        string
	Name        string
	Grade       string
	Description string
	Kind        Kind
}

// AnyTerminal reports whether the list carries a terminal finding.
func AnyTerminal(findings []Finding) bool {
	for _, f := range findings {
		if f.Kind.Terminal() {
			return true
		}
	}
	return false
}
