// Package roster wraps the authoritative user roster and answers grade and
// attribute lookups keyed by normalized identifiers.
package roster

import (
	"fmt"
	"strings"

	"github.com/hrtools/rolecall/modules/intake/domain/normalize"
)

// Required roster sheet columns.
const (
	ColumnUserID     = "User ID"
	ColumnExternalID = "PERSON_ID_EXTERNAL"
	ColumnGroupGrade = "Group Grade"
)

// Marker grades reported by LookupGrade. Neither is a real grade; both are
// user-visible outcomes.
const (
	GradeUserNotFound = "User not found"
	GradeNotValidated = "Not validated"
)

// Entry is one roster row.
type Entry struct {
	UserID     string
	ExternalID string
	Grade      string
	// Attributes holds the descriptive columns by roster column name,
	// Group Grade included.
	Attributes map[string]string
}

// Index answers lookups over the roster by primary (User ID) and alternate
// (PERSON_ID_EXTERNAL) key. A nil Index is valid: every grade lookup
// trivially succeeds with the GradeNotValidated marker.
type Index struct {
	byPrimary   map[string]*Entry
	byAlternate map[string]*Entry
	attributes  []string
}

// NewIndex builds an index from a roster sheet's header and data rows. Both
// lookup keys run through the identifier normalizer. Duplicate keys resolve
// first-match-wins.
func NewIndex(headers []string, rows [][]string) (*Index, error) {
	colIdx := make(map[string]int, len(headers))
	for j, h := range headers {
		colIdx[strings.TrimSpace(h)] = j
	}
	for _, required := range []string{ColumnUserID, ColumnExternalID, ColumnGroupGrade} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("roster sheet is missing the %q column", required)
		}
	}

	attributes := make([]string, 0, len(headers))
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" || h == ColumnUserID || h == ColumnExternalID {
			continue
		}
		attributes = append(attributes, h)
	}

	ix := &Index{
		byPrimary:   make(map[string]*Entry, len(rows)),
		byAlternate: make(map[string]*Entry, len(rows)),
		attributes:  attributes,
	}
	cell := func(row []string, name string) string {
		j := colIdx[name]
		if j >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[j])
	}
	for _, row := range rows {
		e := &Entry{
			UserID:     normalize.FormatIdentifier(cell(row, ColumnUserID)),
			ExternalID: normalize.FormatIdentifier(cell(row, ColumnExternalID)),
			Grade:      normalize.NormalizeGrade(cell(row, ColumnGroupGrade)),
			Attributes: make(map[string]string, len(attributes)),
		}
		for _, attr := range attributes {
			v := cell(row, attr)
			if attr == ColumnGroupGrade {
				v = e.Grade
			}
			e.Attributes[attr] = v
		}
		if e.UserID != "" {
			if _, dup := ix.byPrimary[e.UserID]; !dup {
				ix.byPrimary[e.UserID] = e
			}
		}
		if e.ExternalID != "" {
			if _, dup := ix.byAlternate[e.ExternalID]; !dup {
				ix.byAlternate[e.ExternalID] = e
			}
		}
	}
	return ix, nil
}

// AttributeColumns returns the descriptive column names in roster order.
func (ix *Index) AttributeColumns() []string {
	if ix == nil {
		return nil
	}
	out := make([]string, len(ix.attributes))
	copy(out, ix.attributes)
	return out
}

// LookupPrimary resolves a proposed id against the primary key.
func (ix *Index) LookupPrimary(proposedID string) (*Entry, bool) {
	if ix == nil {
		return nil, false
	}
	e, ok := ix.byPrimary[normalize.FormatIdentifier(proposedID)]
	return e, ok
}

// LookupAlternate resolves a proposed id against the alternate key.
func (ix *Index) LookupAlternate(proposedID string) (*Entry, bool) {
	if ix == nil {
		return nil, false
	}
	e, ok := ix.byAlternate[normalize.FormatIdentifier(proposedID)]
	return e, ok
}

// Lookup resolves a proposed id by primary key, falling back to the
// alternate key.
func (ix *Index) Lookup(proposedID string) (*Entry, bool) {
	if e, ok := ix.LookupPrimary(proposedID); ok {
		return e, true
	}
	return ix.LookupAlternate(proposedID)
}

// LookupGrade reports whether a proposed id resolves to a roster entry and
// the grade to judge it by. found=false is a user-visible outcome carrying
// the GradeUserNotFound marker, not an error. A nil index always succeeds
// with the GradeNotValidated marker.
func (ix *Index) LookupGrade(proposedID string) (bool, string) {
	if ix == nil {
		return true, GradeNotValidated
	}
	e, ok := ix.Lookup(proposedID)
	if !ok {
		return false, GradeUserNotFound
	}
	return true, e.Grade
}
