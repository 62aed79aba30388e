package services

import (
	"github.com/sirupsen/logrus"

	"github.com/hrtools/rolecall/modules/intake/domain/normalize"
	"github.com/hrtools/rolecall/modules/intake/domain/roles"
	"github.com/hrtools/rolecall/modules/intake/domain/roster"
	"github.com/hrtools/rolecall/modules/intake/domain/submission"
	"github.com/hrtools/rolecall/pkg/excel"
)

// EnrichmentService joins a submission table against the roster to attach
// descriptive attribute columns per role holder. It works on a private copy
// and only ever appends columns; unmatched rows are kept untouched.
type EnrichmentService struct {
	logger *logrus.Logger
}

func NewEnrichmentService(logger *logrus.Logger) *EnrichmentService {
	return &EnrichmentService{logger: logger}
}

// Enrich returns a copy of t with roster attributes appended, namespaced
// under each role, and columns regrouped so each role's columns are
// contiguous in canonical role order.
func (s *EnrichmentService) Enrich(t *excel.Table, ix *roster.Index) *excel.Table {
	out := t.Clone()
	for _, role := range roles.All() {
		s.enrichRole(out, ix, role)
	}
	regroupColumns(out)
	return out
}

// enrichRole resolves each row's PS ID for one role: a first pass against
// the roster primary key, then an alternate-key pass for rows the first
// pass missed. The second pass never overwrites a non-blank attribute.
func (s *EnrichmentService) enrichRole(t *excel.Table, ix *roster.Index, role string) {
	psIdx, ok := t.ColumnIndex(submission.PSIDKey(role))
	if !ok {
		return
	}
	attrs := ix.AttributeColumns()
	if len(attrs) == 0 {
		return
	}

	n := t.NumRows()
	primary := make([]*roster.Entry, n)
	alternate := make([]*roster.Entry, n)
	for i := 0; i < n; i++ {
		id := normalize.FormatIdentifier(t.CellAt(i, psIdx))
		if id == "" {
			continue
		}
		if e, ok := ix.LookupPrimary(id); ok {
			primary[i] = e
			continue
		}
		if e, ok := ix.LookupAlternate(id); ok {
			alternate[i] = e
		}
	}

	for _, attr := range attrs {
		values := make([]string, n)
		for i := 0; i < n; i++ {
			switch {
			case primary[i] != nil:
				values[i] = primary[i].Attributes[attr]
			case alternate[i] != nil:
				values[i] = alternate[i].Attributes[attr]
			}
		}
		// Keys are namespaced under the role, so appending can never
		// collide with an existing submission column.
		key := excel.Key(submission.CategoryRoster, role, attr)
		if t.HasColumn(key) {
			s.fillBlanks(t, key, values)
			continue
		}
		if err := t.AppendColumn(key, values); err != nil {
			s.logger.WithField("column", key.Title()).WithError(err).Warn("skipping enrichment column")
		}
	}
}

// fillBlanks merges values into an existing column without overwriting
// non-blank cells.
func (s *EnrichmentService) fillBlanks(t *excel.Table, key excel.ColumnKey, values []string) {
	j, ok := t.ColumnIndex(key)
	if !ok {
		return
	}
	for i, v := range values {
		if v != "" && t.CellAt(i, j) == "" {
			t.SetCellAt(i, j, v)
		}
	}
}

// regroupColumns reorders columns so non-role columns keep their original
// relative order and precede the role blocks; each role block is ordered
// PS ID, Name, then the remaining role columns in their current order.
func regroupColumns(t *excel.Table) {
	cols := t.Columns()
	order := make([]int, 0, len(cols))
	for j, k := range cols {
		if !submission.IsRoleColumn(k) {
			order = append(order, j)
		}
	}
	for _, role := range roles.All() {
		lead := []excel.ColumnKey{submission.PSIDKey(role), submission.NameKey(role)}
		for _, key := range lead {
			if j, ok := t.ColumnIndex(key); ok {
				order = append(order, j)
			}
		}
		for j, k := range cols {
			if !submission.IsRoleColumn(k) || k.Role.Text != role {
				continue
			}
			if k == lead[0] || k == lead[1] {
				continue
			}
			order = append(order, j)
		}
	}
	// Only fails if order is not a permutation, which the construction
	// above guarantees it is.
	_ = t.ReorderColumns(order)
}
