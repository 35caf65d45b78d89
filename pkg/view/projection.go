// Package view derives the visible, service-annotated rows from the store.
package view

import (
	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/store"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// Row is one visible entry with its service annotation.
type Row struct {
	Entry      ufwlog.Entry
	Service    services.Record
	HasService bool
}

// Projection holds the current rows and the cursor. A new rows slice is
// built on every recompute, so slices handed out earlier stay valid.
type Projection struct {
	catalog *services.Catalog
	rows    []Row
	cursor  int
	follow  bool
	version uint64
}

// New creates an empty projection annotating rows from catalog. The cursor
// starts in follow mode.
func New(catalog *services.Catalog) *Projection {
	return &Projection{catalog: catalog, follow: true}
}

// Recompute rebuilds the rows from st. The cursor stays on the previously
// selected entry when it is still visible, is clamped otherwise, and tracks
// the newest row while in follow mode.
func (p *Projection) Recompute(st *store.Store, set *filter.Set, t Toggles) {
	var anchor uint64
	if row, ok := p.SelectedRow(); ok {
		anchor = row.Entry.Seq
	}

	rows := make([]Row, 0, len(p.rows))
	newCursor := -1
	st.Each(func(e *ufwlog.Entry) bool {
		if !filter.Matches(e, set) || !t.Matches(e) {
			return true
		}
		if anchor != 0 && e.Seq == anchor {
			newCursor = len(rows)
		}
		rows = append(rows, p.annotate(e))
		return true
	})

	p.rows = rows
	p.version++
	switch {
	case p.follow:
		p.cursor = len(rows) - 1
	case newCursor >= 0:
		p.cursor = newCursor
	default:
		p.cursor = min(p.cursor, len(rows)-1)
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *Projection) annotate(e *ufwlog.Entry) Row {
	row := Row{Entry: *e}
	if e.DestPort.Valid {
		if rec, ok := p.catalog.Lookup(e.DestPort.Number, e.Protocol); ok {
			row.Service, row.HasService = rec, true
			return row
		}
	}
	if e.SourcePort.Valid {
		if rec, ok := p.catalog.Lookup(e.SourcePort.Number, e.Protocol); ok {
			row.Service, row.HasService = rec, true
		}
	}
	return row
}

// Rows returns the visible rows in arrival order. Callers must not modify
// the slice.
func (p *Projection) Rows() []Row { return p.rows }

// Len returns the number of visible rows.
func (p *Projection) Len() int { return len(p.rows) }

// Cursor returns the selected row index; it is 0 when there are no rows.
func (p *Projection) Cursor() int { return p.cursor }

// Following reports whether the cursor tracks the newest row.
func (p *Projection) Following() bool { return p.follow }

// MoveCursor moves the selection by delta rows, clamped to the visible range.
// Landing on the last row turns follow mode on; moving up turns it off.
func (p *Projection) MoveCursor(delta int) {
	if len(p.rows) == 0 {
		p.cursor = 0
		return
	}
	p.cursor = max(0, min(p.cursor+delta, len(p.rows)-1))
	p.follow = p.cursor == len(p.rows)-1
}

// SelectedRow returns the row under the cursor.
func (p *Projection) SelectedRow() (Row, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return Row{}, false
	}
	return p.rows[p.cursor], true
}

// Snapshot is an immutable copy of the projection for other goroutines.
type Snapshot struct {
	Version uint64
	Rows    []Row
	Cursor  int
}

// Snapshot returns the current state. Rows are shared, not copied, since
// they are never modified after a recompute.
func (p *Projection) Snapshot() *Snapshot {
	return &Snapshot{Version: p.version, Rows: p.rows, Cursor: p.cursor}
}

// LastSeq returns the sequence number of the newest row, or 0.
func (s *Snapshot) LastSeq() uint64 {
	if s == nil || len(s.Rows) == 0 {
		return 0
	}
	return s.Rows[len(s.Rows)-1].Entry.Seq
}

// Since returns the rows newer than seq.
func (s *Snapshot) Since(seq uint64) []Row {
	if s == nil {
		return nil
	}
	for i := len(s.Rows); i > 0; i-- {
		if s.Rows[i-1].Entry.Seq <= seq {
			return s.Rows[i:]
		}
	}
	return s.Rows
}
