package view

import (
	"github.com/DeBrosOfficial/ufwtail/pkg/netclass"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// Toggles are the quick filters applied on top of the slot filter. The zero
// value shows everything.
type Toggles struct {
	Direction netclass.DirectionFilter
	Flow      netclass.Flow
	HideLocal bool // hide entries whose source is a local address
	HideWAN   bool // hide entries whose source is a WAN address
}

// Matches reports whether e passes every toggle.
func (t Toggles) Matches(e *ufwlog.Entry) bool {
	if !t.Direction.Matches(e) || !t.Flow.Matches(e) {
		return false
	}
	if t.HideLocal && netclass.IsLocal(e.SourceAddr) {
		return false
	}
	if t.HideWAN && netclass.IsWAN(e.SourceAddr) {
		return false
	}
	return true
}
