package api

import (
	"time"

	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
	"github.com/DeBrosOfficial/ufwtail/pkg/hoststat"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
	"github.com/DeBrosOfficial/ufwtail/pkg/view"
)

// Row is the wire form of one visible entry.
type Row struct {
	Seq        uint64           `json:"seq"`
	Time       time.Time        `json:"time"`
	TimeText   string           `json:"time_text,omitempty"`
	Host       string           `json:"host,omitempty"`
	Action     string           `json:"action"`
	ActionKind string           `json:"action_kind"`
	Direction  string           `json:"direction"`
	In         string           `json:"in,omitempty"`
	Out        string           `json:"out,omitempty"`
	Protocol   string           `json:"protocol"`
	Source     string           `json:"src,omitempty"`
	SourcePort *uint16          `json:"spt,omitempty"`
	Dest       string           `json:"dst,omitempty"`
	DestPort   *uint16          `json:"dpt,omitempty"`
	Service    *services.Record `json:"service,omitempty"`
	Raw        string           `json:"raw"`
}

func toRow(r view.Row) Row {
	e := &r.Entry
	out := Row{
		Seq:        e.Seq,
		Time:       e.Time,
		TimeText:   e.TimeText,
		Host:       e.Host,
		Action:     e.Action,
		ActionKind: e.ActionKind.String(),
		Direction:  e.Direction.String(),
		In:         e.InInterface,
		Out:        e.OutInterface,
		Protocol:   e.Protocol,
		Source:     e.Source,
		SourcePort: portPtr(e.SourcePort),
		Dest:       e.Dest,
		DestPort:   portPtr(e.DestPort),
		Raw:        e.Raw,
	}
	if r.HasService {
		svc := r.Service
		out.Service = &svc
	}
	return out
}

func toRows(rows []view.Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = toRow(r)
	}
	return out
}

func portPtr(p ufwlog.Port) *uint16 {
	if !p.Valid {
		return nil
	}
	n := p.Number
	return &n
}

// EntriesResponse is returned by GET /v1/entries.
type EntriesResponse struct {
	Version uint64 `json:"version"`
	Total   int    `json:"total"`
	Cursor  int    `json:"cursor"`
	Rows    []Row  `json:"rows"`
}

// StatsResponse is returned by GET /v1/stats.
type StatsResponse struct {
	pipeline.Stats
	Subscribers int                `json:"subscribers"`
	Published   time.Time          `json:"published"`
	Host        *hoststat.Snapshot `json:"host,omitempty"`
}

// SlotValue describes one filter slot.
type SlotValue struct {
	Slot  int    `json:"slot"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// FiltersResponse is returned by GET /v1/filters.
type FiltersResponse struct {
	Slots      []SlotValue `json:"slots"`
	Direction  string      `json:"direction"`
	Flow       string      `json:"flow"`
	HideLocal  bool        `json:"hide_local"`
	HideWAN    bool        `json:"hide_wan"`
	Interfaces []string    `json:"interfaces"`
	Selected   string      `json:"selected,omitempty"`
}

func toFilters(st *pipeline.State) FiltersResponse {
	slots := make([]SlotValue, 0, filter.NumSlots)
	for _, s := range filter.Slots() {
		slots = append(slots, SlotValue{Slot: int(s), Name: s.String(), Value: st.Filters[s-1]})
	}
	ifaces := st.Interfaces
	if ifaces == nil {
		ifaces = []string{}
	}
	return FiltersResponse{
		Slots:      slots,
		Direction:  st.Toggles.Direction.String(),
		Flow:       st.Toggles.Flow.String(),
		HideLocal:  st.Toggles.HideLocal,
		HideWAN:    st.Toggles.HideWAN,
		Interfaces: ifaces,
		Selected:   st.Selected,
	}
}

// Message types sent on the stream.
const (
	MessageHello   = "hello"
	MessageEntries = "entries"
)

// StreamMessage is one websocket frame.
type StreamMessage struct {
	Type       string          `json:"type"`
	Subscriber string          `json:"subscriber,omitempty"`
	LastSeq    uint64          `json:"last_seq"`
	Rows       []Row           `json:"rows,omitempty"`
	Stats      *pipeline.Stats `json:"stats,omitempty"`
}
