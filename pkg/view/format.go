package view

import (
	"strings"

	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// TimeLayout is used when an entry carries no raw timestamp text.
const TimeLayout = "Jan _2 15:04:05"

// Columns names the fields returned by Row.Cells, in order.
var Columns = []string{"TIME", "ACTION", "DIR", "IFACE", "PROTO", "SRC", "SPT", "DST", "DPT", "SERVICE"}

// Cells returns the display fields of a row, one per entry of Columns.
func (r Row) Cells(withDescription bool) []string {
	e := &r.Entry
	return []string{
		displayTime(e),
		e.Action,
		e.Direction.String(),
		dash(e.Interface()),
		e.Protocol,
		dash(e.Source),
		dash(e.SourcePort.String()),
		dash(e.Dest),
		dash(e.DestPort.String()),
		r.ServiceLabel(withDescription),
	}
}

// ServiceLabel is the annotated service name, or "-" when none matched.
// With withDescription the registry description follows the name.
func (r Row) ServiceLabel(withDescription bool) string {
	if !r.HasService {
		return "-"
	}
	if withDescription && r.Service.Description != "" {
		return r.Service.Name + ": " + r.Service.Description
	}
	return r.Service.Name
}

// Line renders the row as one space separated line for plain output.
func (r Row) Line(withDescription bool) string {
	var b strings.Builder
	e := &r.Entry
	b.WriteString(displayTime(e))
	b.WriteString(" ")
	b.WriteString(e.Action)
	b.WriteString(" ")
	b.WriteString(e.Direction.String())
	b.WriteString(" ")
	b.WriteString(dash(e.Interface()))
	b.WriteString(" ")
	b.WriteString(e.Protocol)
	b.WriteString(" ")
	b.WriteString(endpoint(e.Source, e.SourcePort))
	b.WriteString(" -> ")
	b.WriteString(endpoint(e.Dest, e.DestPort))
	if r.HasService {
		b.WriteString(" [")
		b.WriteString(r.Service.Name)
		if withDescription && r.Service.Description != "" {
			b.WriteString(": ")
			b.WriteString(r.Service.Description)
		}
		b.WriteString("]")
	}
	return b.String()
}

func displayTime(e *ufwlog.Entry) string {
	if e.TimeText != "" {
		return e.TimeText
	}
	return e.Time.Format(TimeLayout)
}

func endpoint(addr string, port ufwlog.Port) string {
	addr = dash(addr)
	if !port.Valid {
		return addr
	}
	if strings.Contains(addr, ":") {
		return "[" + addr + "]:" + port.String()
	}
	return addr + ":" + port.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
