package view

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
	"github.com/DeBrosOfficial/ufwtail/pkg/netclass"
	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/store"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

const catalogCSV = `Service Name,Port Number,Transport Protocol,Description
ssh,22,tcp,The Secure Shell (SSH) Protocol
domain,53,udp,Domain Name Server
https,443,tcp,http protocol over TLS/SSL
`

func testCatalog(t *testing.T) *services.Catalog {
	t.Helper()
	c, err := services.Load(strings.NewReader(catalogCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func mkEntry(seq uint64, iface, proto, src, dst string, spt, dpt int) ufwlog.Entry {
	e := ufwlog.Entry{
		Seq:         seq,
		InInterface: iface,
		Direction:   ufwlog.DirectionIn,
		Action:      "BLOCK",
		Protocol:    proto,
		Source:      src,
		Dest:        dst,
		SourceAddr:  netip.MustParseAddr(src),
		DestAddr:    netip.MustParseAddr(dst),
	}
	if spt >= 0 {
		e.SourcePort = ufwlog.Port{Number: uint16(spt), Valid: true}
	}
	if dpt >= 0 {
		e.DestPort = ufwlog.Port{Number: uint16(dpt), Valid: true}
	}
	return e
}

func seqs(rows []Row) []uint64 {
	out := make([]uint64, len(rows))
	for i, r := range rows {
		out[i] = r.Entry.Seq
	}
	return out
}

func fill(n int) *store.Store {
	st := store.New(100)
	for i := 1; i <= n; i++ {
		iface := "eth0"
		if i%2 == 0 {
			iface = "eth1"
		}
		st.Append(mkEntry(uint64(i), iface, "TCP", "203.0.113.1", "192.168.1.2", 40000, 22))
	}
	return st
}

func TestRecomputeFilters(t *testing.T) {
	p := New(testCatalog(t))
	st := fill(6)

	p.Recompute(st, filter.NewSet(), Toggles{})
	if p.Len() != 6 {
		t.Fatalf("Len = %d, want 6", p.Len())
	}

	set := filter.NewSet()
	_ = set.SetSlot(filter.SlotInterface, "eth1")
	p.Recompute(st, set, Toggles{})
	got := seqs(p.Rows())
	if len(got) != 3 || got[0] != 2 || got[1] != 4 || got[2] != 6 {
		t.Errorf("rows = %v, want [2 4 6]", got)
	}
}

func TestAnnotation(t *testing.T) {
	p := New(testCatalog(t))
	st := store.New(10)
	st.Append(mkEntry(1, "eth0", "TCP", "203.0.113.1", "192.168.1.2", 40000, 22))
	st.Append(mkEntry(2, "eth0", "UDP", "192.168.1.2", "1.1.1.1", 53, 40000))
	st.Append(mkEntry(3, "eth0", "UDP", "192.168.1.2", "1.1.1.1", 22, 40000))
	st.Append(mkEntry(4, "eth0", "ICMP", "192.168.1.2", "1.1.1.1", -1, -1))

	p.Recompute(st, nil, Toggles{})
	rows := p.Rows()

	if !rows[0].HasService || rows[0].Service.Name != "ssh" {
		t.Errorf("dst port lookup: %+v", rows[0].Service)
	}
	if !rows[1].HasService || rows[1].Service.Name != "domain" {
		t.Errorf("src port fallback: %+v", rows[1].Service)
	}
	if rows[2].HasService {
		t.Errorf("ssh is tcp only, got %+v", rows[2].Service)
	}
	if rows[3].HasService {
		t.Errorf("no ports, got %+v", rows[3].Service)
	}
}

func TestToggles(t *testing.T) {
	p := New(testCatalog(t))
	st := store.New(10)
	st.Append(mkEntry(1, "eth0", "TCP", "203.0.113.1", "192.168.1.2", 1, 22)) // wan -> local
	st.Append(mkEntry(2, "eth0", "TCP", "192.168.1.5", "192.168.1.2", 1, 22)) // local -> local
	st.Append(mkEntry(3, "eth0", "TCP", "192.168.1.5", "8.8.8.8", 1, 443))    // local -> wan
	out := mkEntry(4, "", "TCP", "192.168.1.5", "8.8.8.8", 1, 443)
	out.OutInterface = "eth0"
	out.Direction = ufwlog.DirectionOut
	st.Append(out)

	tests := []struct {
		name    string
		toggles Toggles
		want    []uint64
	}{
		{"defaults", Toggles{}, []uint64{1, 2, 3, 4}},
		{"hide local", Toggles{HideLocal: true}, []uint64{1}},
		{"hide wan", Toggles{HideWAN: true}, []uint64{2, 3, 4}},
		{"local to local", Toggles{Flow: netclass.FlowLocalToLocal}, []uint64{2}},
		{"local to external", Toggles{Flow: netclass.FlowLocalToExternal}, []uint64{3, 4}},
		{"direction out", Toggles{Direction: netclass.DirectionOut}, []uint64{4}},
		{"direction fwd", Toggles{Direction: netclass.DirectionForward}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Recompute(st, nil, tt.toggles)
			got := seqs(p.Rows())
			if len(got) != len(tt.want) {
				t.Fatalf("rows = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("rows = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCursorFollowsNewest(t *testing.T) {
	p := New(testCatalog(t))
	st := fill(3)
	p.Recompute(st, nil, Toggles{})
	if p.Cursor() != 2 || !p.Following() {
		t.Fatalf("cursor = %d following = %v", p.Cursor(), p.Following())
	}
	st.Append(mkEntry(4, "eth0", "TCP", "203.0.113.1", "192.168.1.2", 1, 22))
	p.Recompute(st, nil, Toggles{})
	if row, _ := p.SelectedRow(); row.Entry.Seq != 4 {
		t.Errorf("selected = %d, want newest", row.Entry.Seq)
	}
}

func TestCursorAnchoredBySequence(t *testing.T) {
	p := New(testCatalog(t))
	st := fill(6)
	p.Recompute(st, nil, Toggles{})

	p.MoveCursor(-2) // seq 4
	if p.Following() {
		t.Fatal("moving up must leave follow mode")
	}
	if row, _ := p.SelectedRow(); row.Entry.Seq != 4 {
		t.Fatalf("selected = %d, want 4", row.Entry.Seq)
	}

	set := filter.NewSet()
	_ = set.SetSlot(filter.SlotInterface, "eth1")
	p.Recompute(st, set, Toggles{})
	if row, _ := p.SelectedRow(); row.Entry.Seq != 4 {
		t.Errorf("anchor lost: selected = %d, cursor = %d", row.Entry.Seq, p.Cursor())
	}

	st.Append(mkEntry(7, "eth1", "TCP", "203.0.113.1", "192.168.1.2", 1, 22))
	p.Recompute(st, set, Toggles{})
	if row, _ := p.SelectedRow(); row.Entry.Seq != 4 {
		t.Errorf("new data moved the anchor to %d", row.Entry.Seq)
	}
}

func TestCursorClampedWhenAnchorDisappears(t *testing.T) {
	p := New(testCatalog(t))
	st := fill(6)
	p.Recompute(st, nil, Toggles{})
	p.MoveCursor(-1) // seq 5, cursor 4

	set := filter.NewSet()
	_ = set.SetSlot(filter.SlotInterface, "eth1")
	p.Recompute(st, set, Toggles{})
	if p.Cursor() != 2 {
		t.Errorf("cursor = %d, want clamp to 2", p.Cursor())
	}

	_ = set.SetSlot(filter.SlotInterface, "wg0")
	p.Recompute(st, set, Toggles{})
	if p.Cursor() != 0 || p.Len() != 0 {
		t.Errorf("empty projection: cursor=%d len=%d", p.Cursor(), p.Len())
	}
	if _, ok := p.SelectedRow(); ok {
		t.Error("no row can be selected when empty")
	}
}

func TestMoveCursorBounds(t *testing.T) {
	p := New(testCatalog(t))
	p.MoveCursor(5)
	if p.Cursor() != 0 {
		t.Fatalf("cursor on empty = %d", p.Cursor())
	}
	p.Recompute(fill(3), nil, Toggles{})
	p.MoveCursor(-100)
	if p.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", p.Cursor())
	}
	p.MoveCursor(100)
	if p.Cursor() != 2 || !p.Following() {
		t.Errorf("cursor = %d following = %v", p.Cursor(), p.Following())
	}
}

func TestSnapshot(t *testing.T) {
	p := New(testCatalog(t))
	st := fill(4)
	p.Recompute(st, nil, Toggles{})
	snap := p.Snapshot()

	st.Append(mkEntry(5, "eth0", "TCP", "203.0.113.1", "192.168.1.2", 1, 22))
	p.Recompute(st, nil, Toggles{})

	if len(snap.Rows) != 4 {
		t.Errorf("snapshot changed after recompute: %d rows", len(snap.Rows))
	}
	if snap.LastSeq() != 4 {
		t.Errorf("LastSeq = %d", snap.LastSeq())
	}
	next := p.Snapshot()
	if next.Version <= snap.Version {
		t.Errorf("version did not advance: %d -> %d", snap.Version, next.Version)
	}
	if got := seqs(next.Since(3)); len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Errorf("Since(3) = %v", got)
	}
	if got := next.Since(99); len(got) != 0 {
		t.Errorf("Since(99) = %v", got)
	}
	if got := next.Since(0); len(got) != 5 {
		t.Errorf("Since(0) = %v", got)
	}
	var nilSnap *Snapshot
	if nilSnap.LastSeq() != 0 || nilSnap.Since(0) != nil {
		t.Error("nil snapshot must be empty")
	}
}
