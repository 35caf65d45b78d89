package view

import (
	"testing"
	"time"

	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

func TestRowLine(t *testing.T) {
	base := ufwlog.Entry{
		TimeText:    "Jan  5 10:00:00",
		InInterface: "eth0",
		Action:      "BLOCK",
		Direction:   ufwlog.DirectionIn,
		Protocol:    "TCP",
		Source:      "203.0.113.9",
		SourcePort:  ufwlog.Port{Number: 51000, Valid: true},
		Dest:        "192.168.1.2",
		DestPort:    ufwlog.Port{Number: 22, Valid: true},
	}
	ssh := services.Record{Port: 22, Protocol: "tcp", Name: "ssh", Description: "The Secure Shell (SSH) Protocol"}

	v6 := base
	v6.Source = "2001:db8::1"
	v6.SourcePort = ufwlog.Port{}

	tests := []struct {
		name string
		row  Row
		desc bool
		want string
	}{
		{
			name: "no service",
			row:  Row{Entry: base},
			want: "Jan  5 10:00:00 BLOCK IN eth0 TCP 203.0.113.9:51000 -> 192.168.1.2:22",
		},
		{
			name: "service name only",
			row:  Row{Entry: base, Service: ssh, HasService: true},
			want: "Jan  5 10:00:00 BLOCK IN eth0 TCP 203.0.113.9:51000 -> 192.168.1.2:22 [ssh]",
		},
		{
			name: "service with description",
			row:  Row{Entry: base, Service: ssh, HasService: true},
			desc: true,
			want: "Jan  5 10:00:00 BLOCK IN eth0 TCP 203.0.113.9:51000 -> 192.168.1.2:22 [ssh: The Secure Shell (SSH) Protocol]",
		},
		{
			name: "ipv6 source without port",
			row:  Row{Entry: v6},
			want: "Jan  5 10:00:00 BLOCK IN eth0 TCP 2001:db8::1 -> 192.168.1.2:22",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Line(tt.desc); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowCells(t *testing.T) {
	e := ufwlog.Entry{
		Time:      time.Date(2024, time.March, 9, 8, 7, 6, 0, time.UTC),
		Action:    "ALLOW",
		Direction: ufwlog.DirectionOut,
		Protocol:  "ICMP",
		Dest:      "10.0.0.1",
	}
	cells := Row{Entry: e}.Cells(false)
	if len(cells) != len(Columns) {
		t.Fatalf("got %d cells, want %d", len(cells), len(Columns))
	}
	want := []string{"Mar  9 08:07:06", "ALLOW", "OUT", "-", "ICMP", "-", "-", "10.0.0.1", "-", "-"}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %s = %q, want %q", Columns[i], cells[i], want[i])
		}
	}
}

func TestServiceLabel(t *testing.T) {
	ssh := services.Record{Port: 22, Protocol: "tcp", Name: "ssh", Description: "The Secure Shell (SSH) Protocol"}
	bare := services.Record{Port: 9, Protocol: "udp", Name: "discard"}

	tests := []struct {
		name string
		row  Row
		desc bool
		want string
	}{
		{"none", Row{}, true, "-"},
		{"name", Row{Service: ssh, HasService: true}, false, "ssh"},
		{"description", Row{Service: ssh, HasService: true}, true, "ssh: The Secure Shell (SSH) Protocol"},
		{"no description available", Row{Service: bare, HasService: true}, true, "discard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.ServiceLabel(tt.desc); got != tt.want {
				t.Errorf("ServiceLabel(%v) = %q, want %q", tt.desc, got, tt.want)
			}
			cells := tt.row.Cells(tt.desc)
			if cells[len(cells)-1] != tt.want {
				t.Errorf("SERVICE cell = %q, want %q", cells[len(cells)-1], tt.want)
			}
		})
	}
}
