package filter

import (
	"net/netip"
	"testing"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

func sample() *ufwlog.Entry {
	return &ufwlog.Entry{
		InInterface: "eth0",
		Action:      "BLOCK",
		Protocol:    "TCP",
		Source:      "203.0.113.7",
		SourceAddr:  netip.MustParseAddr("203.0.113.7"),
		SourcePort:  ufwlog.Port{Number: 51234, Valid: true},
		Dest:        "192.168.1.10",
		DestAddr:    netip.MustParseAddr("192.168.1.10"),
		DestPort:    ufwlog.Port{Number: 22, Valid: true},
	}
}

func TestEmptySetMatchesEverything(t *testing.T) {
	if !Matches(sample(), NewSet()) {
		t.Error("empty set must match")
	}
	if !Matches(&ufwlog.Entry{}, NewSet()) {
		t.Error("empty set must match an empty entry")
	}
	if !Matches(sample(), nil) {
		t.Error("nil set must match")
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		slot  Slot
		value string
		want  bool
	}{
		{"iface in", SlotInterface, "eth0", true},
		{"iface other", SlotInterface, "eth1", false},
		{"iface case sensitive", SlotInterface, "ETH0", false},
		{"proto lower", SlotProtocol, "tcp", true},
		{"proto udp", SlotProtocol, "udp", false},
		{"action mixed case", SlotAction, "Block", true},
		{"action allow", SlotAction, "ALLOW", false},
		{"action partial", SlotAction, "BLO", false},
		{"src exact", SlotSource, "203.0.113.7", true},
		{"src other", SlotSource, "203.0.113.8", false},
		{"src cidr", SlotSource, "203.0.113.0/24", true},
		{"src cidr unmasked", SlotSource, "203.0.113.99/24", true},
		{"src cidr miss", SlotSource, "10.0.0.0/8", false},
		{"dst exact", SlotDestination, "192.168.1.10", true},
		{"dst cidr", SlotDestination, "192.168.0.0/16", true},
		{"dst v6 prefix", SlotDestination, "fe80::/10", false},
		{"port dst", SlotPort, "22", true},
		{"port src", SlotPort, "51234", true},
		{"port miss", SlotPort, "443", false},
		{"port zero", SlotPort, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSet()
			if err := set.SetSlot(tt.slot, tt.value); err != nil {
				t.Fatalf("SetSlot: %v", err)
			}
			if got := Matches(sample(), set); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAbsentFieldNeverMatches(t *testing.T) {
	bare := &ufwlog.Entry{Action: "BLOCK", Protocol: "ICMP"}
	for _, tc := range []struct {
		slot  Slot
		value string
	}{
		{SlotInterface, "eth0"},
		{SlotSource, "10.0.0.1"},
		{SlotDestination, "10.0.0.0/8"},
		{SlotPort, "0"},
	} {
		set := NewSet()
		if err := set.SetSlot(tc.slot, tc.value); err != nil {
			t.Fatalf("SetSlot(%s): %v", tc.slot, err)
		}
		if Matches(bare, set) {
			t.Errorf("%s=%s matched an entry without that field", tc.slot, tc.value)
		}
	}
}

func TestAndSemantics(t *testing.T) {
	set := NewSet()
	_ = set.SetSlot(SlotInterface, "eth0")
	_ = set.SetSlot(SlotPort, "22")
	if !Matches(sample(), set) {
		t.Fatal("both slots satisfied")
	}
	_ = set.SetSlot(SlotProtocol, "udp")
	if Matches(sample(), set) {
		t.Fatal("one failing slot must reject")
	}
	if set.Active() != 3 {
		t.Errorf("Active = %d, want 3", set.Active())
	}
}

func TestSetSlotValidation(t *testing.T) {
	tests := []struct {
		name  string
		slot  Slot
		value string
	}{
		{"bad slot zero", Slot(0), "x"},
		{"bad slot seven", Slot(7), "x"},
		{"iface with space", SlotInterface, "eth 0"},
		{"bad ip", SlotSource, "300.1.1.1"},
		{"bad cidr", SlotDestination, "10.0.0.0/33"},
		{"hostname", SlotSource, "example.com"},
		{"port negative", SlotPort, "-1"},
		{"port too big", SlotPort, "65536"},
		{"port text", SlotPort, "ssh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSet()
			_ = set.SetSlot(SlotPort, "80")
			err := set.SetSlot(tt.slot, tt.value)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if v, ok := set.Slot(SlotPort); !ok || v.Raw != "80" {
				t.Errorf("failed edit changed another slot: %+v %v", v, ok)
			}
		})
	}
}

func TestFailedEditKeepsPrevious(t *testing.T) {
	set := NewSet()
	_ = set.SetSlot(SlotSource, "10.0.0.1")
	if err := set.SetSlot(SlotSource, "nope"); err == nil {
		t.Fatal("expected error")
	}
	if v, ok := set.Slot(SlotSource); !ok || v.Raw != "10.0.0.1" {
		t.Errorf("slot = %+v %v, want previous value", v, ok)
	}
}

func TestClear(t *testing.T) {
	set := NewSet()
	for _, s := range Slots() {
		_ = set.SetSlot(s, map[Slot]string{
			SlotInterface:   "eth0",
			SlotProtocol:    "tcp",
			SlotAction:      "BLOCK",
			SlotSource:      "1.2.3.4",
			SlotDestination: "10.0.0.0/8",
			SlotPort:        "22",
		}[s])
	}
	if set.Active() != NumSlots {
		t.Fatalf("Active = %d", set.Active())
	}

	if err := set.SetSlot(SlotProtocol, "  "); err != nil {
		t.Fatalf("empty value must clear: %v", err)
	}
	if _, ok := set.Slot(SlotProtocol); ok {
		t.Error("protocol slot should be cleared")
	}

	set.ClearSlot(SlotPort)
	set.ClearSlot(Slot(42))
	if set.Active() != 4 {
		t.Errorf("Active = %d, want 4", set.Active())
	}

	values := set.Values()
	if values[SlotInterface-1] != "eth0" || values[SlotPort-1] != "" {
		t.Errorf("Values = %v", values)
	}

	set.ClearAll()
	if set.Active() != 0 {
		t.Errorf("Active after ClearAll = %d", set.Active())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	set := NewSet()
	_ = set.SetSlot(SlotInterface, "eth0")
	clone := set.Clone()
	set.ClearAll()
	if _, ok := clone.Slot(SlotInterface); !ok {
		t.Error("clone lost its slot")
	}
}

func TestSlotNames(t *testing.T) {
	if SlotDestination.String() != "destination" || Slot(9).String() != "slot(9)" {
		t.Errorf("unexpected names %q %q", SlotDestination, Slot(9))
	}
	v, err := parseValue(SlotSource, "10.0.0.0/8")
	if err != nil || v.Mode != ModePrefix {
		t.Errorf("CIDR must select prefix mode, got %v %v", v.Mode, err)
	}
}
