// Package filter implements the six-slot entry filter. Non-empty slots are
// combined with AND; an empty set matches every entry.
package filter

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// Slot identifies one filter position. The mapping from index to field is
// fixed.
type Slot int

const (
	SlotInterface Slot = iota + 1
	SlotProtocol
	SlotAction
	SlotSource
	SlotDestination
	SlotPort
)

// NumSlots is the number of filter slots.
const NumSlots = 6

var slotNames = [NumSlots + 1]string{"", "interface", "protocol", "action", "source", "destination", "port"}

func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return slotNames[s]
}

// Valid reports whether s is one of the six slots.
func (s Slot) Valid() bool {
	return s >= SlotInterface && s <= SlotPort
}

// Slots lists every slot in index order.
func Slots() []Slot {
	return []Slot{SlotInterface, SlotProtocol, SlotAction, SlotSource, SlotDestination, SlotPort}
}

// Mode is how a slot value is compared.
type Mode int

const (
	ModeExact Mode = iota
	ModePrefix
)

func (m Mode) String() string {
	if m == ModePrefix {
		return "prefix"
	}
	return "exact"
}

// Value is the validated content of an active slot.
type Value struct {
	Raw    string
	Mode   Mode
	addr   netip.Addr
	prefix netip.Prefix
	port   uint16
}

// Set holds the six slots. The zero value is an empty set.
type Set struct {
	slots  [NumSlots]Value
	active [NumSlots]bool
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// SetSlot validates value and replaces slot. An empty value clears the slot.
// On error the slot keeps its previous value.
func (s *Set) SetSlot(slot Slot, value string) error {
	if !slot.Valid() {
		return errors.NewValidationError("slot", fmt.Sprintf("unknown filter slot %d", int(slot)), int(slot))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		s.ClearSlot(slot)
		return nil
	}

	v, err := parseValue(slot, value)
	if err != nil {
		return err
	}
	s.slots[slot-1] = v
	s.active[slot-1] = true
	return nil
}

func parseValue(slot Slot, value string) (Value, error) {
	v := Value{Raw: value, Mode: ModeExact}

	switch slot {
	case SlotInterface, SlotProtocol:
		if strings.ContainsAny(value, " \t") {
			return Value{}, errors.NewValidationError(slot.String(), "must be a single token", value)
		}
	case SlotSource, SlotDestination:
		if strings.Contains(value, "/") {
			p, err := netip.ParsePrefix(value)
			if err != nil {
				return Value{}, errors.NewValidationError(slot.String(), "not a valid CIDR prefix", value)
			}
			v.Mode = ModePrefix
			v.prefix = p.Masked()
			return v, nil
		}
		a, err := netip.ParseAddr(value)
		if err != nil {
			return Value{}, errors.NewValidationError(slot.String(), "not a valid IP address", value)
		}
		v.addr = a.Unmap()
	case SlotPort:
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return Value{}, errors.NewValidationError(slot.String(), "must be an integer between 0 and 65535", value)
		}
		v.port = uint16(n)
	}
	return v, nil
}

// ClearSlot empties slot. Unknown slots are ignored.
func (s *Set) ClearSlot(slot Slot) {
	if !slot.Valid() {
		return
	}
	s.slots[slot-1] = Value{}
	s.active[slot-1] = false
}

// ClearAll empties every slot.
func (s *Set) ClearAll() {
	*s = Set{}
}

// Slot returns the value of slot and whether it is active.
func (s *Set) Slot(slot Slot) (Value, bool) {
	if !slot.Valid() || !s.active[slot-1] {
		return Value{}, false
	}
	return s.slots[slot-1], true
}

// Active returns the number of non-empty slots.
func (s *Set) Active() int {
	n := 0
	for _, a := range s.active {
		if a {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c := *s
	return &c
}

// Values returns the raw text of every slot, empty for inactive ones.
func (s *Set) Values() [NumSlots]string {
	var out [NumSlots]string
	for i := range s.slots {
		if s.active[i] {
			out[i] = s.slots[i].Raw
		}
	}
	return out
}

// Matches reports whether e satisfies every active slot of set. A nil or
// empty set matches everything.
func Matches(e *ufwlog.Entry, set *Set) bool {
	if set == nil {
		return true
	}
	for i, active := range set.active {
		if !active {
			continue
		}
		if !matchSlot(Slot(i+1), set.slots[i], e) {
			return false
		}
	}
	return true
}

func matchSlot(slot Slot, v Value, e *ufwlog.Entry) bool {
	switch slot {
	case SlotInterface:
		return e.InInterface == v.Raw || e.OutInterface == v.Raw
	case SlotProtocol:
		return strings.EqualFold(e.Protocol, v.Raw)
	case SlotAction:
		return strings.EqualFold(e.Action, v.Raw)
	case SlotSource:
		return matchAddr(v, e.SourceAddr)
	case SlotDestination:
		return matchAddr(v, e.DestAddr)
	case SlotPort:
		return (e.SourcePort.Valid && e.SourcePort.Number == v.port) ||
			(e.DestPort.Valid && e.DestPort.Number == v.port)
	default:
		return false
	}
}

func matchAddr(v Value, a netip.Addr) bool {
	if !a.IsValid() {
		return false
	}
	a = a.Unmap()
	if v.Mode == ModePrefix {
		return v.prefix.Contains(a)
	}
	return a == v.addr
}
