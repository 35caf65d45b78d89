// Package netclass classifies addresses and interfaces as local or WAN and
// provides the flow and direction toggles of the viewer.
package netclass

import (
	"net/netip"
	"strings"

	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// IsLocal reports whether a is loopback, private (RFC 1918, fc00::/7) or
// link-local.
func IsLocal(a netip.Addr) bool {
	if !a.IsValid() {
		return false
	}
	a = a.Unmap()
	return a.IsLoopback() || a.IsPrivate() || a.IsLinkLocalUnicast()
}

// IsWAN reports whether a is a routable, non-local unicast address.
func IsWAN(a netip.Addr) bool {
	if !a.IsValid() {
		return false
	}
	a = a.Unmap()
	if a.IsUnspecified() || a.IsMulticast() {
		return false
	}
	return !IsLocal(a)
}

// Flow restricts entries by the locality of both endpoints.
type Flow int

const (
	FlowAll Flow = iota
	FlowLocalToLocal
	FlowLocalToExternal
)

func (f Flow) String() string {
	switch f {
	case FlowLocalToLocal:
		return "local→local"
	case FlowLocalToExternal:
		return "local→external"
	default:
		return "all"
	}
}

// Next cycles all → local→local → local→external → all.
func (f Flow) Next() Flow {
	return (f + 1) % 3
}

// Matches reports whether e passes the flow toggle.
func (f Flow) Matches(e *ufwlog.Entry) bool {
	switch f {
	case FlowLocalToLocal:
		return IsLocal(e.SourceAddr) && IsLocal(e.DestAddr)
	case FlowLocalToExternal:
		return IsLocal(e.SourceAddr) && IsWAN(e.DestAddr)
	default:
		return true
	}
}

// DirectionFilter restricts entries by derived direction.
type DirectionFilter int

const (
	DirectionBoth DirectionFilter = iota
	DirectionIn
	DirectionOut
	DirectionForward
)

func (d DirectionFilter) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionForward:
		return "fwd"
	default:
		return "both"
	}
}

// Next cycles both → in → out → fwd → both.
func (d DirectionFilter) Next() DirectionFilter {
	return (d + 1) % 4
}

// Matches reports whether e passes the direction toggle.
func (d DirectionFilter) Matches(e *ufwlog.Entry) bool {
	switch d {
	case DirectionIn:
		return e.Direction == ufwlog.DirectionIn
	case DirectionOut:
		return e.Direction == ufwlog.DirectionOut
	case DirectionForward:
		return e.Direction == ufwlog.DirectionForward
	default:
		return true
	}
}

var (
	virtualPrefixes = []string{"docker", "veth", "virbr", "br-", "tailscale", "tun", "tap", "wg"}
	uplinkPrefixes  = []string{"en", "eth", "wl", "wwan", "ppp"}
)

// IsWANCandidate guesses whether an interface name looks like an uplink.
func IsWANCandidate(name string) bool {
	lower := strings.ToLower(name)
	if lower == "lo" {
		return false
	}
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	for _, p := range uplinkPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return strings.Contains(lower, "wan")
}

// DefaultWANInterface picks the first candidate from names, falling back to
// the first name. It returns false only when names is empty.
func DefaultWANInterface(names []string) (string, bool) {
	for _, n := range names {
		if IsWANCandidate(n) {
			return n, true
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}
