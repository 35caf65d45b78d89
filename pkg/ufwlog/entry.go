// Package ufwlog turns kernel log lines carrying a UFW marker into entries.
package ufwlog

import (
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// ActionKind classifies the UFW action label.
type ActionKind int

const (
	ActionOther ActionKind = iota
	ActionAllow
	ActionBlock
)

func (a ActionKind) String() string {
	switch a {
	case ActionAllow:
		return "ALLOW"
	case ActionBlock:
		return "BLOCK"
	default:
		return "OTHER"
	}
}

// ClassifyAction maps a raw label such as "LIMIT BLOCK" onto a kind.
func ClassifyAction(label string) ActionKind {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "BLOCK"):
		return ActionBlock
	case strings.Contains(upper, "ALLOW"):
		return ActionAllow
	default:
		return ActionOther
	}
}

// Direction is derived from which of IN and OUT carry an interface.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionIn
	DirectionOut
	DirectionForward
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionForward:
		return "FWD"
	default:
		return "-"
	}
}

func directionOf(in, out string) Direction {
	switch {
	case in != "" && out != "":
		return DirectionForward
	case in != "":
		return DirectionIn
	case out != "":
		return DirectionOut
	default:
		return DirectionUnknown
	}
}

// ProtocolKind classifies the PROTO token.
type ProtocolKind int

const (
	ProtocolOther ProtocolKind = iota
	ProtocolTCP
	ProtocolUDP
	ProtocolICMP
)

func (p ProtocolKind) String() string {
	switch p {
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	case ProtocolICMP:
		return "ICMP"
	default:
		return "OTHER"
	}
}

func classifyProtocol(label string) ProtocolKind {
	switch label {
	case "TCP":
		return ProtocolTCP
	case "UDP":
		return ProtocolUDP
	case "ICMP", "ICMPV6":
		return ProtocolICMP
	default:
		return ProtocolOther
	}
}

// Port is an optional transport port.
type Port struct {
	Number uint16
	Valid  bool
}

func parsePort(s string) Port {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return Port{}
	}
	return Port{Number: uint16(n), Valid: true}
}

func (p Port) String() string {
	if !p.Valid {
		return ""
	}
	return strconv.FormatUint(uint64(p.Number), 10)
}

// Entry is one parsed firewall event. Entries are never modified once they
// leave the parser.
type Entry struct {
	Seq      uint64
	Time     time.Time
	TimeText string
	Host     string

	InInterface  string
	OutInterface string

	Action     string
	ActionKind ActionKind
	Direction  Direction
	Protocol   string
	ProtoKind  ProtocolKind

	Source     string
	SourceAddr netip.Addr
	SourcePort Port
	Dest       string
	DestAddr   netip.Addr
	DestPort   Port

	Raw string
}

// Interface returns the input interface when present, else the output one.
func (e *Entry) Interface() string {
	if e.InInterface != "" {
		return e.InInterface
	}
	return e.OutInterface
}
