package ufwlog

import (
	"net/netip"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
)

const (
	actionMarker = "[UFW "
	kernelMarker = " kernel:"
)

var wantedKeys = map[string]struct{}{
	"IN": {}, "OUT": {}, "SRC": {}, "DST": {}, "PROTO": {}, "SPT": {}, "DPT": {},
}

// ParseLine parses a single line. It never blocks and never mutates shared
// state; the returned entry has no sequence number.
func ParseLine(line string, arrival time.Time) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")

	action, ok := parseAction(line)
	if !ok {
		return Entry{}, errors.NewMalformedLineError("missing [UFW ...] action marker", line)
	}

	fields := parseFields(line)
	proto := strings.ToUpper(fields["PROTO"])
	if proto == "" {
		return Entry{}, errors.NewMalformedLineError("missing PROTO field", line)
	}

	timeText, host := splitHeader(line)
	in, out := fields["IN"], fields["OUT"]

	e := Entry{
		Time:         parseTimestamp(timeText, arrival),
		TimeText:     timeText,
		Host:         host,
		InInterface:  in,
		OutInterface: out,
		Action:       action,
		ActionKind:   ClassifyAction(action),
		Direction:    directionOf(in, out),
		Protocol:     proto,
		ProtoKind:    classifyProtocol(proto),
		Source:       fields["SRC"],
		SourcePort:   parsePort(fields["SPT"]),
		Dest:         fields["DST"],
		DestPort:     parsePort(fields["DPT"]),
		Raw:          line,
	}
	if addr, err := netip.ParseAddr(e.Source); err == nil {
		e.SourceAddr = addr
	}
	if addr, err := netip.ParseAddr(e.Dest); err == nil {
		e.DestAddr = addr
	}
	return e, nil
}

func parseAction(line string) (string, bool) {
	start := strings.Index(line, actionMarker)
	if start < 0 {
		return "", false
	}
	rest := line[start+len(actionMarker):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return "", false
	}
	action := strings.TrimSpace(rest[:end])
	return action, action != ""
}

// parseFields collects the first occurrence of each wanted KEY=VALUE token.
func parseFields(line string) map[string]string {
	out := make(map[string]string, len(wantedKeys))
	for _, token := range strings.Fields(line) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		if _, wanted := wantedKeys[key]; !wanted {
			continue
		}
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = strings.Trim(value, ",]")
	}
	return out
}

// splitHeader returns the text before " kernel:" and, for syslog headers,
// the host name that ends it.
func splitHeader(line string) (timeText, host string) {
	idx := strings.Index(line, kernelMarker)
	if idx < 0 {
		return "", ""
	}
	timeText = strings.TrimSpace(line[:idx])
	if f := strings.Fields(timeText); len(f) > 1 {
		host = f[len(f)-1]
	}
	return timeText, host
}

// Parser assigns sequence numbers and counts outcomes. Parse is called from
// the ingest goroutine only; the counters may be read from anywhere.
type Parser struct {
	logger  *logging.ColoredLogger
	now     func() time.Time
	next    uint64
	parsed  atomic.Uint64
	skipped atomic.Uint64
}

// NewParser creates a parser. A nil logger discards skip diagnostics.
func NewParser(logger *logging.ColoredLogger) *Parser {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Parser{logger: logger, now: time.Now}
}

// Parse parses line and, on success, stamps it with the next sequence number.
func (p *Parser) Parse(line string) (Entry, error) {
	e, err := ParseLine(line, p.now())
	if err != nil {
		p.skipped.Add(1)
		p.logger.ComponentDebug(logging.ComponentParser, "skipped line",
			zap.String("reason", errors.GetErrorMessage(err)))
		return Entry{}, err
	}
	p.next++
	e.Seq = p.next
	p.parsed.Add(1)
	return e, nil
}

// Parsed returns the number of lines turned into entries.
func (p *Parser) Parsed() uint64 { return p.parsed.Load() }

// Skipped returns the number of lines rejected as malformed.
func (p *Parser) Skipped() uint64 { return p.skipped.Load() }
