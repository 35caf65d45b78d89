// Package services maps (port, protocol) pairs onto IANA service names.
package services

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/service-names-port-numbers.csv
var embeddedCSV []byte

// Record is one (port, protocol) assignment.
type Record struct {
	Port        uint16 `json:"port"`
	Protocol    string `json:"protocol"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Catalog is an immutable, sorted set of records.
type Catalog struct {
	records []Record
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(bytes.NewReader(embeddedCSV))
	if err != nil {
		panic(fmt.Sprintf("services: embedded dataset: %v", err))
	}
	return c
})

// Default returns the catalog built from the embedded IANA snapshot. It is
// parsed on first use.
func Default() *Catalog {
	return defaultCatalog()
}

type columns struct {
	name, port, proto, desc int
}

func headerColumns(header []string) columns {
	cols := columns{name: 0, port: 1, proto: 2, desc: 3}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "Service Name":
			cols.name = i
		case "Port Number":
			cols.port = i
		case "Transport Protocol":
			cols.proto = i
		case "Description":
			cols.desc = i
		}
	}
	return cols
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Load builds a catalog from an IANA service-names CSV. Rows without a name,
// with a transport other than tcp or udp, or with a port range are skipped.
// When a (port, protocol) pair repeats, the first row wins.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("services: empty dataset")
	}
	if err != nil {
		return nil, fmt.Errorf("services: read header: %w", err)
	}
	cols := headerColumns(header)

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("services: read row: %w", err)
		}

		name := field(row, cols.name)
		if name == "" {
			continue
		}
		proto := strings.ToLower(field(row, cols.proto))
		if proto != "tcp" && proto != "udp" {
			continue
		}
		port, err := strconv.ParseUint(field(row, cols.port), 10, 16)
		if err != nil {
			continue
		}
		records = append(records, Record{
			Port:        uint16(port),
			Protocol:    proto,
			Name:        name,
			Description: field(row, cols.desc),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return compare(records[i].Port, records[i].Protocol, records[j].Port, records[j].Protocol) < 0
	})
	records = slices.CompactFunc(records, func(a, b Record) bool {
		return a.Port == b.Port && a.Protocol == b.Protocol
	})

	return &Catalog{records: slices.Clip(records)}, nil
}

func compare(portA uint16, protoA string, portB uint16, protoB string) int {
	switch {
	case portA < portB:
		return -1
	case portA > portB:
		return 1
	default:
		return strings.Compare(protoA, protoB)
	}
}

// Lookup returns the record registered for port over protocol. The protocol
// match is case-insensitive; only tcp and udp can ever match.
func (c *Catalog) Lookup(port uint16, protocol string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	proto := strings.ToLower(protocol)
	i, found := slices.BinarySearchFunc(c.records, Record{Port: port, Protocol: proto}, func(rec, target Record) int {
		return compare(rec.Port, rec.Protocol, target.Port, target.Protocol)
	})
	if !found {
		return Record{}, false
	}
	return c.records[i], true
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}
