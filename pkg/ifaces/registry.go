// Package ifaces records the interface names seen in the log and supports
// cycling through them.
package ifaces

import "github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"

// Registry is an ordered set of interface names plus an optional selection.
// Names keep first-seen order and are never removed. Not safe for concurrent
// use.
type Registry struct {
	names    []string
	index    map[string]int
	selected int // -1 when nothing is selected
}

// New returns an empty registry with no selection.
func New() *Registry {
	return &Registry{index: make(map[string]int), selected: -1}
}

// Observe records the IN and OUT interfaces of e and reports whether any of
// them was new.
func (r *Registry) Observe(e *ufwlog.Entry) bool {
	added := r.add(e.InInterface)
	if r.add(e.OutInterface) {
		added = true
	}
	return added
}

func (r *Registry) add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := r.index[name]; ok {
		return false
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	return true
}

// Names returns a copy of the known names in first-seen order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of known names.
func (r *Registry) Len() int { return len(r.names) }

// Next advances the selection, wrapping at the end. From no selection it
// selects the first name. It returns false when no names are known.
func (r *Registry) Next() (string, bool) {
	if len(r.names) == 0 {
		return "", false
	}
	if r.selected < 0 {
		r.selected = 0
	} else {
		r.selected = (r.selected + 1) % len(r.names)
	}
	return r.names[r.selected], true
}

// Previous moves the selection back, wrapping at the start. From no
// selection it selects the last name.
func (r *Registry) Previous() (string, bool) {
	if len(r.names) == 0 {
		return "", false
	}
	if r.selected < 0 {
		r.selected = len(r.names) - 1
	} else {
		r.selected = (r.selected - 1 + len(r.names)) % len(r.names)
	}
	return r.names[r.selected], true
}

// Select selects name if it is known.
func (r *Registry) Select(name string) bool {
	i, ok := r.index[name]
	if !ok {
		return false
	}
	r.selected = i
	return true
}

// Selected returns the current selection.
func (r *Registry) Selected() (string, bool) {
	if r.selected < 0 {
		return "", false
	}
	return r.names[r.selected], true
}

// Clear drops the selection.
func (r *Registry) Clear() {
	r.selected = -1
}
