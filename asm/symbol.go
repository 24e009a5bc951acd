// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"slices"
	"sort"
)

// A Section identifies the address space a symbol or code unit lives in.
type Section byte

// Sections.
const (
	Undefined Section = iota
	Text
	Data
	BSS
)

var sectionName = []string{"und", "text", "data", "bss"}

func (s Section) String() string {
	if int(s) < len(sectionName) {
		return sectionName[s]
	}
	return "?"
}

// ParseSection converts a section name, with or without its leading '.',
// into a Section.
func ParseSection(name string) (Section, bool) {
	if len(name) > 0 && name[0] == '.' {
		name = name[1:]
	}
	for i, n := range sectionName {
		if n == name && Section(i) != Undefined {
			return Section(i), true
		}
	}
	return Undefined, false
}

// A Symbol is a named address.
type Symbol struct {
	Name    string
	Section Section // Undefined until a label defines the symbol
	Address uint32
	Line    int // line of the definition, or of the first reference
}

// A SymbolRef is a stable handle to a symbol table entry.
type SymbolRef int

// A SymbolTable holds the symbols of one assembly, ordered by line number.
type SymbolTable struct {
	entries []Symbol             // storage, indexed by SymbolRef
	order   []SymbolRef          // entries sorted by line
	index   map[string]SymbolRef // name lookup
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]SymbolRef)}
}

// Find returns the handle of a named symbol.
func (t *SymbolTable) Find(name string) (SymbolRef, bool) {
	ref, ok := t.index[name]
	return ref, ok
}

// DefineLabel defines a symbol at an address. An existing entry with the
// same name is updated in place and repositioned to keep the table ordered
// by line.
func (t *SymbolTable) DefineLabel(name string, sec Section, addr uint32, line int) SymbolRef {
	if ref, ok := t.index[name]; ok {
		e := &t.entries[ref]
		e.Section, e.Address, e.Line = sec, addr, line
		t.order = slices.Delete(t.order, slices.Index(t.order, ref), slices.Index(t.order, ref)+1)
		t.insert(ref)
		return ref
	}
	return t.add(Symbol{Name: name, Section: sec, Address: addr, Line: line})
}

// DefineReference returns the handle of a named symbol, creating an
// undefined placeholder if the symbol is not yet known.
func (t *SymbolTable) DefineReference(name string, line int) SymbolRef {
	if ref, ok := t.index[name]; ok {
		return ref
	}
	return t.add(Symbol{Name: name, Section: Undefined, Line: line})
}

// Read returns the current contents of a symbol.
func (t *SymbolTable) Read(ref SymbolRef) Symbol {
	return t.entries[ref]
}

// Symbols returns the symbols ordered by line number.
func (t *SymbolTable) Symbols() []Symbol {
	s := make([]Symbol, len(t.order))
	for i, ref := range t.order {
		s[i] = t.entries[ref]
	}
	return s
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.entries)
}

func (t *SymbolTable) add(sym Symbol) SymbolRef {
	ref := SymbolRef(len(t.entries))
	t.entries = append(t.entries, sym)
	t.index[sym.Name] = ref
	t.insert(ref)
	return ref
}

// insert places ref in the line order after every entry with the same or a
// lower line number.
func (t *SymbolTable) insert(ref SymbolRef) {
	line := t.entries[ref].Line
	i := sort.Search(len(t.order), func(i int) bool {
		return t.entries[t.order[i]].Line > line
	})
	t.order = slices.Insert(t.order, i, ref)
}
