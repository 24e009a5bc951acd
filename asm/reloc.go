// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A RelocKind selects how a symbol address is folded into a code unit.
type RelocKind byte

// Relocation kinds.
const (
	ABS32 RelocKind = iota // whole word holds the address
	REL26                  // jump target field holds address>>2
	HI16                   // immediate holds the upper half of the address
	LO16                   // immediate holds the lower half of the address
	PCRel                  // immediate holds a branch displacement in words
)

var relocKindName = []string{
	"R_MIPS_32", "R_MIPS_26", "R_MIPS_HI16", "R_MIPS_LO16", "RELATIVE",
}

func (k RelocKind) String() string {
	if int(k) < len(relocKindName) {
		return relocKindName[k]
	}
	return "?"
}

// A Relocation is a pending fix-up of the code unit at an address.
type Relocation struct {
	Kind    RelocKind
	Section Section   // section of the code unit
	Address uint32    // address of the code unit
	Symbol  SymbolRef // referenced symbol
	Name    string    // symbol name as written
	Line    int       // line containing the reference
}

// A RelocationList holds relocations in creation order.
type RelocationList struct {
	entries []Relocation
}

// Add appends a relocation to the list.
func (l *RelocationList) Add(r Relocation) {
	l.entries = append(l.entries, r)
}

// Entries returns the relocations in creation order.
func (l *RelocationList) Entries() []Relocation {
	return l.entries
}

// Len returns the number of relocations in the list.
func (l *RelocationList) Len() int {
	return len(l.entries)
}

// retain drops every relocation for which keep returns false.
func (l *RelocationList) retain(keep func(r *Relocation) bool) {
	n := 0
	for i := range l.entries {
		if keep(&l.entries[i]) {
			l.entries[n] = l.entries[i]
			n++
		}
	}
	l.entries = l.entries[:n]
}
