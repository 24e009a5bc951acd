// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A Width is the size in bytes of a code unit.
type Width byte

// Code unit widths.
const (
	ByteWidth Width = 1
	WordWidth Width = 4
)

// A CodeUnit is one addressed word or byte of output.
type CodeUnit struct {
	Section Section
	Line    int // source line that produced the unit
	Address uint32
	Value   uint32
	Width   Width
}

type codeKey struct {
	section Section
	address uint32
}

// A CodeStream holds the code units of an assembly in emission order.
type CodeStream struct {
	units []CodeUnit
	index map[codeKey]int
}

// NewCodeStream creates an empty code stream.
func NewCodeStream() *CodeStream {
	return &CodeStream{index: make(map[codeKey]int)}
}

// Append adds a code unit to the end of the stream.
func (s *CodeStream) Append(u CodeUnit) {
	s.index[codeKey{u.Section, u.Address}] = len(s.units)
	s.units = append(s.units, u)
}

// Find returns the code unit at an address, which may be modified in place.
func (s *CodeStream) Find(sec Section, addr uint32) (*CodeUnit, bool) {
	i, ok := s.index[codeKey{sec, addr}]
	if !ok {
		return nil, false
	}
	return &s.units[i], true
}

// Units returns all code units in emission order.
func (s *CodeStream) Units() []CodeUnit {
	return s.units
}

// Section returns the code units of a single section in address order.
func (s *CodeStream) Section(sec Section) []CodeUnit {
	var units []CodeUnit
	for _, u := range s.units {
		if u.Section == sec {
			units = append(units, u)
		}
	}
	return units
}

// Holds returns true if any code unit has been emitted into the section.
func (s *CodeStream) Holds(sec Section) bool {
	for _, u := range s.units {
		if u.Section == sec {
			return true
		}
	}
	return false
}

// Len returns the number of code units in the stream.
func (s *CodeStream) Len() int {
	return len(s.units)
}
