// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// code addresses.
type SourceMap struct {
	File  string
	Lines []SourceLine
}

// A SourceLine represents a mapping between a code address and the source
// code line used to generate it.
type SourceLine struct {
	Section Section // Section holding the code
	Address uint32  // Code address
	Line    int     // Source code line number
}

// SourceMap builds a source map containing one entry per emitted code unit,
// ordered by section and address.
func (a *Assembly) SourceMap() *SourceMap {
	s := &SourceMap{File: a.File}
	for _, u := range a.Code.Units() {
		s.Lines = append(s.Lines, SourceLine{Section: u.Section, Address: u.Address, Line: u.Line})
	}
	sort.SliceStable(s.Lines, func(i, j int) bool {
		return less(s.Lines[i], s.Lines[j])
	})
	return s
}

func less(a, b SourceLine) bool {
	if a.Section != b.Section {
		return a.Section < b.Section
	}
	return a.Address < b.Address
}

// Search searches the source map for the line that generated the code at
// an address. It returns -1 if there is no such line.
func (s *SourceMap) Search(sec Section, addr uint32) (line int) {
	key := SourceLine{Section: sec, Address: addr}
	i := sort.Search(len(s.Lines), func(i int) bool {
		return !less(s.Lines[i], key)
	})
	if i < len(s.Lines) && s.Lines[i].Section == sec && s.Lines[i].Address == addr {
		return s.Lines[i].Line
	}
	return -1
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
