// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
)

// Image returns the contents of a section as big-endian bytes.
func (a *Assembly) Image(sec Section) []byte {
	var b []byte
	for _, u := range a.Code.Section(sec) {
		b = append(b, toBytes(u)...)
	}
	return b
}

// WriteTo writes the image of the text section into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Image(Text))
	return int64(nn), err
}

// A row is one line of listing output.
type row struct {
	line  int
	sec   Section
	addr  uint32
	bytes []byte
	word  bool
}

// Group consecutive byte units of the same source line into rows of up to
// four bytes. Words always get a row of their own.
func (a *Assembly) rows() []row {
	var rows []row
	for _, u := range a.Code.Units() {
		if u.Width == ByteWidth && len(rows) > 0 {
			r := &rows[len(rows)-1]
			if !r.word && r.line == u.Line && r.sec == u.Section && len(r.bytes) < 4 {
				r.bytes = append(r.bytes, byte(u.Value))
				continue
			}
		}
		rows = append(rows, row{
			line:  u.Line,
			sec:   u.Section,
			addr:  u.Address,
			bytes: toBytes(u),
			word:  u.Width == WordWidth,
		})
	}
	return rows
}

// WriteListing writes a human-readable listing of the assembly: a row per
// group of code units with its source text, followed by the symbol table
// and the retained relocations.
func (a *Assembly) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	a.writeCode(bw)
	if a.Symbols.Len() > 0 {
		fmt.Fprintf(bw, "\nSymbols:\n")
		a.writeSymbols(bw)
	}
	if a.Relocations.Len() > 0 {
		fmt.Fprintf(bw, "\nRelocations:\n")
		a.writeRelocations(bw)
	}
	return bw.Flush()
}

// WriteCode writes the code rows of the listing.
func (a *Assembly) WriteCode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	a.writeCode(bw)
	return bw.Flush()
}

// WriteSymbols writes the symbol table in line order.
func (a *Assembly) WriteSymbols(w io.Writer) error {
	bw := bufio.NewWriter(w)
	a.writeSymbols(bw)
	return bw.Flush()
}

// WriteRelocations writes the relocations retained after solving.
func (a *Assembly) WriteRelocations(w io.Writer) error {
	bw := bufio.NewWriter(w)
	a.writeRelocations(bw)
	return bw.Flush()
}

func (a *Assembly) writeCode(w io.Writer) {
	source := make(map[int]string, len(a.Lines))
	for _, l := range a.Lines {
		source[l.Number] = l.Source
	}

	last := 0
	for _, r := range a.rows() {
		text := ""
		if r.line != last {
			text, last = source[r.line], r.line
		}
		fmt.Fprintf(w, "%3d %08X %-8s %s\n", r.line, r.addr, byteString(r.bytes), text)
	}
}

func (a *Assembly) writeSymbols(w io.Writer) {
	for _, s := range a.Symbols.Symbols() {
		fmt.Fprintf(w, "%3d\t.%-4s:%08X\t%s\n", s.Line, s.Section, s.Address, s.Name)
	}
}

func (a *Assembly) writeRelocations(w io.Writer) {
	for _, r := range a.Relocations.Entries() {
		value := uint32(0)
		if u, ok := a.Code.Find(r.Section, r.Address); ok {
			value = u.Value
		}
		fmt.Fprintf(w, "%08X\t%-11s\t.%-4s:%08X\t%s\n", value, r.Kind, r.Section, r.Address, r.Name)
	}
}
