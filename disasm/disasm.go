// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a MIPS32 disassembler driven by an
// instruction catalog.
package disasm

import (
	"fmt"
	"strings"

	"github.com/beevik/mipsasm/isa"
)

// Disassemble the instruction word 'w' located at address 'addr'. Return a
// 'line' string representing the disassembled instruction. Words that match
// no catalog rule are rendered as a .word directive.
func Disassemble(cat *isa.Catalog, w, addr uint32) (line string) {
	return format(cat, w, addr, false)
}

// DisassembleHex is like Disassemble but prints immediates in hexadecimal.
func DisassembleHex(cat *isa.Catalog, w, addr uint32) (line string) {
	return format(cat, w, addr, true)
}

// Lookup returns the first non-pseudo catalog rule that encodes the word.
func Lookup(cat *isa.Catalog, w uint32) (*isa.Rule, bool) {
	d := isa.Decode(w)
	for _, r := range cat.Rules() {
		if !r.IsPseudo() && matches(r, d) {
			return r, true
		}
	}
	return nil, false
}

func matches(r *isa.Rule, d isa.Word) bool {
	if d.Opcode != r.Opcode {
		return false
	}
	if r.Shape == isa.R && d.Funct != r.Funct {
		return false
	}

	// Literal rewrites must match, and unused fields must be zero.
	for _, f := range r.Shape.Fields() {
		if rw, ok := r.Rewrite(f); ok {
			if d.Value(f) != rw.Literal {
				return false
			}
			continue
		}
		if !r.Present(f) && d.Value(f) != 0 {
			return false
		}
	}
	return true
}

func format(cat *isa.Catalog, w, addr uint32, hex bool) string {
	r, ok := Lookup(cat, w)
	if !ok {
		return fmt.Sprintf(".word 0x%08X", w)
	}

	d := isa.Decode(w)
	var ops []string
	for _, f := range r.Shape.Fields() {
		if _, ok := r.Rewrite(f); ok || !r.Present(f) {
			continue
		}

		v := d.Value(f)
		switch {
		case f.IsRegister():
			ops = append(ops, isa.RegisterName(v))
		case f == isa.FieldSA:
			ops = append(ops, fmt.Sprintf("%d", v))
		case f == isa.FieldTarget:
			ops = append(ops, fmt.Sprintf("0x%08X", (addr+4)&0xf0000000|v<<2))
		case r.Shape == isa.I2:
			ops = append(ops, fmt.Sprintf("0x%08X", addr+4+isa.SignExtend16(v)<<2))
		case hex:
			ops = append(ops, fmt.Sprintf("0x%04X", v))
		default:
			ops = append(ops, fmt.Sprintf("%d", int32(isa.SignExtend16(v))))
		}
	}

	// Base register operands print as offset(base).
	if r.Shape == isa.IB && len(ops) == 3 {
		ops = []string{ops[0], ops[1] + "(" + ops[2] + ")"}
	}

	if len(ops) == 0 {
		return r.Mnemonic
	}
	return r.Mnemonic + " " + strings.Join(ops, ", ")
}
