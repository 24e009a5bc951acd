// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"testing"

	"github.com/beevik/mipsasm/isa"
)

type fixture struct {
	syms   *SymbolTable
	code   *CodeStream
	relocs *RelocationList
}

func newFixture() *fixture {
	return &fixture{
		syms:   NewSymbolTable(),
		code:   NewCodeStream(),
		relocs: &RelocationList{},
	}
}

func (f *fixture) unit(addr, value uint32) {
	f.code.Append(CodeUnit{Section: Text, Address: addr, Value: value, Width: WordWidth})
}

func (f *fixture) reloc(kind RelocKind, addr uint32, name string) {
	ref := f.syms.DefineReference(name, 1)
	f.relocs.Add(Relocation{Kind: kind, Section: Text, Address: addr, Symbol: ref, Name: name, Line: 1})
}

func (f *fixture) value(t *testing.T, addr uint32) uint32 {
	t.Helper()
	u, ok := f.code.Find(Text, addr)
	if !ok {
		t.Fatalf("no code at %08X", addr)
	}
	return u.Value
}

func TestSolveHiLo(t *testing.T) {
	for _, addr := range []uint32{0, 0x1234abcd, 0x12348765, 0xffff8000, 0x7fff} {
		f := newFixture()
		f.syms.DefineLabel("target", Data, addr, 1)
		f.unit(0, 0x3c080000) // LUI $t0, 0
		f.unit(4, 0x35080000) // ORI $t0, $t0, 0
		f.reloc(HI16, 0, "target")
		f.reloc(LO16, 4, "target")

		if err := Solve(f.syms, f.code, f.relocs); err != nil {
			t.Fatal(err)
		}

		hi, lo := f.value(t, 0), f.value(t, 4)
		if hi>>16 != 0x3c08 || lo>>16 != 0x3508 {
			t.Errorf("opcode bits disturbed: %08X %08X", hi, lo)
		}
		if got := (hi&isa.ImmMask)<<16 | isa.SignExtend16(lo)&isa.ImmMask; got != addr {
			t.Errorf("address %08X reassembled as %08X", addr, got)
		}
		if f.relocs.Len() != 2 {
			t.Errorf("HI16/LO16 relocations should be retained")
		}
	}
}

func TestSolvePCRelative(t *testing.T) {
	cases := []struct {
		branch, target uint32
		disp           uint32
	}{
		{4, 0, 0xfffe},
		{0x10, 0x4, 0xfffc},
		{0x10, 0x20, 0x0003},
		{0x10, 0x14, 0x0000},
	}
	for _, c := range cases {
		f := newFixture()
		f.syms.DefineLabel("target", Text, c.target, 1)
		f.unit(c.branch, 0x11000000)
		f.reloc(PCRel, c.branch, "target")

		if err := Solve(f.syms, f.code, f.relocs); err != nil {
			t.Fatal(err)
		}
		if got := f.value(t, c.branch); got != 0x11000000|c.disp {
			t.Errorf("branch at %X to %X solved as %08X", c.branch, c.target, got)
		}
		if f.relocs.Len() != 0 {
			t.Errorf("PC-relative relocation retained")
		}
	}
}

func TestSolveAbsAndJump(t *testing.T) {
	f := newFixture()
	f.syms.DefineLabel("func", Text, 0x00400020, 1)
	f.unit(0, 0)
	f.unit(4, 0x0c000000)
	f.reloc(ABS32, 0, "func")
	f.reloc(REL26, 4, "func")

	if err := Solve(f.syms, f.code, f.relocs); err != nil {
		t.Fatal(err)
	}
	if v := f.value(t, 0); v != 0x00400020 {
		t.Errorf("ABS32 solved as %08X", v)
	}
	if v := f.value(t, 4); v != 0x0c100008 {
		t.Errorf("REL26 solved as %08X", v)
	}
}

func TestSolveErrors(t *testing.T) {
	f := newFixture()
	f.unit(0, 0)
	f.reloc(ABS32, 0, "nobody")
	if err := Solve(f.syms, f.code, f.relocs); !errors.Is(err, ErrSymbol) {
		t.Errorf("expected unresolved symbol error, got %v", err)
	}

	f = newFixture()
	f.syms.DefineLabel("here", Text, 0, 1)
	f.reloc(ABS32, 8, "here")
	if err := Solve(f.syms, f.code, f.relocs); !errors.Is(err, ErrInternal) {
		t.Errorf("expected internal consistency error, got %v", err)
	}

	f = newFixture()
	f.syms.DefineLabel("far", Text, 0x40000, 1)
	f.unit(0, 0x10000000)
	f.reloc(PCRel, 0, "far")
	if err := Solve(f.syms, f.code, f.relocs); !errors.Is(err, ErrEncoding) {
		t.Errorf("expected out of range error, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	f := newFixture()
	ctx := Context{Section: Text, Address: 8, Line: 3}

	v, err := Evaluate(Lexeme{Type: LexHex, Text: "0x10", Value: 16}, LO16, ctx, f.relocs, f.syms)
	if err != nil || v != 16 || f.relocs.Len() != 0 {
		t.Errorf("numeric evaluation: %d %v", v, err)
	}

	v, err = Evaluate(Lexeme{Type: LexSymbol, Text: "later"}, HI16, ctx, f.relocs, f.syms)
	if err != nil || v != 0 {
		t.Errorf("symbol evaluation: %d %v", v, err)
	}
	ref, ok := f.syms.Find("later")
	if !ok || f.syms.Read(ref).Section != Undefined {
		t.Error("placeholder symbol missing")
	}
	r := f.relocs.Entries()
	if len(r) != 1 || r[0].Kind != HI16 || r[0].Address != 8 || r[0].Symbol != ref {
		t.Errorf("bad relocation: %+v", r)
	}

	// A second reference shares the placeholder.
	ctx.Address = 12
	if _, err = Evaluate(Lexeme{Type: LexSymbol, Text: "later"}, LO16, ctx, f.relocs, f.syms); err != nil {
		t.Fatal(err)
	}
	r = f.relocs.Entries()
	if f.syms.Len() != 1 || len(r) != 2 || r[1].Symbol != ref || r[1].Address != 12 {
		t.Errorf("second reference: %d symbols, relocations %+v", f.syms.Len(), r)
	}

	_, err = Evaluate(Lexeme{Type: LexRegister, Text: "$t0", Value: 8}, LO16, ctx, f.relocs, f.syms)
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("expected encoding error, got %v", err)
	}
}
