// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/beevik/mipsasm/isa"
)

func assemble(code string, cat *isa.Catalog) (*Assembly, error) {
	return Assemble(strings.NewReader(code), Options{Catalog: cat})
}

func checkImage(t *testing.T, a *Assembly, sec Section, expected string) {
	t.Helper()
	s := byteString(a.Image(sec))
	if s != expected {
		t.Errorf(".%s image doesn't match expected", sec)
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

func checkASM(t *testing.T, asm string, expected string) {
	t.Helper()
	a, err := assemble(asm, nil)
	if err != nil {
		t.Error(err)
		return
	}
	checkImage(t, a, Text, expected)
}

func checkASMError(t *testing.T, asm string, kind error) {
	t.Helper()
	a, err := assemble(asm, nil)
	if err == nil {
		t.Errorf("Expected error on %q, didn't get one\n", asm)
		return
	}
	if !errors.Is(err, kind) {
		t.Errorf("Expected %v on %q, got '%v'\n", kind, asm, err)
	}
	if a != nil {
		t.Errorf("Expected no assembly output on %q\n", asm)
	}
}

func TestBranchScenario(t *testing.T) {
	cat, err := isa.Load(strings.NewReader("ADDI 001000 1 1110\nBEQ 000100 4 111\n"))
	if err != nil {
		t.Fatal(err)
	}

	asm := `
.text
start: ADDI $t0, $zero, 5
       BEQ $t0, $zero, start`

	a, err := assemble(asm, cat)
	if err != nil {
		t.Fatal(err)
	}

	ref, ok := a.Symbols.Find("start")
	if !ok {
		t.Fatal("symbol 'start' missing")
	}
	if sym := a.Symbols.Read(ref); sym.Section != Text || sym.Address != 0 || sym.Line != 3 {
		t.Errorf("bad symbol: %+v", sym)
	}

	units := a.Code.Units()
	if len(units) != 2 {
		t.Fatalf("expected 2 code units, got %d", len(units))
	}
	if units[0].Value != 0b001000<<26|0<<21|8<<16|5 {
		t.Errorf("ADDI encoded as %08X", units[0].Value)
	}
	if units[1].Value != 0x1100fffe {
		t.Errorf("BEQ encoded as %08X", units[1].Value)
	}
	if a.Relocations.Len() != 0 {
		t.Errorf("PC-relative relocation retained: %+v", a.Relocations.Entries())
	}
}

func TestRShape(t *testing.T) {
	asm := `
	ADD  $t0, $t1, $t2
	SLL  $t0, $t1, 2
	SRL  $t0, $t1, 4
	ROTR $t0, $t1, 4
	JR   $ra
	MUL  $t0, $t1, $t2
	NOP
	SYSCALL`

	checkASM(t, asm, "012A4020"+"00094080"+"00094102"+"00294102"+"03E00008"+"712A4002"+"00000000"+"0000000C")
}

func TestRShapeFields(t *testing.T) {
	for rd := uint32(0); rd < 32; rd += 7 {
		for rs := uint32(0); rs < 32; rs += 5 {
			for rt := uint32(0); rt < 32; rt += 3 {
				src := "SUB " + isa.RegisterName(rd) + ", " + isa.RegisterName(rs) + ", " + isa.RegisterName(rt)
				a, err := assemble(src, nil)
				if err != nil {
					t.Fatal(err)
				}
				w := isa.Decode(a.Code.Units()[0].Value)
				if w.RD != rd || w.RS != rs || w.RT != rt || w.SA != 0 || w.Opcode != 0 || w.Funct != 0x22 {
					t.Errorf("%s decoded as %+v", src, w)
				}
			}
		}
	}
}

func TestIShapes(t *testing.T) {
	asm := `
	ADDIU $sp, $sp, -8
	LW    $ra, 4($sp)
	SW    $ra, 0($sp)
	LUI   $t0, 0x1234
	ORI   $t0, $t0, 0xffff`

	checkASM(t, asm, "27BDFFF8"+"8FBF0004"+"AFBF0000"+"3C081234"+"3508FFFF")
}

func TestPseudoInstructions(t *testing.T) {
	asm := `
	MOVE $t0, $t1
	LI   $t0, 42
	LA   $t1, 0x12348765
	NEG  $t0, $t1`

	checkASM(t, asm, "01204021"+"2408002A"+"3C091234"+"35298765"+"00094022")
}

func TestSectionsAndRelocations(t *testing.T) {
	asm := `
	.text
		LA $t0, msg
		J main
	main: NOP
	.data
		.word 1, msg
	msg: .asciiz "hi"
	.bss
	buf: .space 3`

	a, err := assemble(asm, nil)
	if err != nil {
		t.Fatal(err)
	}

	checkImage(t, a, Text, "3C080000"+"35080008"+"08000003"+"00000000")
	checkImage(t, a, Data, "00000001"+"00000008"+"686900")
	checkImage(t, a, BSS, "000000")

	var kinds []string
	for _, r := range a.Relocations.Entries() {
		kinds = append(kinds, r.Kind.String())
	}
	if got := strings.Join(kinds, " "); got != "R_MIPS_HI16 R_MIPS_LO16 R_MIPS_26 R_MIPS_32" {
		t.Errorf("retained relocations: %s", got)
	}

	var names []string
	for _, s := range a.Symbols.Symbols() {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, " "); got != "main msg buf" {
		t.Errorf("symbol order: %s", got)
	}
}

func TestLabels(t *testing.T) {
	asm := `
	a: b:
	c: NOP
	d:`

	a, err := assemble(asm, nil)
	if err != nil {
		t.Fatal(err)
	}
	for name, addr := range map[string]uint32{"a": 0, "b": 0, "c": 0, "d": 4} {
		ref, ok := a.Symbols.Find(name)
		if !ok || a.Symbols.Read(ref).Address != addr {
			t.Errorf("label %s not at %d", name, addr)
		}
	}
}

func TestDirectives(t *testing.T) {
	asm := `
	.set noreorder
	.byte 1, 0xff, -1
	.asciiz "a\tb"
	.word 0x01020304`

	checkASM(t, asm, "01FFFF"+"610962"+"00"+"01020304")
}

func TestSpace(t *testing.T) {
	a, err := assemble(".data\n.byte 1\n.space 9\nend: .byte 2\n", nil)
	if err != nil {
		t.Fatal(err)
	}
	checkImage(t, a, Data, "01"+"000000000000000000"+"02")

	// Three head bytes, one word, two tail bytes.
	var widths []Width
	for _, u := range a.Code.Section(Data) {
		widths = append(widths, u.Width)
	}
	exp := []Width{ByteWidth, ByteWidth, ByteWidth, ByteWidth, WordWidth, ByteWidth, ByteWidth, ByteWidth}
	if len(widths) != len(exp) {
		t.Fatalf("got %d units, want %d", len(widths), len(exp))
	}
	for i := range exp {
		if widths[i] != exp[i] {
			t.Errorf("unit %d width %d, want %d", i, widths[i], exp[i])
		}
	}

	ref, _ := a.Symbols.Find("end")
	if sym := a.Symbols.Read(ref); sym.Address != 10 {
		t.Errorf("end at %#x, want 0xa", sym.Address)
	}
}

func TestSpaceLimit(t *testing.T) {
	a, err := assemble(".bss\n.space 0x100000\n", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(a.Image(BSS)); n != 1<<20 {
		t.Errorf("image is %d bytes, want %d", n, 1<<20)
	}
	if n := a.Code.Len(); n != 1<<18 {
		t.Errorf("got %d code units, want %d", n, 1<<18)
	}

	checkASMError(t, ".bss\n.space 0x100001\n", ErrDirective)
}

func TestErrorMessage(t *testing.T) {
	_, err := assemble("NOP\nFOOBAR $t0\n", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	exp := "encoding error on line 2: unknown mnemonic 'FOOBAR'"
	if err.Error() != exp {
		t.Errorf("Expected '%s', got '%v'", exp, err)
	}

	var e *Error
	if !errors.As(err, &e) || e.Line != 2 || e.Token != "FOOBAR" {
		t.Errorf("bad error detail: %+v", e)
	}
}

func TestErrors(t *testing.T) {
	checkASMError(t, "FOOBAR", ErrEncoding)
	checkASMError(t, "ADD $t0, $t1", ErrEncoding)
	checkASMError(t, "ADD $t0, $t1, $t2, $t3", ErrEncoding)
	checkASMError(t, "ADD $t0, $t1, 5", ErrEncoding)
	checkASMError(t, "ADDI $t0, $t1, 0x10000", ErrEncoding)
	checkASMError(t, "SLL $t0, $t1, 32", ErrEncoding)
	checkASMError(t, "J 0x4000000", ErrEncoding)
	checkASMError(t, "5", ErrEncoding)
	checkASMError(t, "x:y NOP", ErrEncoding)

	checkASMError(t, "LW $t0, 4($t99)", ErrLexical)
	checkASMError(t, "ADDI $t0, $t1, 0x", ErrLexical)
	checkASMError(t, ".word 0x100000000", ErrLexical)
	checkASMError(t, "1x: NOP", ErrLexical)
	checkASMError(t, "x:: NOP", ErrLexical)

	checkASMError(t, ".bogus", ErrDirective)
	checkASMError(t, ".byte foo", ErrDirective)
	checkASMError(t, ".byte 256", ErrDirective)
	checkASMError(t, ".word", ErrDirective)
	checkASMError(t, ".asciiz 5", ErrDirective)
	checkASMError(t, ".space -1", ErrDirective)
	checkASMError(t, ".text 5", ErrDirective)
	checkASMError(t, "NOP\n.data\n.word 1\n.text\nNOP", ErrDirective)

	checkASMError(t, "x: NOP\nx: NOP", ErrSymbol)
	checkASMError(t, "J nowhere", ErrSymbol)
	checkASMError(t, "BEQ $t0, $zero, elsewhere\n.data\nelsewhere: .word 0", ErrSymbol)
}

func TestForwardReference(t *testing.T) {
	asm := `
	BNE $t0, $t1, done
	NOP
	done: JAL done`

	checkASM(t, asm, "15090001"+"00000000"+"0C000002")
}

func TestListing(t *testing.T) {
	asm := `
	.text
	start: LI $t0, 1
	       J start
	.data
	msg:   .asciiz "hello"`

	a, err := assemble(asm, nil)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := a.WriteListing(&b); err != nil {
		t.Fatal(err)
	}

	exp := []string{
		"  3 00000000 24080001 \tstart: LI $t0, 1",
		"  4 00000004 08000000 \t       J start",
		"  6 00000000 68656C6C \tmsg:   .asciiz \"hello\"",
		"  6 00000004 6F00     ",
		"",
		"Symbols:",
		"  3\t.text:00000000\tstart",
		"  6\t.data:00000000\tmsg",
		"",
		"Relocations:",
		"08000000\tR_MIPS_26  \t.text:00000004\tstart",
		"",
	}
	if got := b.String(); got != strings.Join(exp, "\n") {
		t.Errorf("listing doesn't match expected\ngot:\n%s\nexp:\n%s", got, strings.Join(exp, "\n"))
	}
}

func TestSourceMap(t *testing.T) {
	asm := `
	NOP
	.data
	.word 7
	.text`

	_, err := assemble(asm, nil)
	if err == nil {
		t.Fatal("re-entering .text after code should fail")
	}

	a, err := assemble("NOP\n\nNOP\n.data\n.byte 1", nil)
	if err != nil {
		t.Fatal(err)
	}

	sm := a.SourceMap()
	if line := sm.Search(Text, 4); line != 3 {
		t.Errorf("text:4 maps to line %d", line)
	}
	if line := sm.Search(Data, 0); line != 5 {
		t.Errorf("data:0 maps to line %d", line)
	}
	if line := sm.Search(Text, 8); line != -1 {
		t.Errorf("text:8 maps to line %d", line)
	}

	var b strings.Builder
	if _, err := sm.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	var sm2 SourceMap
	if _, err := sm2.ReadFrom(strings.NewReader(b.String())); err != nil {
		t.Fatal(err)
	}
	if sm2.Search(Data, 0) != 5 {
		t.Error("source map did not survive a round trip")
	}
}
