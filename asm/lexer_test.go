// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"testing"
)

func TestStandardize(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"  start :ADDI\t$t0,$zero,5 # comment", "start: ADDI $t0 , $zero , 5 # comment"},
		{"LW $t0,4($sp)", "LW $t0 , 4 ( $sp )"},
		{".asciiz  \"a,  b\"", ".asciiz \"a,  b\""},
		{"x:NOP#c", "x: NOP # c"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Standardize(c.in); got != c.out {
			t.Errorf("Standardize(%q) = %q, want %q", c.in, got, c.out)
		}
	}
}

func TestScanNumbers(t *testing.T) {
	cases := []struct {
		tok   string
		typ   LexemeType
		value uint32
	}{
		{"0", LexZero, 0},
		{"42", LexDecimal, 42},
		{"017", LexOctal, 15},
		{"08", LexDecimal, 8},
		{"0x1F", LexHex, 31},
		{"0XffFFffFF", LexHex, 0xffffffff},
		{"0b101", LexBinary, 5},
		{"-5", LexDecimal, 0xfffffffb},
		{"-0x8000", LexHex, 0xffff8000},
		{"4294967295", LexDecimal, 0xffffffff},
	}
	for _, c := range cases {
		lx, err := ScanLine(c.tok, 1)
		if err != nil {
			t.Errorf("ScanLine(%q): %v", c.tok, err)
			continue
		}
		if len(lx) != 1 || lx[0].Type != c.typ || lx[0].Value != c.value {
			t.Errorf("ScanLine(%q) = %+v, want %s %d", c.tok, lx, c.typ, c.value)
		}
	}
}

func TestScanLine(t *testing.T) {
	lx, err := ScanLine(Standardize(`loop: LW $ra, -4($sp) # restore "x`), 7)
	if err != nil {
		t.Fatal(err)
	}

	exp := []Lexeme{
		{Type: LexLabel, Text: "loop"},
		{Type: LexSymbol, Text: "LW"},
		{Type: LexRegister, Text: "$ra", Value: 31},
		{Type: LexDecimal, Text: "-4", Value: 0xfffffffc, Signed: true},
		{Type: LexRegister, Text: "$sp", Value: 29},
	}
	if len(lx) != len(exp) {
		t.Fatalf("got %d lexemes, want %d: %+v", len(lx), len(exp), lx)
	}
	for i := range exp {
		if lx[i] != exp[i] {
			t.Errorf("lexeme %d = %+v, want %+v", i, lx[i], exp[i])
		}
	}
}

func TestScanStrings(t *testing.T) {
	lx, err := ScanLine(`.asciiz "a\tb\\\"\n\0"`, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(lx) != 2 || lx[1].Type != LexString || lx[1].Text != "a\tb\\\"\n\x00" {
		t.Errorf("bad string lexeme: %+v", lx)
	}
}

func TestScanCommentSplit(t *testing.T) {
	lx, err := ScanLine("NOP#anything 0x", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(lx) != 1 || lx[0].Text != "NOP" {
		t.Errorf("comment not discarded: %+v", lx)
	}
}

func TestScanErrors(t *testing.T) {
	bad := []string{
		"0x", "0b", "0b2", "019", "1a", "$foo", "$32", "4294967296",
		"-$t0", "-x", "-", "a:b", "@", ".", `"open`, `"bad\q"`,
	}
	for _, tok := range bad {
		_, err := ScanLine(tok, 3)
		if !errors.Is(err, ErrLexical) {
			t.Errorf("ScanLine(%q) error = %v, want lexical error", tok, err)
		}
	}
}
