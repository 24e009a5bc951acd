// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass MIPS32 assembler.
//
// The first pass scans and decodes every source line, emitting code units,
// defining symbols and queueing relocations for symbolic operands. The
// second pass solves the relocations against the final symbol addresses.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/beevik/mipsasm/isa"
)

// Options controls an assembly run.
type Options struct {
	Catalog *isa.Catalog // instruction catalog, nil for the built-in one
}

// An Assembly holds the output of a successful assembly run.
type Assembly struct {
	File        string // name of the source file, if any
	Lines       []Line // scanned source lines
	Code        *CodeStream
	Symbols     *SymbolTable
	Relocations *RelocationList
}

// The assembler is a state object used during the assembly of machine code
// from assembly source.
type assembler struct {
	r       io.Reader       // the reader passed to Assemble
	catalog *isa.Catalog    // instruction catalog
	lines   []Line          // scanned lines containing lexemes
	syms    *SymbolTable    // symbols defined and referenced
	code    *CodeStream     // emitted code units
	relocs  *RelocationList // pending relocations
}

// AssembleFile reads a file containing MIPS assembly source and assembles
// it.
func AssembleFile(path string, opts Options) (*Assembly, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Msg: err.Error()}
	}
	defer file.Close()

	assembly, err := Assemble(file, opts)
	if err != nil {
		return nil, err
	}
	assembly.File = filepath.Base(path)
	return assembly, nil
}

// Assemble reads MIPS assembly source from r and assembles it. The first
// error encountered aborts the run, and no partial output is returned.
func Assemble(r io.Reader, opts Options) (*Assembly, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = isa.Default()
	}

	a := &assembler{
		r:       r,
		catalog: catalog,
		syms:    NewSymbolTable(),
		code:    NewCodeStream(),
		relocs:  &RelocationList{},
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).scan,  // Standardize and scan the source lines
		(*assembler).fetch, // Decode lines into code, symbols and relocations
		(*assembler).solve, // Fold symbol addresses into the code
	}

	for _, step := range steps {
		if err := step(a); err != nil {
			glog.V(1).Infof("assembly failed: %v", err)
			return nil, err
		}
	}

	return &Assembly{
		Lines:       a.lines,
		Code:        a.code,
		Symbols:     a.syms,
		Relocations: a.relocs,
	}, nil
}

// Read the source and convert each line into lexemes. Lines without any
// lexemes are dropped.
func (a *assembler) scan() error {
	a.logSection("Scanning source")

	scanner := bufio.NewScanner(a.r)
	row := 0
	for scanner.Scan() {
		row++
		text := scanner.Text()
		lexemes, err := ScanLine(Standardize(text), row)
		if err != nil {
			return err
		}
		if len(lexemes) == 0 {
			continue
		}
		a.lines = append(a.lines, Line{Number: row, Source: text, Lexemes: lexemes})
		a.logLine(row, lexemeString(lexemes), text)
	}
	if err := scanner.Err(); err != nil {
		return &Error{Kind: ErrIO, Line: row, Msg: err.Error()}
	}
	return nil
}

// Walk the scanned lines in order, emitting code units and relocations.
func (a *assembler) fetch() error {
	a.logSection("Decoding lines")

	ctx := Context{Section: Text, Width: WordWidth}
	for i := range a.lines {
		if err := a.fetchLine(&ctx, &a.lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) fetchLine(ctx *Context, line *Line) error {
	ctx.Line = line.Number

	// A line may begin with any number of labels.
	lx := line.Lexemes
	for len(lx) > 0 && lx[0].Type == LexLabel {
		if err := a.defineLabel(ctx, lx[0]); err != nil {
			return err
		}
		lx = lx[1:]
	}
	if len(lx) == 0 {
		return nil
	}

	switch lx[0].Type {
	case LexDirective:
		return a.decodeDirective(ctx, lx[0], lx[1:])
	case LexSymbol:
		return a.decodeInstruction(ctx, lx[0], lx[1:])
	default:
		return newError(ErrEncoding, ctx.Line, lx[0].Text, "expected mnemonic or directive")
	}
}

func (a *assembler) defineLabel(ctx *Context, label Lexeme) error {
	if ref, ok := a.syms.Find(label.Text); ok {
		if sym := a.syms.Read(ref); sym.Section != Undefined {
			return newError(ErrSymbol, ctx.Line, label.Text, "label already defined on line %d", sym.Line)
		}
	}
	a.syms.DefineLabel(label.Text, ctx.Section, ctx.Address, ctx.Line)
	a.log("%-10s .%s:%08X", label.Text, ctx.Section, ctx.Address)
	return nil
}

// Append a code unit of the context's emission width at the current
// address and advance the address.
func (a *assembler) emit(ctx *Context, value uint32) {
	a.code.Append(CodeUnit{
		Section: ctx.Section,
		Line:    ctx.Line,
		Address: ctx.Address,
		Value:   value,
		Width:   ctx.Width,
	})
	if ctx.Width == WordWidth {
		a.log(".%-4s:%08X %08X", ctx.Section, ctx.Address, value)
	} else {
		a.log(".%-4s:%08X %02X", ctx.Section, ctx.Address, value)
	}
	ctx.Address += uint32(ctx.Width)
}

// Solve all pending relocations.
func (a *assembler) solve() error {
	a.logSection("Solving relocations")
	return Solve(a.syms, a.code, a.relocs)
}

// Log a formatted detail message.
func (a *assembler) log(format string, args ...any) {
	if glog.V(2) {
		glog.Infof(format, args...)
	}
}

// Log a detail message along with the source line it describes.
func (a *assembler) logLine(row int, detail, text string) {
	if glog.V(2) {
		glog.Infof("%-3d | %-30s | %s", row, detail, strings.TrimSpace(text))
	}
}

// Log the start of an assembly phase.
func (a *assembler) logSection(name string) {
	glog.V(1).Infof("-- %s --", name)
}

func lexemeString(lexemes []Lexeme) string {
	var b strings.Builder
	for i, lx := range lexemes {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%s", lx.Type, lx.Text)
	}
	return b.String()
}
