// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"

	"github.com/beevik/mipsasm/isa"
)

type directiveData struct {
	fn    func(a *assembler, ctx *Context, dir Lexeme, args []Lexeme, param any) error
	param any
}

var directives = map[string]directiveData{
	".text":   {fn: (*assembler).decodeSection, param: Text},
	".data":   {fn: (*assembler).decodeSection, param: Data},
	".bss":    {fn: (*assembler).decodeSection, param: BSS},
	".set":    {fn: (*assembler).decodeSet},
	".word":   {fn: (*assembler).decodeData, param: WordWidth},
	".byte":   {fn: (*assembler).decodeData, param: ByteWidth},
	".asciiz": {fn: (*assembler).decodeString},
	".space":  {fn: (*assembler).decodeSpace},
}

// Largest zero-filled region a single .space directive may reserve.
const maxSpace = 1 << 20

func (a *assembler) decodeDirective(ctx *Context, dir Lexeme, args []Lexeme) error {
	d, ok := directives[strings.ToLower(dir.Text)]
	if !ok {
		return newError(ErrDirective, ctx.Line, dir.Text, "unknown directive")
	}
	return d.fn(a, ctx, dir, args, d.param)
}

// Switch sections and reset the address. Sections are contiguous, so a
// section that already holds code may not be re-entered.
func (a *assembler) decodeSection(ctx *Context, dir Lexeme, args []Lexeme, param any) error {
	if len(args) > 0 {
		return newError(ErrDirective, ctx.Line, dir.Text, "unexpected arguments")
	}

	sec := param.(Section)
	if a.code.Holds(sec) {
		return newError(ErrDirective, ctx.Line, dir.Text, "section already contains code")
	}
	ctx.Section, ctx.Address = sec, 0
	a.log("section .%s", sec)
	return nil
}

func (a *assembler) decodeSet(ctx *Context, dir Lexeme, args []Lexeme, param any) error {
	a.log("ignoring %s", dir.Text)
	return nil
}

func (a *assembler) decodeData(ctx *Context, dir Lexeme, args []Lexeme, param any) error {
	if len(args) == 0 {
		return newError(ErrDirective, ctx.Line, dir.Text, "value missing")
	}

	width := param.(Width)
	ctx.Width = width
	for _, arg := range args {
		switch {
		case arg.IsNumeric():
			if width == ByteWidth && arg.Value > 0xff && arg.Value < 0xffffff80 {
				return newError(ErrDirective, ctx.Line, arg.Text, "byte value out of range")
			}
			a.emit(ctx, arg.Value&widthMask(width))

		case arg.Type == LexSymbol && width == WordWidth:
			v, err := Evaluate(arg, ABS32, *ctx, a.relocs, a.syms)
			if err != nil {
				return err
			}
			a.emit(ctx, v)

		default:
			return newError(ErrDirective, ctx.Line, arg.Text, "invalid %s value", dir.Text)
		}
	}
	return nil
}

func (a *assembler) decodeString(ctx *Context, dir Lexeme, args []Lexeme, param any) error {
	if len(args) != 1 || args[0].Type != LexString {
		return newError(ErrDirective, ctx.Line, dir.Text, "expected a single string")
	}

	ctx.Width = ByteWidth
	s := args[0].Text
	for i := 0; i < len(s); i++ {
		a.emit(ctx, uint32(s[i]))
	}
	a.emit(ctx, 0)
	return nil
}

func (a *assembler) decodeSpace(ctx *Context, dir Lexeme, args []Lexeme, param any) error {
	if len(args) != 1 || !args[0].IsNumeric() {
		return newError(ErrDirective, ctx.Line, dir.Text, "expected a byte count")
	}

	n := args[0]
	if n.Signed || n.Value > maxSpace {
		return newError(ErrDirective, ctx.Line, n.Text, "invalid byte count")
	}

	// Zero bytes up to the next word boundary, zero words for the aligned
	// bulk, then zero bytes for the tail.
	remain := n.Value
	ctx.Width = ByteWidth
	for ; remain > 0 && ctx.Address%4 != 0; remain-- {
		a.emit(ctx, 0)
	}
	ctx.Width = WordWidth
	for ; remain >= 4; remain -= 4 {
		a.emit(ctx, 0)
	}
	ctx.Width = ByteWidth
	for ; remain > 0; remain-- {
		a.emit(ctx, 0)
	}
	return nil
}

func widthMask(w Width) uint32 {
	if w == ByteWidth {
		return 0xff
	}
	return 0xffffffff
}

// An expansion is one machine instruction produced by a source
// instruction.
type expansion struct {
	rule  *isa.Rule
	kind  RelocKind // relocation kind for a symbolic immediate
	split bool      // half of a two-instruction address load
}

// Encode an instruction and emit it. A rule marked for expansion emits a
// second instruction encoded by its paired rule, with both halves reading
// the same source operands.
func (a *assembler) decodeInstruction(ctx *Context, mnemonic Lexeme, operands []Lexeme) error {
	rule, ok := a.catalog.Lookup(mnemonic.Text)
	if !ok {
		return newError(ErrEncoding, ctx.Line, mnemonic.Text, "unknown mnemonic")
	}

	work := []expansion{{rule: rule, kind: LO16}}
	for len(work) > 0 {
		e := work[0]
		work = work[1:]

		if e.rule.Expand {
			pair, ok := a.catalog.Pair(e.rule)
			if !ok {
				return newError(ErrInternal, ctx.Line, mnemonic.Text, "missing paired rule")
			}
			e.kind, e.split = HI16, true
			work = append(work, expansion{rule: pair, kind: LO16, split: true})
		}

		word, err := a.encode(ctx, e, operands)
		if err != nil {
			return err
		}
		a.log("%-8s %s", e.rule.Mnemonic, e.rule.Shape)
		ctx.Width = WordWidth
		a.emit(ctx, word)
	}
	return nil
}

// Encode one instruction word. Fields are filled in the shape's read order:
// a rewritten field takes a literal or the aliased source operand, other
// fields present in the mask take the next sequential operand, and the
// rest are zero.
func (a *assembler) encode(ctx *Context, e expansion, operands []Lexeme) (uint32, error) {
	var v isa.Values
	cursor, used := 0, 0

	for _, f := range e.rule.Shape.Fields() {
		var lx Lexeme
		if rw, ok := e.rule.Rewrite(f); ok {
			if !rw.IsAlias() {
				v[f] = rw.Literal
				continue
			}
			if rw.Alias >= len(operands) {
				return 0, newError(ErrEncoding, ctx.Line, e.rule.Mnemonic, "operand missing")
			}
			lx = operands[rw.Alias]
			used = max(used, rw.Alias+1)
		} else {
			if !e.rule.Present(f) {
				continue
			}
			if cursor >= len(operands) {
				return 0, newError(ErrEncoding, ctx.Line, e.rule.Mnemonic, "operand missing")
			}
			lx = operands[cursor]
			cursor++
		}

		value, err := a.operand(ctx, e, f, lx)
		if err != nil {
			return 0, err
		}
		v[f] = value
	}

	if len(operands) > max(cursor, used) {
		return 0, newError(ErrEncoding, ctx.Line, operands[max(cursor, used)].Text, "too many operands")
	}
	return e.rule.Encode(v), nil
}

// Compute the value of a single operand field.
func (a *assembler) operand(ctx *Context, e expansion, f isa.Field, lx Lexeme) (uint32, error) {
	switch f {
	case isa.FieldRS, isa.FieldRT, isa.FieldRD:
		if lx.Type != LexRegister {
			return 0, newError(ErrEncoding, ctx.Line, lx.Text, "register expected")
		}
		return lx.Value, nil

	case isa.FieldSA:
		if !lx.IsNumeric() || lx.Value > 31 {
			return 0, newError(ErrEncoding, ctx.Line, lx.Text, "invalid shift amount")
		}
		return lx.Value, nil

	case isa.FieldTarget:
		if lx.IsNumeric() && lx.Value > isa.TargetMask {
			return 0, newError(ErrEncoding, ctx.Line, lx.Text, "jump target out of range")
		}
		return Evaluate(lx, REL26, *ctx, a.relocs, a.syms)

	default:
		return a.immediate(ctx, e, lx)
	}
}

func (a *assembler) immediate(ctx *Context, e expansion, lx Lexeme) (uint32, error) {
	kind := e.kind
	if e.rule.Shape == isa.I2 {
		kind = PCRel
	}

	if !lx.IsNumeric() {
		return Evaluate(lx, kind, *ctx, a.relocs, a.syms)
	}

	switch {
	case e.split && kind == HI16:
		return lx.Value >> 16, nil
	case e.split && kind == LO16:
		return lx.Value & isa.ImmMask, nil
	case lx.Value > isa.ImmMask && lx.Value < 0xffff8000:
		return 0, newError(ErrEncoding, ctx.Line, lx.Text, "immediate out of range")
	default:
		return lx.Value & isa.ImmMask, nil
	}
}
