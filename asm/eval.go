// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A Context tracks the position of the decoder within the program.
type Context struct {
	Section Section
	Address uint32
	Line    int
	Width   Width // emission width of the next code unit
}

// Evaluate returns the value of an operand lexeme. Numeric lexemes yield
// their literal value. A symbol yields 0 and queues a relocation of the
// requested kind against the code unit at the context's address; unknown
// symbols are entered into the table as undefined placeholders.
func Evaluate(lx Lexeme, kind RelocKind, ctx Context, relocs *RelocationList, syms *SymbolTable) (uint32, error) {
	switch {
	case lx.IsNumeric():
		return lx.Value, nil

	case lx.Type == LexSymbol:
		ref := syms.DefineReference(lx.Text, ctx.Line)
		relocs.Add(Relocation{
			Kind:    kind,
			Section: ctx.Section,
			Address: ctx.Address,
			Symbol:  ref,
			Name:    lx.Text,
			Line:    ctx.Line,
		})
		return 0, nil

	default:
		return 0, newError(ErrEncoding, ctx.Line, lx.Text, "invalid operand")
	}
}
