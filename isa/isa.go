// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the MIPS32 instruction shapes and the instruction
// catalog consumed by the assembler and disassembler.
//
// A catalog is a table of rules, one per mnemonic. Each rule names the
// opcode bits, the bit-field shape of the encoded word, a mask of the
// operands read from the source line, and an optional rewrite spec used to
// lower pseudo-instructions onto real encodings.
package isa

// Shape identifies one of the fixed 32-bit instruction layouts.
type Shape byte

// Instruction shapes, numbered as they appear in catalog files.
const (
	R  Shape = iota // opcode|rs|rt|rd|sa|funct
	I               // opcode|rs|rt|immediate, operands rt, rs, imm
	J               // opcode|target
	IB              // opcode|rs|rt|immediate, operands rt, imm, rs
	I2              // opcode|rs|rt|immediate, operands rs, rt, imm
)

var shapeName = []string{"R", "I", "J", "IB", "I2"}

func (s Shape) String() string {
	if int(s) < len(shapeName) {
		return shapeName[s]
	}
	return "?"
}

// A Field is one operand slot of an encoded instruction word.
type Field byte

// Operand fields.
const (
	FieldRS Field = iota
	FieldRT
	FieldRD
	FieldSA
	FieldImm
	FieldTarget
)

var fieldName = []string{"rs", "rt", "rd", "sa", "imm", "target"}

func (f Field) String() string {
	if int(f) < len(fieldName) {
		return fieldName[f]
	}
	return "?"
}

// IsRegister returns true if the field holds a register index.
func (f Field) IsRegister() bool {
	return f == FieldRS || f == FieldRT || f == FieldRD
}

// A slot associates a field with the index of its flag in an operand mask.
type slot struct {
	field Field
	flag  int
}

// Fields are listed in operand read order. The flag index is the position
// of the field's presence flag within the 4-character operand mask.
var shapeSlots = [][]slot{
	R:  {{FieldRD, 2}, {FieldRS, 0}, {FieldRT, 1}, {FieldSA, 3}},
	I:  {{FieldRT, 1}, {FieldRS, 0}, {FieldImm, 2}},
	J:  {{FieldTarget, 0}},
	IB: {{FieldRT, 1}, {FieldImm, 2}, {FieldRS, 0}},
	I2: {{FieldRS, 0}, {FieldRT, 1}, {FieldImm, 2}},
}

// Fields returns the operand fields of the shape in read order.
func (s Shape) Fields() []Field {
	slots := shapeSlots[s]
	fields := make([]Field, len(slots))
	for i, sl := range slots {
		fields[i] = sl.field
	}
	return fields
}

// hasField returns true if the field is part of the shape's layout.
func (s Shape) hasField(f Field) bool {
	for _, sl := range shapeSlots[s] {
		if sl.field == f {
			return true
		}
	}
	return false
}

// A Rewrite sources one field of a rule from somewhere other than the next
// sequential operand.
type Rewrite struct {
	Field   Field
	Alias   int    // 0-based operand index in the source line, or -1
	Literal uint32 // value used when Alias is -1
}

// IsAlias returns true if the rewrite takes its value from a source
// operand.
func (r Rewrite) IsAlias() bool {
	return r.Alias >= 0
}

// A Rule describes how one mnemonic is encoded.
type Rule struct {
	Mnemonic string    // name as written in the catalog
	Bits     string    // opcode bit string as written in the catalog
	Opcode   uint32    // primary opcode (bits 31-26)
	Funct    uint32    // function code (bits 5-0), R shape only
	Shape    Shape     // instruction layout
	Mask     [4]bool   // operand presence flags
	Special  string    // rewrite spec as written, "#" if absent
	Rewrites []Rewrite // parsed rewrite spec
	Expand   bool      // rule lowers to itself plus a paired rule
}

// Present returns true if the field is read from the operand list when it
// is not rewritten.
func (r *Rule) Present(f Field) bool {
	for _, sl := range shapeSlots[r.Shape] {
		if sl.field == f {
			return r.Mask[sl.flag]
		}
	}
	return false
}

// Rewrite returns the rewrite associated with a field, if any.
func (r *Rule) Rewrite(f Field) (Rewrite, bool) {
	for _, rw := range r.Rewrites {
		if rw.Field == f {
			return rw, true
		}
	}
	return Rewrite{}, false
}

// IsPseudo returns true if the rule sources any field from a positional
// alias, which means it cannot be recovered from an encoded word.
func (r *Rule) IsPseudo() bool {
	if r.Expand {
		return true
	}
	for _, rw := range r.Rewrites {
		if rw.IsAlias() {
			return true
		}
	}
	return false
}

// PairSuffix is appended to an expanding rule's mnemonic to name the rule
// encoding its second instruction.
const PairSuffix = "*"
