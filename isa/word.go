// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

// Field widths and masks of the 32-bit instruction word.
const (
	RegMask    = 0x1f
	ImmMask    = 0xffff
	TargetMask = 0x03ffffff
)

// Values holds one value per operand field, indexed by Field.
type Values [FieldTarget + 1]uint32

// Encode packs operand field values into an instruction word using the
// rule's opcode and shape.
func (r *Rule) Encode(v Values) uint32 {
	w := r.Opcode << 26
	switch r.Shape {
	case R:
		w |= (v[FieldRS] & RegMask) << 21
		w |= (v[FieldRT] & RegMask) << 16
		w |= (v[FieldRD] & RegMask) << 11
		w |= (v[FieldSA] & RegMask) << 6
		w |= r.Funct & 0x3f
	case I, IB, I2:
		w |= (v[FieldRS] & RegMask) << 21
		w |= (v[FieldRT] & RegMask) << 16
		w |= v[FieldImm] & ImmMask
	case J:
		w |= v[FieldTarget] & TargetMask
	}
	return w
}

// A Word is an instruction word split into every possible field. Which
// fields are meaningful depends on the shape of the instruction.
type Word struct {
	Opcode uint32
	RS     uint32
	RT     uint32
	RD     uint32
	SA     uint32
	Funct  uint32
	Imm    uint32
	Target uint32
}

// Decode splits an instruction word into its fields.
func Decode(w uint32) Word {
	return Word{
		Opcode: w >> 26,
		RS:     (w >> 21) & RegMask,
		RT:     (w >> 16) & RegMask,
		RD:     (w >> 11) & RegMask,
		SA:     (w >> 6) & RegMask,
		Funct:  w & 0x3f,
		Imm:    w & ImmMask,
		Target: w & TargetMask,
	}
}

// Value returns the decoded value of a single field.
func (w Word) Value(f Field) uint32 {
	switch f {
	case FieldRS:
		return w.RS
	case FieldRT:
		return w.RT
	case FieldRD:
		return w.RD
	case FieldSA:
		return w.SA
	case FieldImm:
		return w.Imm
	default:
		return w.Target
	}
}

// SignExtend16 sign-extends the low 16 bits of v.
func SignExtend16(v uint32) uint32 {
	return uint32(int32(int16(v & ImmMask)))
}
