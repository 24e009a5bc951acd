// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"github.com/golang/glog"

	"github.com/beevik/mipsasm/isa"
)

// Solve folds final symbol addresses into the code units referenced by the
// relocation list, in creation order. PC-relative relocations are consumed;
// all other relocations remain in the list.
func Solve(syms *SymbolTable, code *CodeStream, relocs *RelocationList) error {
	var err error
	relocs.retain(func(r *Relocation) bool {
		if err != nil {
			return true
		}
		err = solve(syms, code, r)
		return r.Kind != PCRel
	})
	return err
}

func solve(syms *SymbolTable, code *CodeStream, r *Relocation) error {
	sym := syms.Read(r.Symbol)
	if sym.Section == Undefined {
		return newError(ErrSymbol, r.Line, r.Name, "unresolved symbol")
	}

	u, ok := code.Find(r.Section, r.Address)
	if !ok {
		return newError(ErrInternal, r.Line, r.Name, "no code at .%s:%08X for relocation", r.Section, r.Address)
	}

	before := u.Value
	switch r.Kind {
	case ABS32:
		u.Value = sym.Address

	case REL26:
		u.Value = setField(u.Value, isa.TargetMask, u.Value+sym.Address>>2)

	case HI16:
		u.Value = setField(u.Value, isa.ImmMask, u.Value+sym.Address>>16)

	case LO16:
		u.Value = setField(u.Value, isa.ImmMask, u.Value+isa.SignExtend16(sym.Address))

	case PCRel:
		if sym.Section != r.Section {
			return newError(ErrSymbol, r.Line, r.Name, "branch target in another section")
		}
		disp := int32(sym.Address-r.Address)>>2 - 1
		if disp < -0x8000 || disp > 0x7fff {
			return newError(ErrEncoding, r.Line, r.Name, "branch target out of range")
		}
		u.Value = setField(u.Value, isa.ImmMask, u.Value+uint32(disp))

	default:
		return newError(ErrInternal, r.Line, r.Name, "unknown relocation kind %d", r.Kind)
	}

	glog.V(2).Infof("%08X %-11s %-10s %08X -> %08X", r.Address, r.Kind, r.Name, before, u.Value)
	return nil
}

// setField replaces the bits of v selected by mask with the same bits of
// field.
func setField(v, mask, field uint32) uint32 {
	return v&^mask | field&mask
}
