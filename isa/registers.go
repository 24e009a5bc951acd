// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import "strconv"

var registerNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var registerIndex = func() map[string]uint32 {
	m := make(map[string]uint32, len(registerNames))
	for i, n := range registerNames {
		m[n] = uint32(i)
	}
	return m
}()

// Register converts a register operand such as "$t0", "$31" or "$zero"
// into its register index.
func Register(s string) (uint32, bool) {
	if len(s) < 2 || s[0] != '$' {
		return 0, false
	}
	name := s[1:]
	if n, ok := registerIndex[name]; ok {
		return n, true
	}
	if name[0] < '0' || name[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(name, 10, 8)
	if err != nil || n > 31 {
		return 0, false
	}
	return uint32(n), true
}

// RegisterName returns the conventional name of a register, including the
// leading '$'.
func RegisterName(n uint32) string {
	return "$" + registerNames[n&RegMask]
}
