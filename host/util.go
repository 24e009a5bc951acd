// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/mipsasm/asm"
)

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

// Parse a number in decimal, or in hexadecimal, octal or binary with a
// 0x, 0o or 0b prefix.
func parseNumber(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s'", s)
	}
	return uint32(v), nil
}

// Parse an address of the form [.section:]address. The section defaults to
// .text.
func parseAddress(s string) (asm.Section, uint32, error) {
	sec := asm.Text
	if name, addr, found := strings.Cut(s, ":"); found {
		var ok bool
		if sec, ok = asm.ParseSection(name); !ok {
			return 0, 0, fmt.Errorf("invalid section '%s'", name)
		}
		s = addr
	}
	addr, err := parseNumber(s)
	return sec, addr, err
}
