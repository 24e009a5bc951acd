// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

var hex = "0123456789ABCDEF"

// Return a big-endian representation of a code unit's value.
func toBytes(u CodeUnit) []byte {
	switch u.Width {
	case ByteWidth:
		return []byte{byte(u.Value)}
	default:
		return []byte{byte(u.Value >> 24), byte(u.Value >> 16), byte(u.Value >> 8), byte(u.Value)}
	}
}

// Return a packed hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	s := make([]byte, len(b)*2)
	for i, j := 0, 0; i < len(b); i, j = i+1, j+2 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
	}
	return string(s)
}
