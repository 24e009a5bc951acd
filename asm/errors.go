// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the assembler wraps one of these.
//
// ErrDirective also covers a section switch back into a section that
// already holds code: each section is one contiguous block starting at
// address 0, so a .text/.data/.text layout is rejected.
var (
	ErrLexical   = errors.New("lexical error")
	ErrEncoding  = errors.New("encoding error")
	ErrDirective = errors.New("directive error")
	ErrSymbol    = errors.New("symbol error")
	ErrInternal  = errors.New("internal consistency error")
	ErrIO        = errors.New("i/o error")
)

// An Error describes a failure that aborted an assembly run.
type Error struct {
	Kind  error  // one of the Err* kinds
	Line  int    // source line number, 0 if unknown
	Token string // offending token, if any
	Msg   string // description of the problem
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Line > 0 {
		s += fmt.Sprintf(" on line %d", e.Line)
	}
	s += ": " + e.Msg
	if e.Token != "" {
		s += " '" + e.Token + "'"
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, line int, token, format string, args ...any) *Error {
	return &Error{
		Kind:  kind,
		Line:  line,
		Token: token,
		Msg:   fmt.Sprintf(format, args...),
	}
}
