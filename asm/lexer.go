// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"
	"strings"

	"github.com/beevik/mipsasm/isa"
)

// A LexemeType classifies a lexeme produced by the scanner.
type LexemeType byte

// Lexeme types.
const (
	LexZero      LexemeType = iota // the literal 0
	LexDecimal                     // decimal literal
	LexOctal                       // octal literal with a leading 0
	LexHex                         // hexadecimal literal with a 0x prefix
	LexBinary                      // binary literal with a 0b prefix
	LexRegister                    // register name, e.g. $t0
	LexSymbol                      // bare symbol or mnemonic
	LexDirective                   // directive starting with '.'
	LexLabel                       // symbol followed by ':'
	LexString                      // double-quoted string
)

var lexemeTypeName = []string{
	"ZERO", "DEC", "OCT", "HEX", "BIN", "REG", "SYM", "DIR", "LABEL", "STR",
}

func (t LexemeType) String() string {
	if int(t) < len(lexemeTypeName) {
		return lexemeTypeName[t]
	}
	return "?"
}

// A Lexeme is a classified token of a source line.
type Lexeme struct {
	Type   LexemeType
	Text   string // token text; labels omit the ':' and strings are unescaped
	Value  uint32 // numeric value or register index
	Signed bool   // token had a leading '-'
}

// IsNumeric returns true if the lexeme carries a literal value.
func (l Lexeme) IsNumeric() bool {
	switch l.Type {
	case LexZero, LexDecimal, LexOctal, LexHex, LexBinary:
		return true
	default:
		return false
	}
}

// A Line holds the lexemes scanned from one line of source.
type Line struct {
	Number  int      // 1-based source line number
	Source  string   // original source text
	Lexemes []Lexeme // lexemes in source order
}

// Standardize normalizes a raw source line. Runs of blanks collapse into a
// single space, the punctuation characters ',', '(', ')' and '#' are
// isolated by spaces, a ':' is glued to the token it follows, and string
// literals are copied unchanged.
func Standardize(raw string) string {
	var b strings.Builder
	space := false
	emit := func(s string) {
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(s)
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			space = true
		case ',', '(', ')', '#':
			space = true
			emit(string(c))
			space = true
		case ':':
			space = false
			b.WriteByte(':')
			space = true
		case '"':
			j := closingQuote(raw, i)
			emit(raw[i:j])
			i = j - 1
		default:
			emit(string(c))
		}
	}
	return b.String()
}

// closingQuote returns the index just past the string literal starting at
// s[i], or len(s) if the literal is unterminated.
func closingQuote(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// Scanner states.
type state byte

const (
	stateInit state = iota
	stateComment
	stateDecimalZero
	stateDecimal
	stateOctal
	stateHexPrefix
	stateHex
	stateBinaryPrefix
	stateBinary
	stateDirective
	stateRegister
	statePunctuation
	stateString
	stateSymbol
	stateLabel
	stateError
)

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// next returns the state reached from s on character c.
func next(s state, c byte) state {
	switch s {
	case stateInit:
		switch {
		case c == '#':
			return stateComment
		case c == '0':
			return stateDecimalZero
		case isDigit(c):
			return stateDecimal
		case c == '.':
			return stateDirective
		case c == '$':
			return stateRegister
		case c == ',' || c == '(' || c == ')':
			return statePunctuation
		case c == '"':
			return stateString
		case isLetter(c):
			return stateSymbol
		}

	case stateDecimalZero:
		switch {
		case c >= '0' && c <= '7':
			return stateOctal
		case c == 'x' || c == 'X':
			return stateHexPrefix
		case c == 'b' || c == 'B':
			return stateBinaryPrefix
		case c == '8' || c == '9':
			return stateDecimal
		}

	case stateDecimal:
		if isDigit(c) {
			return stateDecimal
		}

	case stateOctal:
		if c >= '0' && c <= '7' {
			return stateOctal
		}

	case stateHexPrefix, stateHex:
		if isHexDigit(c) {
			return stateHex
		}

	case stateBinaryPrefix, stateBinary:
		if c == '0' || c == '1' {
			return stateBinary
		}

	case stateDirective, stateRegister:
		if isLetter(c) || isDigit(c) {
			return s
		}

	case stateSymbol:
		switch {
		case isLetter(c) || isDigit(c) || c == '.':
			return stateSymbol
		case c == ':':
			return stateLabel
		}
	}
	return stateError
}

// classify runs a token through the state machine and returns its final
// state. A leading '-' is consumed and reported through signed.
func classify(tok string) (s state, signed bool) {
	i := 0
	if len(tok) > 1 && tok[0] == '-' {
		signed, i = true, 1
	}

	s = stateInit
	for ; i < len(tok); i++ {
		s = next(s, tok[i])
		if s == stateError || s == stateComment || s == stateString {
			break
		}
	}
	return s, signed
}

// nextToken splits the first whitespace-delimited token from s. A string
// literal is a single token even if it contains blanks, and a '#' always
// starts a new token.
func nextToken(s string) (tok, remain string) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", ""
	}
	if s[0] == '"' {
		j := closingQuote(s, 0)
		return s[:j], s[j:]
	}
	for j := 0; j < len(s); j++ {
		if s[j] == ' ' || s[j] == '\t' || (s[j] == '#' && j > 0) {
			return s[:j], s[j:]
		}
	}
	return s, ""
}

// ScanLine converts one standardized source line into lexemes. Comments and
// punctuation are discarded. Once a '#' is seen the remainder of the line is
// a comment.
func ScanLine(text string, number int) ([]Lexeme, error) {
	var lexemes []Lexeme
	for remain := text; ; {
		var tok string
		tok, remain = nextToken(remain)
		if tok == "" {
			return lexemes, nil
		}

		s, signed := classify(tok)
		if signed && !isNumericState(s) {
			return nil, newError(ErrLexical, number, tok, "invalid token")
		}

		switch s {
		case stateComment:
			return lexemes, nil

		case stateInit, statePunctuation:
			continue

		case stateString:
			str, ok := unquote(tok)
			if !ok {
				return nil, newError(ErrLexical, number, tok, "invalid string literal")
			}
			lexemes = append(lexemes, Lexeme{Type: LexString, Text: str})

		case stateDecimalZero, stateDecimal, stateOctal, stateHex, stateBinary:
			lx, ok := numeric(s, tok, signed)
			if !ok {
				return nil, newError(ErrLexical, number, tok, "value out of range")
			}
			lexemes = append(lexemes, lx)

		case stateRegister:
			n, ok := isa.Register(tok)
			if !ok {
				return nil, newError(ErrLexical, number, tok, "invalid register")
			}
			lexemes = append(lexemes, Lexeme{Type: LexRegister, Text: tok, Value: n})

		case stateDirective:
			if len(tok) == 1 {
				return nil, newError(ErrLexical, number, tok, "invalid directive")
			}
			lexemes = append(lexemes, Lexeme{Type: LexDirective, Text: tok})

		case stateSymbol:
			lexemes = append(lexemes, Lexeme{Type: LexSymbol, Text: tok})

		case stateLabel:
			lexemes = append(lexemes, Lexeme{Type: LexLabel, Text: tok[:len(tok)-1]})

		default:
			return nil, newError(ErrLexical, number, tok, "invalid token")
		}
	}
}

func isNumericState(s state) bool {
	switch s {
	case stateDecimalZero, stateDecimal, stateOctal, stateHex, stateBinary:
		return true
	default:
		return false
	}
}

type numericForm struct {
	typ    LexemeType
	base   int
	prefix int
}

var numericForms = map[state]numericForm{
	stateDecimalZero: {LexZero, 10, 0},
	stateDecimal:     {LexDecimal, 10, 0},
	stateOctal:       {LexOctal, 8, 1},
	stateHex:         {LexHex, 16, 2},
	stateBinary:      {LexBinary, 2, 2},
}

// numeric converts a numeric token into a lexeme. Signed values are stored
// in two's complement.
func numeric(s state, tok string, signed bool) (Lexeme, bool) {
	form := numericForms[s]
	digits := tok
	if signed {
		digits = digits[1:]
	}
	digits = digits[form.prefix:]

	v, err := strconv.ParseUint(digits, form.base, 32)
	if err != nil {
		return Lexeme{}, false
	}

	value := uint32(v)
	if signed {
		value = -value
	}
	return Lexeme{Type: form.typ, Text: tok, Value: value, Signed: signed}, true
}

// unquote strips the quotes from a string literal and expands its escape
// sequences.
func unquote(tok string) (string, bool) {
	if len(tok) < 2 || tok[len(tok)-1] != '"' {
		return "", false
	}

	var b strings.Builder
	body := tok[1 : len(tok)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(body) {
			return "", false
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '"':
			b.WriteByte(body[i])
		default:
			return "", false
		}
	}
	return b.String(), true
}
