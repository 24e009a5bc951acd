// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// NoSpecial is the catalog marker for a rule without a rewrite spec.
const NoSpecial = "#"

// A ParseError reports a malformed catalog record.
type ParseError struct {
	Line int    // 1-based catalog line number
	Msg  string // description of the problem
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("catalog line %d: %s", e.Line, e.Msg)
}

// A Catalog maps mnemonics to encoding rules. It is not modified after it
// has been built.
type Catalog struct {
	rules map[string]*Rule
	order []*Rule
}

// Load reads a catalog from a text source. Each non-empty line holds one
// record:
//
//	MNEMONIC OPCODE_BITS SHAPE_NUMBER OPERAND_MASK [SPECIAL]
//
// Lines starting with ';' are comments.
func Load(r io.Reader) (*Catalog, error) {
	c := &Catalog{rules: make(map[string]*Rule)}

	scanner := bufio.NewScanner(r)
	row := 0
	for scanner.Scan() {
		row++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == ';' {
			continue
		}

		rule, err := ParseRule(text)
		if err != nil {
			return nil, &ParseError{Line: row, Msg: err.Error()}
		}
		if _, found := c.rules[rule.Mnemonic]; found {
			return nil, &ParseError{Line: row, Msg: fmt.Sprintf("mnemonic '%s' defined more than once", rule.Mnemonic)}
		}
		c.rules[rule.Mnemonic] = rule
		c.order = append(c.order, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Every expanding rule needs a non-expanding partner.
	for _, rule := range c.order {
		if !rule.Expand {
			continue
		}
		pair, ok := c.rules[rule.Mnemonic+PairSuffix]
		if !ok {
			return nil, &ParseError{Msg: fmt.Sprintf("mnemonic '%s' has no paired rule '%s%s'", rule.Mnemonic, rule.Mnemonic, PairSuffix)}
		}
		if pair.Expand {
			return nil, &ParseError{Msg: fmt.Sprintf("paired rule '%s' may not expand again", pair.Mnemonic)}
		}
	}

	return c, nil
}

// LoadFile reads a catalog from a file on disk.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

// ParseRule parses a single catalog record.
func ParseRule(text string) (*Rule, error) {
	f := strings.Fields(text)
	if len(f) < 4 || len(f) > 5 {
		return nil, fmt.Errorf("expected 4 or 5 fields, found %d", len(f))
	}

	rule := &Rule{Mnemonic: f[0], Bits: f[1], Special: NoSpecial}

	shape, err := strconv.Atoi(f[2])
	if err != nil || shape < int(R) || shape > int(I2) {
		return nil, fmt.Errorf("invalid shape number '%s'", f[2])
	}
	rule.Shape = Shape(shape)

	if err := rule.parseOpcode(f[1]); err != nil {
		return nil, err
	}
	if err := rule.parseMask(f[3]); err != nil {
		return nil, err
	}
	if len(f) == 5 && f[4] != NoSpecial {
		rule.Special = f[4]
		if err := rule.parseSpecial(f[4]); err != nil {
			return nil, err
		}
	}
	return rule, nil
}

func (r *Rule) parseOpcode(bits string) error {
	v, ok := parseBits(bits)
	if !ok || len(bits) > 12 {
		return fmt.Errorf("invalid opcode bits '%s'", bits)
	}

	switch {
	case r.Shape == R && len(bits) > 6:
		r.Opcode, r.Funct = v>>6, v&0x3f
	case r.Shape == R:
		r.Funct = v
	case len(bits) > 6:
		return fmt.Errorf("opcode '%s' wider than 6 bits", bits)
	default:
		r.Opcode = v
	}
	return nil
}

// Masks shorter than 4 characters are padded with absent flags.
func (r *Rule) parseMask(mask string) error {
	if len(mask) == 0 || len(mask) > len(r.Mask) {
		return fmt.Errorf("invalid operand mask '%s'", mask)
	}
	for i := 0; i < len(mask); i++ {
		switch mask[i] {
		case '0':
		case '1':
			r.Mask[i] = true
		default:
			return fmt.Errorf("invalid operand mask '%s'", mask)
		}
	}
	return nil
}

func (r *Rule) parseSpecial(spec string) error {
	items := strings.Split(spec, ",")
	if items[0] == "*" {
		r.Expand = true
		items = items[1:]
	}

	for _, item := range items {
		name, source, found := strings.Cut(item, "=")
		if !found {
			return fmt.Errorf("invalid rewrite '%s'", item)
		}

		field, ok := fieldByName[name]
		if !ok || !r.Shape.hasField(field) {
			return fmt.Errorf("field '%s' not valid for %s-shape rewrite", name, r.Shape)
		}
		if _, dup := r.Rewrite(field); dup {
			return fmt.Errorf("field '%s' rewritten more than once", name)
		}

		rw, err := parseSource(field, source)
		if err != nil {
			return err
		}
		r.Rewrites = append(r.Rewrites, rw)
	}
	return nil
}

var fieldByName = map[string]Field{
	"rs":        FieldRS,
	"rt":        FieldRT,
	"rd":        FieldRD,
	"sa":        FieldSA,
	"imm":       FieldImm,
	"immediate": FieldImm,
	"offset":    FieldImm,
	"target":    FieldTarget,
}

func parseSource(field Field, source string) (Rewrite, error) {
	switch {
	case len(source) == 1 && source[0] >= 'A' && source[0] <= 'Z':
		return Rewrite{Field: field, Alias: int(source[0] - 'A')}, nil

	case len(source) > 0 && source[0] == '$':
		n, ok := Register(source)
		if !ok {
			return Rewrite{}, fmt.Errorf("invalid register '%s'", source)
		}
		return Rewrite{Field: field, Alias: -1, Literal: n}, nil

	default:
		v, ok := parseBits(source)
		if !ok || len(source) > 26 {
			return Rewrite{}, fmt.Errorf("invalid rewrite source '%s'", source)
		}
		return Rewrite{Field: field, Alias: -1, Literal: v}, nil
	}
}

func parseBits(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			v <<= 1
		case '1':
			v = v<<1 | 1
		default:
			return 0, false
		}
	}
	return v, true
}

// Lookup returns the rule for a mnemonic. The exact spelling is tried
// first, then the upper-cased spelling.
func (c *Catalog) Lookup(name string) (*Rule, bool) {
	if r, ok := c.rules[name]; ok {
		return r, true
	}
	r, ok := c.rules[strings.ToUpper(name)]
	return r, ok
}

// Pair returns the rule encoding the second instruction of an expanding
// rule.
func (c *Catalog) Pair(r *Rule) (*Rule, bool) {
	p, ok := c.rules[r.Mnemonic+PairSuffix]
	return p, ok
}

// Rules returns all rules in catalog order.
func (c *Catalog) Rules() []*Rule {
	return c.order
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

//go:embed instSet.txt
var defaultCatalog string

var (
	defaultOnce sync.Once
	defaultSet  *Catalog
)

// Default returns the built-in MIPS32 catalog. It is safe for concurrent
// use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(strings.NewReader(defaultCatalog))
		if err != nil {
			panic("invalid built-in catalog: " + err.Error())
		}
		defaultSet = c
	})
	return defaultSet
}
