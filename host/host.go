// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive MIPS assembler shell.
//
// Within the host it is possible to assemble files or interactively entered
// source, view listings, symbol tables and relocations, disassemble the
// assembled code, map addresses back to source lines, swap instruction
// catalogs and save the results to disk.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/k0kubun/pp/v3"

	"github.com/beevik/mipsasm/asm"
	"github.com/beevik/mipsasm/disasm"
	"github.com/beevik/mipsasm/isa"
)

var errQuit = errors.New("exiting program")

// A selection is a command looked up in the command tree, along with the
// arguments that followed it on the command line.
type selection struct {
	command *cmd.Command
	args    []string
}

// A Host holds the state of an interactive assembler session.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	catalog     *isa.Catalog
	assembly    *asm.Assembly
	sourceMap   *asm.SourceMap
	settings    *settings
	lastCmd     *selection
	printer     *pp.PrettyPrinter
}

// New creates a new assembler host using the built-in instruction catalog.
func New() *Host {
	h := &Host{
		catalog:  isa.Default(),
		settings: newSettings(),
		printer:  pp.New(),
	}
	h.printer.SetColoringEnabled(false)
	return h
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	h.printer.SetColoringEnabled(interactive)

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c selection
		if line != "" {
			if st, _, err := cmds.LookupSubtree(line); err == nil {
				st.DisplayHelp(h.output)
				h.flush()
				continue
			}

			c.command, c.args, err = cmds.LookupCommand(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.command.Data.(func(*Host, selection) error)
		err = handler(h, c)
		if err != nil {
			break
		}
	}
	h.flush()
}

// AssembleFile assembles a file using the host's current catalog and
// makes the result the current assembly.
func (h *Host) AssembleFile(filename string) error {
	a, err := asm.AssembleFile(filename, asm.Options{Catalog: h.catalog})
	if err != nil {
		return err
	}
	h.setAssembly(a)
	return nil
}

func (h *Host) setAssembly(a *asm.Assembly) {
	h.assembly = a
	h.sourceMap = a.SourceMap()
	h.settings.NextDisasmAddr = 0
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

// Return the current assembly, or print a message if there is none.
func (h *Host) current() (*asm.Assembly, bool) {
	if h.assembly == nil {
		h.println("Nothing has been assembled.")
		return nil, false
	}
	return h.assembly, true
}

func (h *Host) cmdAssembleFile(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c.command)
		return nil
	}

	filename := c.args[0]
	if err := h.AssembleFile(filename); err != nil {
		h.printf("Failed to assemble '%s': %v\n", filename, err)
		return nil
	}

	a := h.assembly
	h.printf("Assembled '%s': %d code units, %d symbols, %d relocations.\n",
		a.File, a.Code.Len(), a.Symbols.Len(), a.Relocations.Len())
	return nil
}

func (h *Host) cmdAssembleInteractive(c selection) error {
	h.println("Enter assembly source. Type .end to finish.")

	var lines []string
	for {
		if h.interactive {
			h.printf("asm> ")
		}
		line, err := h.getLine()
		if err != nil || strings.EqualFold(line, ".end") {
			break
		}
		lines = append(lines, line)
	}

	src := strings.Join(lines, "\n")
	a, err := asm.Assemble(strings.NewReader(src), asm.Options{Catalog: h.catalog})
	if err != nil {
		h.printf("Failed to assemble: %v\n", err)
		return nil
	}
	h.setAssembly(a)

	h.printf("Assembled %d code units.\n", a.Code.Len())
	return nil
}

func (h *Host) cmdCatalogLoad(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c.command)
		return nil
	}

	if strings.EqualFold(c.args[0], "default") {
		h.catalog, h.settings.CatalogFile = isa.Default(), ""
		h.println("Using the built-in catalog.")
		return nil
	}

	if err := h.loadCatalog(c.args[0]); err != nil {
		h.printf("Failed to load catalog '%s': %v\n", c.args[0], err)
		return nil
	}
	h.printf("Loaded %d rules from '%s'.\n", h.catalog.Len(), c.args[0])
	return nil
}

// LoadCatalog replaces the host's instruction catalog with one read from
// a file.
func (h *Host) LoadCatalog(filename string) error {
	return h.loadCatalog(filename)
}

func (h *Host) loadCatalog(filename string) error {
	cat, err := isa.LoadFile(filename)
	if err != nil {
		return err
	}
	h.catalog, h.settings.CatalogFile = cat, filename
	return nil
}

func (h *Host) cmdCatalogShow(c selection) error {
	rules := h.catalog.Rules()
	if len(c.args) > 0 {
		r, ok := h.catalog.Lookup(c.args[0])
		if !ok {
			h.printf("Unknown mnemonic '%s'.\n", c.args[0])
			return nil
		}
		rules = []*isa.Rule{r}
	}

	for _, r := range rules {
		h.print(ruleString(r), "\n")
	}
	h.flush()
	return nil
}

func ruleString(r *isa.Rule) string {
	var mask [4]byte
	for i, present := range r.Mask {
		mask[i] = '0'
		if present {
			mask[i] = '1'
		}
	}
	return fmt.Sprintf("%-8s %-12s %-2s %s %s", r.Mnemonic, r.Bits, r.Shape, mask[:], r.Special)
}

func (h *Host) cmdDisassemble(c selection) error {
	a, ok := h.current()
	if !ok {
		return nil
	}

	sec, addr := asm.Text, h.settings.NextDisasmAddr
	if len(c.args) > 0 {
		var err error
		sec, addr, err = parseAddress(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	lines := h.settings.DisasmLines
	if len(c.args) > 1 {
		n, err := parseNumber(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(n)
	}

	for i := 0; i < lines; i++ {
		u, ok := a.Code.Find(sec, addr)
		if !ok {
			break
		}
		h.println(h.disassemble(u))
		addr += uint32(u.Width)
	}

	h.settings.NextDisasmAddr = addr
	if h.lastCmd != nil {
		h.lastCmd.args = []string{fmt.Sprintf(".%s:0x%X", sec, addr), fmt.Sprintf("%d", lines)}
	}
	return nil
}

func (h *Host) disassemble(u *asm.CodeUnit) string {
	if u.Width == asm.ByteWidth {
		return fmt.Sprintf("%08X  %02X        .byte 0x%02X", u.Address, u.Value, u.Value)
	}

	var text string
	if h.settings.HexImmediates {
		text = disasm.DisassembleHex(h.catalog, u.Value, u.Address)
	} else {
		text = disasm.Disassemble(h.catalog, u.Value, u.Address)
	}
	return fmt.Sprintf("%08X  %08X  %s", u.Address, u.Value, text)
}

func (h *Host) cmdHelp(c selection) error {
	if err := cmds.GetHelp(h.output, c.args); err != nil {
		h.printf("%v.\n", err)
		return nil
	}
	h.flush()
	return nil
}

func (h *Host) cmdInspect(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c.command)
		return nil
	}

	if c.args[0] == "rule" {
		if len(c.args) < 2 {
			h.displayHelpText(c.command)
			return nil
		}
		r, ok := h.catalog.Lookup(c.args[1])
		if !ok {
			h.printf("Unknown mnemonic '%s'.\n", c.args[1])
			return nil
		}
		h.printer.Fprintln(h.output, r)
		h.flush()
		return nil
	}

	a, ok := h.current()
	if !ok {
		return nil
	}

	var v any
	switch c.args[0] {
	case "symbols":
		v = a.Symbols.Symbols()
	case "relocations":
		v = a.Relocations.Entries()
	case "code":
		v = a.Code.Units()
	case "lines":
		v = a.Lines
	default:
		h.displayHelpText(c.command)
		return nil
	}
	h.printer.Fprintln(h.output, v)
	h.flush()
	return nil
}

func (h *Host) cmdList(c selection) error {
	a, ok := h.current()
	if !ok {
		return nil
	}

	a.WriteCode(h.output)
	if h.settings.ListSymbols && a.Symbols.Len() > 0 {
		h.println("\nSymbols:")
		a.WriteSymbols(h.output)
	}
	if h.settings.ListRelocations && a.Relocations.Len() > 0 {
		h.println("\nRelocations:")
		a.WriteRelocations(h.output)
	}
	h.flush()
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return errQuit
}

func (h *Host) cmdRelocations(c selection) error {
	if a, ok := h.current(); ok {
		a.WriteRelocations(h.output)
		h.flush()
	}
	return nil
}

func (h *Host) cmdSave(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c.command)
		return nil
	}

	a, ok := h.current()
	if !ok {
		return nil
	}

	if err := Save(a, c.args[0]); err != nil {
		h.printf("Failed to save: %v\n", err)
		return nil
	}
	h.printf("Saved '%s.bin', '%s.map' and '%s.l'.\n", c.args[0], c.args[0], c.args[0])
	return nil
}

// Save writes an assembly to disk using a base file name: the .text image
// to <base>.bin, the source map to <base>.map and the listing to <base>.l.
func Save(a *asm.Assembly, base string) error {
	writers := []struct {
		ext string
		fn  func(w io.Writer) error
	}{
		{".bin", func(w io.Writer) error { _, err := a.WriteTo(w); return err }},
		{".map", func(w io.Writer) error { _, err := a.SourceMap().WriteTo(w); return err }},
		{".l", a.WriteListing},
	}

	for _, wr := range writers {
		if err := writeFile(base+wr.ext, wr.fn); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(filename string, fn func(w io.Writer) error) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", filename, err)
	}
	defer file.Close()

	if err := fn(file); err != nil {
		return fmt.Errorf("failed to write '%s': %w", filename, err)
	}
	return file.Close()
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c.command)

	default:
		key, value := strings.ToLower(c.args[0]), strings.Join(c.args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.String:
			err = h.settings.Set(key, value)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v uint32
			v, err = parseNumber(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			err = h.onSettingsUpdate()
		}
		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

// Apply settings that have side effects.
func (h *Host) onSettingsUpdate() error {
	switch h.settings.CatalogFile {
	case "":
		h.catalog = isa.Default()
		return nil
	default:
		return h.loadCatalog(h.settings.CatalogFile)
	}
}

func (h *Host) cmdSymbols(c selection) error {
	if a, ok := h.current(); ok {
		a.WriteSymbols(h.output)
		h.flush()
	}
	return nil
}

func (h *Host) cmdWhere(c selection) error {
	if len(c.args) < 1 {
		h.displayHelpText(c.command)
		return nil
	}

	a, ok := h.current()
	if !ok {
		return nil
	}

	sec, addr, err := parseAddress(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	line := h.sourceMap.Search(sec, addr)
	if line < 0 {
		h.printf("No code at .%s:%08X.\n", sec, addr)
		return nil
	}

	for _, l := range a.Lines {
		if l.Number == line {
			h.printf(".%s:%08X  line %d: %s\n", sec, addr, line, strings.TrimSpace(l.Source))
			break
		}
	}
	return nil
}

func (h *Host) displayHelpText(c *cmd.Command) {
	c.DisplayUsage(h.output)
	h.flush()
}
