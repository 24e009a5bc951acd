// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "mipsasm"})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "help",
		Brief:       "Display help",
		Description: "Display help for a command or command group.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})

	// Assemble commands
	as := root.AddSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	as.AddCommand(cmd.CommandDescriptor{
		Name:  "file",
		Brief: "Assemble a file from disk",
		Description: "Run the assembler on the specified file. If assembly" +
			" succeeds, the result becomes the current assembly used by the" +
			" list, symbols, relocations, disassemble, where and save commands.",
		Usage: "assemble file <filename>",
		Data:  (*Host).cmdAssembleFile,
	})
	as.AddCommand(cmd.CommandDescriptor{
		Name:  "interactive",
		Brief: "Start interactive assembly mode",
		Description: "Start interactive assembler mode. A new prompt will" +
			" appear, allowing you to enter assembly language source lines" +
			" interactively. Once you type .end, the lines will be assembled" +
			" and the result becomes the current assembly.",
		Usage: "assemble interactive",
		Data:  (*Host).cmdAssembleInteractive,
	})

	// Catalog commands
	ca := root.AddSubtree(cmd.TreeDescriptor{Name: "catalog", Brief: "Instruction catalog commands"})
	ca.AddCommand(cmd.CommandDescriptor{
		Name:  "load",
		Brief: "Load an instruction catalog",
		Description: "Load an instruction catalog from disk. Subsequent" +
			" assemblies and disassemblies use the loaded catalog. Use" +
			" 'catalog load default' to return to the built-in catalog.",
		Usage: "catalog load <filename>",
		Data:  (*Host).cmdCatalogLoad,
	})
	ca.AddCommand(cmd.CommandDescriptor{
		Name:  "show",
		Brief: "Show catalog rules",
		Description: "Display the encoding rule of a mnemonic, or of every" +
			" mnemonic in the catalog if none is given.",
		Usage: "catalog show [<mnemonic>]",
		Data:  (*Host).cmdCatalogShow,
	})

	root.AddCommand(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Disassemble the current assembly starting at the" +
			" requested address. The number of lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		Usage: "disassemble [[.<section>:]<address>] [<lines>]",
		Data:  (*Host).cmdDisassemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "inspect",
		Brief: "Dump assembler data structures",
		Description: "Pretty-print the internal representation of the" +
			" current assembly's symbols, relocations, code units or source" +
			" lines, or of a catalog rule.",
		Usage: "inspect symbols|relocations|code|lines|rule <mnemonic>",
		Data:  (*Host).cmdInspect,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "list",
		Brief: "List the current assembly",
		Description: "Display the listing of the current assembly. Symbols and" +
			" relocations are included according to the ListSymbols and" +
			" ListRelocations settings.",
		Usage: "list",
		Data:  (*Host).cmdList,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "relocations",
		Brief:       "List relocations",
		Description: "Display the relocations retained by the current assembly.",
		Usage:       "relocations",
		Data:        (*Host).cmdRelocations,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "save",
		Brief: "Save the current assembly",
		Description: "Write the current assembly to disk: the .text image to" +
			" <base>.bin, the source map to <base>.map and the listing to" +
			" <base>.l.",
		Usage: "save <base>",
		Data:  (*Host).cmdSave,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "symbols",
		Brief:       "List symbols",
		Description: "Display the symbol table of the current assembly.",
		Usage:       "symbols",
		Data:        (*Host).cmdSymbols,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "where",
		Brief: "Find the source line of an address",
		Description: "Use the source map of the current assembly to display" +
			" the source line that produced the code at an address.",
		Usage: "where [.<section>:]<address>",
		Data:  (*Host).cmdWhere,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble file")
	root.AddShortcut("ai", "assemble interactive")
	root.AddShortcut("cl", "catalog load")
	root.AddShortcut("cs", "catalog show")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("l", "list")
	root.AddShortcut("?", "help")

	cmds = root
}
