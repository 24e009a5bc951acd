// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/term"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/beevik/mipsasm/asm"
	"github.com/beevik/mipsasm/host"
	"github.com/beevik/mipsasm/isa"
)

var (
	listing bool
	binary  bool
	catalog string
)

var rootCmd = &cobra.Command{
	Use:   "mipsasm <file>",
	Short: "Assemble a MIPS32 source file",
	Long: "Assemble a MIPS32 source file. With --list a listing is written to" +
		" <base>.l, and with --binary the .text image and source map are" +
		" written to <base>.bin and <base>.map.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		assembleFile(args[0])
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell [script ...]",
	Short: "Run the interactive assembler shell",
	Long: "Run the commands contained in each script file, then accept" +
		" commands from standard input.",
	Run: func(cmd *cobra.Command, args []string) {
		runShell(args)
	},
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVarP(&catalog, "catalog", "c", "", "instruction catalog file")
	rootCmd.Flags().BoolVarP(&listing, "list", "l", false, "write a listing file")
	rootCmd.Flags().BoolVarP(&binary, "binary", "b", false, "write binary image and source map files")
	rootCmd.AddCommand(shellCmd)
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCatalog() *isa.Catalog {
	if catalog == "" {
		return isa.Default()
	}
	cat, err := isa.LoadFile(catalog)
	if err != nil {
		glog.Exitf("Failed to load catalog '%s': %v", catalog, err)
	}
	glog.V(1).Infof("Loaded %d rules from '%s'", cat.Len(), catalog)
	return cat
}

func assembleFile(path string) {
	a, err := asm.AssembleFile(path, asm.Options{Catalog: loadCatalog()})
	if err != nil {
		glog.Exitf("%s: %v", filepath.Base(path), err)
	}

	base := path[:len(path)-len(filepath.Ext(path))]
	if listing {
		writeOutput(base+".l", a.WriteListing)
	}
	if binary {
		writeOutput(base+".bin", func(w io.Writer) error {
			_, err := a.WriteTo(w)
			return err
		})
		writeOutput(base+".map", func(w io.Writer) error {
			_, err := a.SourceMap().WriteTo(w)
			return err
		})
	}

	fmt.Printf("Assembled '%s': %d code units, %d symbols, %d relocations.\n",
		filepath.Base(path), a.Code.Len(), a.Symbols.Len(), a.Relocations.Len())
}

func writeOutput(filename string, fn func(w io.Writer) error) {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		glog.Exitf("Failed to create '%s': %v", filename, err)
	}
	defer file.Close()

	if err := fn(file); err != nil {
		glog.Exitf("Failed to write '%s': %v", filename, err)
	}
}

func runShell(scripts []string) {
	h := host.New()
	if catalog != "" {
		if err := h.LoadCatalog(catalog); err != nil {
			glog.Exitf("Failed to load catalog '%s': %v", catalog, err)
		}
	}

	for _, filename := range scripts {
		file, err := os.Open(filename)
		if err != nil {
			glog.Exitf("%v", err)
		}
		h.RunCommands(file, os.Stdout, false)
		file.Close()
	}

	h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}
