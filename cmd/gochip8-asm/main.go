// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.


package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/config"
)

var helpvar bool
var debugvar bool
var quietvar bool
var outvar string

const usage = "gochip8-asm [-debug] [-out outfile] filename"

const ROM_EXT = ".ch8"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'"+config.SYMTABLE_EXT+"'",
	)
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

// Prints the offending source line with the token underlined
func printTokenError(input io.ReadSeeker, err error, cursor assembler.Cursor) {
	if _, serr := input.Seek(cursor.LineByte, io.SeekStart); serr != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	line, _ := bufio.NewReader(input).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")

	size := int(cursor.Size)
	if size < 1 {
		size = 1
	}

	underlinefmt := fmt.Sprintf(
		"%% %ds%s",
		int(cursor.Byte-cursor.LineByte)+1,
		strings.Repeat("~", size-1),
	)

	fmt.Fprintf(
		os.Stderr,
		"%s\n%s\n\033[31m%s\033[0m\n",
		err,
		line,
		fmt.Sprintf(underlinefmt, "^"),
	)
}

func gochip8_asm() int {
	logger := config.CreateLogger(false, quietvar)

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var infile string
	var input io.ReadSeeker

	if stat, _ := os.Stdin.Stat(); stat.Mode()&os.ModeCharDevice == 0 && len(args) == 0 {
		input = os.Stdin
		infile = "<stdin>"

		if outvar == "" {
			outvar = "out" + ROM_EXT
		}
	} else {
		if len(args) != 1 {
			logger.Error(usage)
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			logger.Error("Opening source failed", log.Err(err))
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			logger.Error("Opening source failed", log.Err(err))
			return 1
		} else if stat.IsDir() {
			logger.Error("Not a valid CHIP-8 assembly file",
				log.String("file", filename))
			return 1
		}

		input = file
		infile = file.Name()

		if outvar == "" {
			outvar = strings.TrimSuffix(filename, filepath.Ext(filename)) + ROM_EXT
		}
	}

	var symtarget *assembler.SymTable

	if debugvar {
		source := ""

		if input != os.Stdin {
			var err error
			if source, err = filepath.Abs(infile); err != nil {
				logger.Warn("Resolving source path failed", log.Err(err))
				source = ""
			}
		}

		symtarget = assembler.NewSymTable(source)
	}

	result, errs := assembler.AssembleChip8Source(input, symtarget)

	if len(errs) > 0 {
		for _, err := range errs {
			tokenErr, ok := err.(assembler.TokenError)

			if ok && input != os.Stdin {
				fmt.Fprintf(os.Stderr, "\033[1m%s:\033[0m ", filepath.Base(infile))
				printTokenError(input, err, tokenErr.GetPosition())
			} else {
				logger.Error("Assembling failed",
					log.String("file", infile), log.Err(err))
			}
		}

		return 1
	}

	if err := os.WriteFile(outvar, result, 0666); err != nil {
		logger.Error("Error writing output file", log.Err(err))
		return 1
	}

	logger.Info("ROM written",
		log.String("file", outvar), log.Int("size", len(result)))

	if debugvar {
		filename := config.SymTablePath(outvar)

		file, err := os.Create(filename)

		if err != nil {
			logger.Error("Error creating symbol table", log.Err(err))
			return 1
		}

		defer file.Close()

		if err := symtarget.Save(file); err != nil {
			logger.Error("Error writing symbol table", log.Err(err))
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(gochip8_asm())
}
