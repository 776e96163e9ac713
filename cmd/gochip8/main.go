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
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/keypad"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/screen"
)

var helpvar bool
var debugvar bool
var lenientvar bool
var tracevar bool
var quietvar bool
var hzvar int
var seedvar int64
var releasevar time.Duration

var shouldexit bool
var romPath string
var logger *log.Logger
var pad *keypad.Keypad

const usage = "gochip8 [-debug] [-hz #] [-seed #] filename"

const keyQuit = 0x1b

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&lenientvar, "lenient", false, "Skips unknown opcodes instead of stopping")
	flag.BoolVar(&tracevar, "trace", false, "Logs every executed instruction")
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
	flag.IntVar(&hzvar, "hz", 500, "Instructions executed per second")
	flag.Int64Var(&seedvar, "seed", 0, "Seed for RND, 0 seeds from the clock")
	flag.DurationVar(&releasevar, "release", 150*time.Millisecond,
		"How long a key stays held after the terminal reports it")
	flag.Parse()
}

func loadROM(mc *machine.Machine, path string) error {
	file, err := os.Open(path)

	if err != nil {
		return err
	}

	defer file.Close()

	return mc.LoadROM(file)
}

func setupDebugger(mc *machine.Machine) *debugger.Debugger {
	dbg := &debugger.Debugger{
		HandleBreak: handleBreak,
		HandleRead:  handleRead,
		HandleWrite: handleWrite,
	}
	mc.Debugger = dbg

	filename := config.SymTablePath(romPath)

	if file, err := os.Open(filename); err == nil {
		if symtable, err := assembler.LoadSymTable(file); err == nil {
			dbg.SymTable = symtable
		} else {
			logger.Warn("Error loading symbol file",
				log.String("file", filename), log.Err(err))
		}

		file.Close()
	} else {
		logger.Warn("Error loading symbol file",
			log.String("file", filename), log.Err(err))
	}

	if dbg.SymTable != nil && dbg.SymTable.Source != "" {
		if file, err := os.Open(dbg.SymTable.Source); err == nil {
			dbg.Source = file
		} else {
			logger.Warn("Error loading source file",
				log.String("file", dbg.SymTable.Source), log.Err(err))
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		for range c {
			dbg.Interrupt()
		}
	}()

	return dbg
}

func run(ctx context.Context, period time.Duration, mc *machine.Machine, dbg *debugger.Debugger) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	buf := make([]byte, 32)
	beeping := false

	for !shouldexit {
		var now time.Time

		select {
		case <-ctx.Done():
			return nil
		case now = <-ticker.C:
		}

		input := pollInput(buf)

		// Escape sequences from arrow keys also start with keyQuit
		if len(input) == 1 && input[0] == keyQuit {
			return nil
		}

		for _, b := range input {
			pad.PressRune(rune(b), now)
		}

		pad.Update(now)
		pad.Apply(&mc.State)

		draw, err := mc.Step()

		if err != nil {
			var unknown *machine.UnknownOpcodeError

			if lenientvar && errors.As(err, &unknown) {
				logger.Warn("Skipping unknown opcode",
					log.Hex("pc", unknown.Program),
					log.Hex("opcode", unknown.Opcode))
				mc.State.Program += 2
				continue
			}

			if dbg == nil {
				return err
			}

			fmt.Print("\r\n")
			fmt.Println(err)
			debugREPL(dbg, mc)
			continue
		}

		if draw {
			screen.Render(os.Stdout, &mc.State.Display)
		}

		if mc.Beeping() && !beeping {
			fmt.Print("\a")
		}

		beeping = mc.Beeping()
	}

	return nil
}

func gochip8() int {
	logger = config.CreateLogger(tracevar, quietvar)

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		logger.Error(usage)
		return 1
	}

	period, err := config.ClockPeriod(hzvar)

	if err != nil {
		logger.Error("Invalid -hz", log.Err(err))
		return 1
	}

	romPath = args[0]
	pad = keypad.New(keypad.DefaultKeymap, releasevar)

	mc := machine.NewMachine()
	mc.Random = machine.NewRandomSource(seedvar)

	if tracevar {
		mc.Logger = logger
	}

	if err := loadROM(mc, romPath); err != nil {
		logger.Error("Loading ROM failed", log.Err(err))
		return 1
	}

	var dbg *debugger.Debugger
	ctx := context.Background()

	if debugvar {
		dbg = setupDebugger(mc)

		if file, ok := dbg.Source.(*os.File); ok {
			defer file.Close()
		}
	} else {
		ctx = app.Context()
	}

	if err := enterRawTerm(); err != nil {
		logger.Error("Configuring terminal failed", log.Err(err))
		return 1
	}

	defer exitRawTerm()

	if dbg != nil {
		debugREPL(dbg, mc)
	}

	screen.Clear(os.Stdout)

	if err := run(ctx, period, mc, dbg); err != nil {
		exitRawTerm()
		logger.Error("Machine stopped", log.Err(err))
		return 1
	}

	return 0
}

func main() {
	os.Exit(gochip8())
}
