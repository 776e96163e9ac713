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
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/screen"
)

var lastcmd []string

// Accepts either a label from the symbol table or a hex address
func resolveAddr(dbg *debugger.Debugger, arg string) (uint16, error) {
	if dbg.SymTable != nil {
		if addr, ok := dbg.SymTable.Lookup(arg); ok {
			return addr, nil
		}
	}

	return encoding.DecodeHex(arg)
}

func indexFormat(count int, suffix string) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: %s\n", int64(digits)+1, suffix)
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		addr, err := resolveAddr(dbg, args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		fmtstring := indexFormat(len(dbg.Breakpoints), "%#04x")

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		if !dbg.RemoveBreakpoint(i) {
			fmt.Println("Invalid breakpoint number")
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		fmt.Printf("break: '%s' is not a valid command\n", cmd)
		fmt.Println(usage)
	}
}

var watchNames = map[debugger.WatchpointType]string{
	debugger.ReadWatch:      "read",
	debugger.WriteWatch:     "write",
	debugger.ReadWriteWatch: "readwrite",
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			fmt.Println(usage)
			return
		}

		addr, err := resolveAddr(dbg, args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			fmt.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf(
				"Watchpoint added [%#04x] (%s)\n", addr, watchNames[wtype],
			)
		}

	case "l", "ls", "list":
		fmtstring := indexFormat(len(dbg.Watchpoints), "%#04x %s")

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchNames[watchpoint.Type])
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			fmt.Println(err)
			return
		}

		if !dbg.RemoveWatchpoint(i) {
			fmt.Println("Invalid watchpoint number")
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		fmt.Printf("watch: '%s' is not a valid command\n", cmd)
		fmt.Println(usage)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "register [V#|I|PC|SP|DT|ST] [0x###]"

	if len(args) == 0 {
		dbg.PrintState(mc.Snapshot())
		return
	}

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		fmt.Println(err)
		return
	}

	name := strings.ToUpper(args[0])
	state := &mc.State

	switch name {
	case "I":
		err = state.SetIndex(value)
	case "PC":
		err = state.SetProgram(value)
	case "SP":
		if value > math.MaxUint8 {
			err = &machine.StateFault{Field: "StackPointer", Value: int(value)}
		} else {
			err = state.SetStackPointer(uint8(value))
		}
	case "DT", "ST":
		if value > math.MaxUint8 {
			err = &machine.StateFault{Field: name, Value: int(value)}
		} else if name == "DT" {
			state.SetDelayTimer(uint8(value))
		} else {
			state.SetSoundTimer(uint8(value))
		}
	default:
		if len(name) != 2 || name[0] != 'V' {
			fmt.Println("Invalid register")
			return
		}

		x, perr := strconv.ParseUint(name[1:], 16, 8)

		if perr != nil || value > math.MaxUint8 {
			fmt.Println("Invalid register value")
			return
		}

		err = state.SetRegister(uint8(x), uint8(value))
	}

	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#02x\n", name, value)
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x###|label] [#]"

	if len(args) > 2 {
		fmt.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	addr, size, ok := rangeArgs(dbg, mc, args, 3)

	if ok {
		dbg.PrintSource(addr, size)
	}
}

// Parses the optional [addr|label] [count] pair shared by several
// commands. A lone decimal count applies to the current PC.
func rangeArgs(dbg *debugger.Debugger, mc *machine.MachineState, args []string, size uint16) (uint16, uint16, bool) {
	addr := mc.Program

	if len(args) > 0 {
		var err error
		addr, err = resolveAddr(dbg, args[0])

		if err != nil {
			value, err := strconv.ParseUint(args[0], 10, 16)

			if err != nil {
				fmt.Println(err)
				return 0, 0, false
			}

			addr = mc.Program
			size = uint16(value)
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseUint(args[1], 10, 16)

		if err != nil {
			fmt.Println(err)
			return 0, 0, false
		}

		size = uint16(value)
	}

	return addr, size, true
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	const usage = "labels"

	if len(args) > 0 {
		fmt.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := resolveAddr(dbg, args[0])

	if err != nil {
		fmt.Printf("Unable to find '%s'\n", args[0])
		return
	}

	if err := mc.SetProgram(addr); err != nil {
		fmt.Println(err)
		return
	}

	if dbg.SymTable != nil {
		if label, ok := dbg.SymTable.Label(addr); ok {
			fmt.Printf(
				"\033[1mPC:\033[0m %#04x \033[1;30m(%s)\033[0m\n", addr, label,
			)
			return
		}
	}

	fmt.Printf("\033[1mPC:\033[0m %#04x\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x###|label|#] [#]"

	if len(args) > 2 {
		fmt.Println(usage)
		return
	}

	if addr, size, ok := rangeArgs(dbg, mc, args, 1); ok {
		dbg.PrintMem(mc, addr, size)
	}
}

func debugDisasm(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "disasm [0x###|label|#] [#]"

	if len(args) > 2 {
		fmt.Println(usage)
		return
	}

	if addr, size, ok := rangeArgs(dbg, mc, args, 8); ok {
		dbg.PrintDisassembly(mc, addr, size)
	}
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x###|label] [0x##]"

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	addr, err := resolveAddr(dbg, args[0])

	if err != nil {
		fmt.Println(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		fmt.Println(err)
		return
	}

	if value > math.MaxUint8 {
		fmt.Println("Value does not fit in a byte")
		return
	}

	if err := mc.Write(addr, uint8(value)); err != nil {
		fmt.Println(err)
		return
	}

	dbg.PrintMem(mc, addr, 1)
}

func debugKey(mc *machine.MachineState, args []string) {
	const usage = "key [0-F] [down|up]"

	if len(args) == 0 {
		for key, held := range mc.Keys {
			if held {
				fmt.Printf("\033[1m%X\033[0m ", key)
			} else {
				fmt.Printf("\033[1;30m%X\033[0m ", key)
			}
		}

		fmt.Println()
		return
	}

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	key, err := strconv.ParseUint(args[0], 16, 8)

	if err != nil || key >= machine.KEY_COUNT {
		fmt.Println("Invalid key")
		return
	}

	switch args[1] {
	case "d", "down":
		pad.Latch(uint8(key), true)
	case "u", "up":
		pad.Latch(uint8(key), false)
	default:
		fmt.Println(usage)
		return
	}

	pad.Apply(mc)
	fmt.Printf("Key %X %s\n", key, args[1])
}

func debugScreen(mc *machine.MachineState) {
	for _, line := range screen.Frame(&mc.Display) {
		fmt.Println(line)
	}
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	exitRawTerm()
	defer enterRawTerm()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, mc, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "d", "dis", "disasm":
			debugDisasm(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "k", "key", "keys":
			debugKey(&mc.State, args)

		case "screen":
			debugScreen(&mc.State)

		case "c", "continue":
			dbg.Continue()
			return

		case "n", "next":
			dbg.Next(mc)
			return

		case "step":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			screen.Clear(os.Stdout)

		case "reset":
			if err := loadROM(mc, romPath); err != nil {
				fmt.Println(err)
				continue
			}

			pad.Reset()
			fmt.Println("Machine reset")

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Print("\r\n")
		fmt.Println("Program stopped")
	}

	if dbg.SymTable != nil && dbg.Source != nil {
		dbg.PrintSource(mc.State.Program, 1)
	} else {
		dbg.PrintDisassembly(&mc.State, mc.State.Program, 1)
	}

	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Print("\r\n")
	fmt.Println("Program stopped on read")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Print("\r\n")
	fmt.Println("Program stopped on write")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}
