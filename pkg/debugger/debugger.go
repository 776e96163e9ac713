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


package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) breakAt(mc *machine.Machine) {
	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc)
	}
}

// Interrupt asks for a break before the next instruction. Unlike setting
// Break it is safe to call from another goroutine, e.g. a signal handler.
func (dbg *Debugger) Interrupt() {
	dbg.interrupted.Store(true)
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.interrupted.Swap(false) || dbg.Break {
		dbg.breakAt(mc)
		return
	}

	if dbg.stepOver && mc.State.Program == dbg.overAddr {
		dbg.stepOver = false
		dbg.breakAt(mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.breakAt(mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr && dbg.HandleRead != nil {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr && dbg.HandleWrite != nil {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// Returns false when a breakpoint already exists at addr
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

func (dbg *Debugger) RemoveBreakpoint(i int) bool {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return false
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
	return true
}

// Returns false when an identical watchpoint already exists
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) bool {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return false
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return true
}

// Next arranges for execution to stop after the instruction at PC. Calls
// are stepped over and stop once the subroutine returns.
func (dbg *Debugger) Next(mc *machine.Machine) {
	pc := mc.State.Program

	if pc < machine.MEMORY_LAST {
		opcode := encoding.JoinOpcode(
			mc.State.Memory[pc], mc.State.Memory[pc+1],
		)

		if IsCall(opcode) {
			dbg.Break = false
			dbg.stepOver = true
			dbg.overAddr = pc + 2
			return
		}
	}

	dbg.Break = true
}

func (dbg *Debugger) Continue() {
	dbg.Break = false
	dbg.stepOver = false
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	out := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(out, "No instruction found at %#04x\n", addr)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := lines[offset]; found {
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(out, "\033[1;30m~~~~~~~~\033[0m ")
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	out := dbg.out()
	end := uint32(addr) + uint32(count)

	if end > machine.MEMORY_SIZE {
		end = machine.MEMORY_SIZE
	}

	for i := uint32(addr); i < end; i++ {
		if i == uint32(addr) {
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		} else if (i-uint32(addr))%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%02x\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%02x ", result)
		}
	}

	fmt.Fprintln(out)
}

func (dbg *Debugger) PrintState(snap machine.Snapshot) {
	out := dbg.out()

	for i, register := range snap.Registers {
		fmt.Fprintf(out, "\033[1mV%X:\033[0m %#02x\t", i, register)
		if i == (len(snap.Registers)-1)/2 {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(
		out,
		"\033[1mPC:\033[0m %#04x\t\033[1mI:\033[0m %#04x\t"+
			"\033[1mSP:\033[0m %d\t\033[1mDT:\033[0m %d\t\033[1mST:\033[0m %d\n",
		snap.Program,
		snap.Index,
		snap.StackPointer,
		snap.DelayTimer,
		snap.SoundTimer,
	)

	for i := 0; i < int(snap.StackPointer) && i < len(snap.Stack); i++ {
		fmt.Fprintf(out, "\033[1;30m#%02d\033[0m %#04x\n", i, snap.Stack[i])
	}
}

func (dbg *Debugger) PrintDisassembly(mc *machine.MachineState, addr, count uint16) {
	out := dbg.out()

	for _, line := range DisassembleRange(mc.Memory[:], addr, count) {
		if dbg.SymTable != nil {
			if label, ok := dbg.SymTable.Label(line.Addr); ok {
				fmt.Fprintf(out, "\033[1;30m%s:\033[0m\n", label)
			}
		}

		marker := " "
		if line.Addr == mc.Program {
			marker = ">"
		}

		fmt.Fprintf(
			out, "%s\033[1m[%#04x]\033[0m %04x  %s\n",
			marker, line.Addr, line.Opcode, line.Text,
		)
	}
}
