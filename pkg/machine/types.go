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


package machine

import (
	"github.com/retroenv/retrogolib/log"
)

type Operation uint

// Decoded form of an instruction word. Only the operand fields used by Op
// carry meaning.
type Instruction struct {
	Op  Operation
	Raw uint16
	X   uint8
	Y   uint8
	N   uint8
	KK  uint8
	NNN uint16
}

type MachineState struct {
	Registers    [REGISTER_LEN]uint8
	Memory       [MEMORY_SIZE]uint8
	Index        uint16
	Program      uint16
	Stack        [STACK_SIZE]uint16
	StackPointer uint8
	DelayTimer   uint8
	SoundTimer   uint8
	Keys         [KEY_COUNT]bool
	Display      [DISPLAY_SIZE]uint8
}

// Read-only copy of the CPU registers for debug displays
type Snapshot struct {
	Program      uint16
	StackPointer uint8
	Index        uint16
	DelayTimer   uint8
	SoundTimer   uint8
	Registers    [REGISTER_LEN]uint8
	Stack        [STACK_SIZE]uint16
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

// ByteSource supplies the random bytes consumed by RND.
type ByteSource interface {
	Byte() uint8
}

type Machine struct {
	State    MachineState
	Random   ByteSource
	Debugger MachineDebugger
	Logger   *log.Logger
}
