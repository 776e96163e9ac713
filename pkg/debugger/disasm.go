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
	"fmt"
	"strings"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

type Line struct {
	Addr   uint16
	Opcode uint16
	Text   string
}

// Reference finds the opcode in the CHIP-8 instruction table, returning nil
// when no entry matches
func Reference(opcode uint16) *chip8.Instruction {
	for _, op := range chip8.Opcodes[int(encoding.Nibble(opcode, 0))] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}

	return nil
}

func IsCall(opcode uint16) bool {
	return Reference(opcode) == chip8.CallInst
}

func IsReturn(opcode uint16) bool {
	return Reference(opcode) == chip8.RetInst
}

func IsSkip(opcode uint16) bool {
	ins := Reference(opcode)
	return ins != nil && chip8.SkipInstructions.Contains(ins.Name)
}

// Disassemble renders an instruction word in assembler syntax. Words the
// machine cannot execute come out as .WORD data, annotated with the
// reference mnemonic when there is one.
func Disassemble(opcode uint16) string {
	if inst, err := machine.Decode(opcode); err == nil {
		return inst.String()
	}

	if ins := Reference(opcode); ins != nil {
		return fmt.Sprintf(".WORD $%04X ; %s", opcode, strings.ToUpper(ins.Name))
	}

	return fmt.Sprintf(".WORD $%04X", opcode)
}

// DisassembleRange decodes count instructions starting at addr, stopping
// at the end of memory
func DisassembleRange(memory []uint8, addr, count uint16) []Line {
	lines := make([]Line, 0, count)

	for i := uint16(0); i < count; i++ {
		if int(addr)+1 >= len(memory) {
			break
		}

		opcode := encoding.JoinOpcode(memory[addr], memory[addr+1])
		lines = append(lines, Line{addr, opcode, Disassemble(opcode)})
		addr += 2
	}

	return lines
}
