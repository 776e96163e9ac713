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
	"fmt"

	"github.com/lassandro/gochip8/pkg/encoding"
)

var operationNames = map[Operation]string{
	OP_INVALID:     "INVALID",
	OP_CLS:         "CLS",
	OP_RET:         "RET",
	OP_JP:          "JP",
	OP_CALL:        "CALL",
	OP_SE_BYTE:     "SE",
	OP_SNE_BYTE:    "SNE",
	OP_SE_REG:      "SE",
	OP_LD_BYTE:     "LD",
	OP_ADD_BYTE:    "ADD",
	OP_LD_REG:      "LD",
	OP_OR:          "OR",
	OP_AND:         "AND",
	OP_XOR:         "XOR",
	OP_ADD_REG:     "ADD",
	OP_SUB:         "SUB",
	OP_SHR:         "SHR",
	OP_SUBN:        "SUBN",
	OP_SHL:         "SHL",
	OP_SNE_REG:     "SNE",
	OP_LD_I:        "LD",
	OP_JP_V0:       "JP",
	OP_RND:         "RND",
	OP_DRW:         "DRW",
	OP_SKP:         "SKP",
	OP_SKNP:        "SKNP",
	OP_LD_VX_DT:    "LD",
	OP_LD_VX_K:     "LD",
	OP_LD_DT_VX:    "LD",
	OP_LD_ST_VX:    "LD",
	OP_ADD_I:       "ADD",
	OP_LD_F:        "LD",
	OP_LD_B:        "LD",
	OP_LD_MEM_REGS: "LD",
	OP_LD_REGS_MEM: "LD",
}

// Mnemonic of the operation
func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}

	return "INVALID"
}

// Operand text in the conventional assembler syntax, e.g. "V1, $0A"
func (inst Instruction) Operands() string {
	switch inst.Op {
	case OP_JP, OP_CALL:
		return fmt.Sprintf("$%03X", inst.NNN)
	case OP_SE_BYTE, OP_SNE_BYTE, OP_LD_BYTE, OP_ADD_BYTE, OP_RND:
		return fmt.Sprintf("V%X, $%02X", inst.X, inst.KK)
	case OP_SE_REG, OP_SNE_REG, OP_LD_REG, OP_OR, OP_AND, OP_XOR,
		OP_ADD_REG, OP_SUB, OP_SUBN:
		return fmt.Sprintf("V%X, V%X", inst.X, inst.Y)
	case OP_SHR, OP_SHL, OP_SKP, OP_SKNP:
		return fmt.Sprintf("V%X", inst.X)
	case OP_LD_I:
		return fmt.Sprintf("I, $%03X", inst.NNN)
	case OP_JP_V0:
		return fmt.Sprintf("V0, $%03X", inst.NNN)
	case OP_DRW:
		return fmt.Sprintf("V%X, V%X, $%X", inst.X, inst.Y, inst.N)
	case OP_LD_VX_DT:
		return fmt.Sprintf("V%X, DT", inst.X)
	case OP_LD_VX_K:
		return fmt.Sprintf("V%X, K", inst.X)
	case OP_LD_DT_VX:
		return fmt.Sprintf("DT, V%X", inst.X)
	case OP_LD_ST_VX:
		return fmt.Sprintf("ST, V%X", inst.X)
	case OP_ADD_I:
		return fmt.Sprintf("I, V%X", inst.X)
	case OP_LD_F:
		return fmt.Sprintf("F, V%X", inst.X)
	case OP_LD_B:
		return fmt.Sprintf("B, V%X", inst.X)
	case OP_LD_MEM_REGS:
		return fmt.Sprintf("[I], V%X", inst.X)
	case OP_LD_REGS_MEM:
		return fmt.Sprintf("V%X, [I]", inst.X)
	}

	return ""
}

func (inst Instruction) String() string {
	if operands := inst.Operands(); operands != "" {
		return inst.Op.String() + " " + operands
	}

	return inst.Op.String()
}

// Decode classifies an instruction word. It never touches machine state, so
// a decode failure leaves registers and memory as they were.
func Decode(opcode uint16) (Instruction, error) {
	inst := Instruction{
		Raw: opcode,
		X:   encoding.Nibble(opcode, 1),
		Y:   encoding.Nibble(opcode, 2),
		N:   encoding.Nibble(opcode, 3),
		KK:  encoding.LowByte(opcode),
		NNN: encoding.Address(opcode),
	}

	switch encoding.Nibble(opcode, 0) {
	// CLS  |0000|0000|1110|0000| Clear display
	// RET  |0000|0000|1110|1110| Return from subroutine
	case FAMILY_SYS:
		switch opcode {
		case 0x00E0:
			inst.Op = OP_CLS
		case 0x00EE:
			inst.Op = OP_RET
		}

	// JP   |0001|nnn           | Jump
	case FAMILY_JP:
		inst.Op = OP_JP

	// CALL |0010|nnn           | Call subroutine
	case FAMILY_CALL:
		inst.Op = OP_CALL

	// SE   |0011|x   |kk       | Skip if Vx == kk
	case FAMILY_SE:
		inst.Op = OP_SE_BYTE

	// SNE  |0100|x   |kk       | Skip if Vx != kk
	case FAMILY_SNE:
		inst.Op = OP_SNE_BYTE

	// SE   |0101|x   |y   |0000| Skip if Vx == Vy
	case FAMILY_SER:
		if inst.N == 0x0 {
			inst.Op = OP_SE_REG
		}

	// LD   |0110|x   |kk       | Vx = kk
	case FAMILY_LD:
		inst.Op = OP_LD_BYTE

	// ADD  |0111|x   |kk       | Vx += kk
	case FAMILY_ADD:
		inst.Op = OP_ADD_BYTE

	// ALU  |1000|x   |y   |op  | Register arithmetic
	case FAMILY_ALU:
		switch inst.N {
		case 0x0:
			inst.Op = OP_LD_REG
		case 0x1:
			inst.Op = OP_OR
		case 0x2:
			inst.Op = OP_AND
		case 0x3:
			inst.Op = OP_XOR
		case 0x4:
			inst.Op = OP_ADD_REG
		case 0x5:
			inst.Op = OP_SUB
		case 0x6:
			inst.Op = OP_SHR
		case 0x7:
			inst.Op = OP_SUBN
		case 0xE:
			inst.Op = OP_SHL
		}

	// SNE  |1001|x   |y   |0000| Skip if Vx != Vy
	case FAMILY_SNER:
		if inst.N == 0x0 {
			inst.Op = OP_SNE_REG
		}

	// LD   |1010|nnn           | I = nnn
	case FAMILY_LDI:
		inst.Op = OP_LD_I

	// JP   |1011|nnn           | Jump to nnn + V0
	case FAMILY_JPV0:
		inst.Op = OP_JP_V0

	// RND  |1100|x   |kk       | Vx = random & kk
	case FAMILY_RND:
		inst.Op = OP_RND

	// DRW  |1101|x   |y   |n   | Draw n-byte sprite
	case FAMILY_DRW:
		inst.Op = OP_DRW

	// SKP  |1110|x   |1001|1110| Skip if key Vx down
	// SKNP |1110|x   |1010|0001| Skip if key Vx up
	case FAMILY_KEY:
		switch inst.KK {
		case 0x9E:
			inst.Op = OP_SKP
		case 0xA1:
			inst.Op = OP_SKNP
		}

	// LD/ADD |1111|x   |op       | Timers, keys, index and block transfer
	case FAMILY_MISC:
		switch inst.KK {
		case 0x07:
			inst.Op = OP_LD_VX_DT
		case 0x0A:
			inst.Op = OP_LD_VX_K
		case 0x15:
			inst.Op = OP_LD_DT_VX
		case 0x18:
			inst.Op = OP_LD_ST_VX
		case 0x1E:
			inst.Op = OP_ADD_I
		case 0x29:
			inst.Op = OP_LD_F
		case 0x33:
			inst.Op = OP_LD_B
		case 0x55:
			inst.Op = OP_LD_MEM_REGS
		case 0x65:
			inst.Op = OP_LD_REGS_MEM
		}
	}

	if inst.Op == OP_INVALID {
		return inst, &UnknownOpcodeError{Opcode: opcode}
	}

	return inst, nil
}
