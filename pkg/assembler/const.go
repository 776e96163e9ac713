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


package assembler

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_DIRECTIVE
	TOKEN_STRING
	TOKEN_LITERAL
	TOKEN_LABEL
)

const (
	OPERAND_NONE OperandType = iota
	OPERAND_REGISTER
	OPERAND_LITERAL
	OPERAND_LABEL
	OPERAND_STRING
	OPERAND_INDEX    // I
	OPERAND_INDIRECT // [I]
	OPERAND_DELAY    // DT
	OPERAND_SOUND    // ST
	OPERAND_KEY      // K
	OPERAND_FONT     // F
	OPERAND_BCD      // B
)

// Where an operand lands inside the instruction word
const (
	FIELD_NONE FieldType = iota
	FIELD_X
	FIELD_Y
	FIELD_V0
	FIELD_NIBBLE
	FIELD_BYTE
	FIELD_ADDR
	FIELD_WORD
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_ORG
	DIRECTIVE_BYTE
	DIRECTIVE_WORD
	DIRECTIVE_END
)

var directives = map[string]DirectiveType{
	".ORG":  DIRECTIVE_ORG,
	".BYTE": DIRECTIVE_BYTE,
	".WORD": DIRECTIVE_WORD,
	".END":  DIRECTIVE_END,
}

var reservedOperands = map[string]OperandType{
	"I":   OPERAND_INDEX,
	"[I]": OPERAND_INDIRECT,
	"DT":  OPERAND_DELAY,
	"ST":  OPERAND_SOUND,
	"K":   OPERAND_KEY,
	"F":   OPERAND_FONT,
	"B":   OPERAND_BCD,
}

var (
	opVx   = operandSlot{OPERAND_REGISTER, FIELD_X}
	opVy   = operandSlot{OPERAND_REGISTER, FIELD_Y}
	opV0   = operandSlot{OPERAND_REGISTER, FIELD_V0}
	opN    = operandSlot{OPERAND_LITERAL, FIELD_NIBBLE}
	opKK   = operandSlot{OPERAND_LITERAL, FIELD_BYTE}
	opNNN  = operandSlot{OPERAND_LITERAL, FIELD_ADDR}
	opI    = operandSlot{OPERAND_INDEX, FIELD_NONE}
	opMemI = operandSlot{OPERAND_INDIRECT, FIELD_NONE}
	opDT   = operandSlot{OPERAND_DELAY, FIELD_NONE}
	opST   = operandSlot{OPERAND_SOUND, FIELD_NONE}
	opK    = operandSlot{OPERAND_KEY, FIELD_NONE}
	opF    = operandSlot{OPERAND_FONT, FIELD_NONE}
	opB    = operandSlot{OPERAND_BCD, FIELD_NONE}
)

// Accepted operand layouts per mnemonic, tried in order
var instructions = map[string][]instructionForm{
	"CLS":  {{0x00E0, nil}},
	"RET":  {{0x00EE, nil}},
	"JP":   {{0x1000, []operandSlot{opNNN}}, {0xB000, []operandSlot{opV0, opNNN}}},
	"CALL": {{0x2000, []operandSlot{opNNN}}},
	"SE":   {{0x3000, []operandSlot{opVx, opKK}}, {0x5000, []operandSlot{opVx, opVy}}},
	"SNE":  {{0x4000, []operandSlot{opVx, opKK}}, {0x9000, []operandSlot{opVx, opVy}}},
	"LD": {
		{0x6000, []operandSlot{opVx, opKK}},
		{0x8000, []operandSlot{opVx, opVy}},
		{0xA000, []operandSlot{opI, opNNN}},
		{0xF007, []operandSlot{opVx, opDT}},
		{0xF00A, []operandSlot{opVx, opK}},
		{0xF015, []operandSlot{opDT, opVx}},
		{0xF018, []operandSlot{opST, opVx}},
		{0xF029, []operandSlot{opF, opVx}},
		{0xF033, []operandSlot{opB, opVx}},
		{0xF055, []operandSlot{opMemI, opVx}},
		{0xF065, []operandSlot{opVx, opMemI}},
	},
	"ADD": {
		{0x7000, []operandSlot{opVx, opKK}},
		{0x8004, []operandSlot{opVx, opVy}},
		{0xF01E, []operandSlot{opI, opVx}},
	},
	"OR":   {{0x8001, []operandSlot{opVx, opVy}}},
	"AND":  {{0x8002, []operandSlot{opVx, opVy}}},
	"XOR":  {{0x8003, []operandSlot{opVx, opVy}}},
	"SUB":  {{0x8005, []operandSlot{opVx, opVy}}},
	"SHR":  {{0x8006, []operandSlot{opVx}}, {0x8006, []operandSlot{opVx, opVy}}},
	"SUBN": {{0x8007, []operandSlot{opVx, opVy}}},
	"SHL":  {{0x800E, []operandSlot{opVx}}, {0x800E, []operandSlot{opVx, opVy}}},
	"RND":  {{0xC000, []operandSlot{opVx, opKK}}},
	"DRW":  {{0xD000, []operandSlot{opVx, opVy, opN}}},
	"SKP":  {{0xE09E, []operandSlot{opVx}}},
	"SKNP": {{0xE0A1, []operandSlot{opVx}}},
}
