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


package assembler_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
)

type testCase struct {
	Name   string
	Input  string
	Output []byte
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	result, errs := assembler.AssembleChip8Source(
		strings.NewReader(test.Input), nil,
	)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if len(result) != len(test.Output) {
		t.Fatalf(
			"Invalid image length\n"+
				"want:%d\n"+
				"have:%d",
			len(test.Output),
			len(result),
		)
	}

	for i := range result {
		if have, want := result[i], test.Output[i]; have != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#02x (test.Output[%#04x])\n"+
					"have:%#02x",
				want,
				i+int(machine.MEMSPACE_PROGRAM),
				have,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	_, errs := assembler.AssembleChip8Source(strings.NewReader(test.Input), nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

// CLS  00E0 | Clear display
// RET  00EE | Return from subroutine
// JP   1nnn | Jump
// JP   Bnnn | Jump to nnn + V0
// CALL 2nnn | Call subroutine
func TestFlow(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "CLS", Input: `CLS`, Output: []byte{0x00, 0xE0}},
		{Name: "RET", Input: `RET`, Output: []byte{0x00, 0xEE}},
		{Name: "JP", Input: `JP 0x300`, Output: []byte{0x13, 0x00}},
		{Name: "JP V0", Input: `JP V0, 0x300`, Output: []byte{0xB3, 0x00}},
		{Name: "CALL", Input: `CALL $2A0`, Output: []byte{0x22, 0xA0}},
		{Name: "Lowercase", Input: `call x2a0`, Output: []byte{0x22, 0xA0}},
	})

	testFail(t, []failCase{
		{
			Name:  "CLS Operand",
			Input: `CLS V1`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "JP Oversized",
			Input: `JP 0x1000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "JP Wrong Base Register",
			Input: `JP V1, 0x300`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "CALL Register",
			Input: `CALL V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "CALL String",
			Input: `CALL "foo"`,
			Error: &assembler.InvalidOperandError{},
		},
	})
}

// SE   3xkk | Skip if Vx == kk
// SE   5xy0 | Skip if Vx == Vy
// SNE  4xkk | Skip if Vx != kk
// SNE  9xy0 | Skip if Vx != Vy
// SKP  Ex9E | Skip if key Vx is down
// SKNP ExA1 | Skip if key Vx is up
func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "SE Byte", Input: `SE V1, #10`, Output: []byte{0x31, 0x0A}},
		{Name: "SE Register", Input: `SE V1, V2`, Output: []byte{0x51, 0x20}},
		{Name: "SNE Byte", Input: `SNE VA, xFF`, Output: []byte{0x4A, 0xFF}},
		{Name: "SNE Register", Input: `SNE V1, V2`, Output: []byte{0x91, 0x20}},
		{Name: "SKP", Input: `SKP V4`, Output: []byte{0xE4, 0x9E}},
		{Name: "SKNP", Input: `SKNP V4`, Output: []byte{0xE4, 0xA1}},
	})

	testFail(t, []failCase{
		{
			Name:  "SE Label",
			Input: `SE V1, LABEL`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "SE Oversized",
			Input: `SE V1, 0x100`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "SKP Literal",
			Input: `SKP 4`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "SKNP Missing Operand",
			Input: `SKNP`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
	})
}

// LD   6xkk, 8xy0, Annn, Fx07, Fx0A, Fx15, Fx18, Fx29, Fx33, Fx55, Fx65
func TestLoad(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "LD Byte", Input: `LD V1, 5`, Output: []byte{0x61, 0x05}},
		{Name: "LD Register", Input: `LD V1, V2`, Output: []byte{0x81, 0x20}},
		{Name: "LD I", Input: `LD I, 0x123`, Output: []byte{0xA1, 0x23}},
		{Name: "LD Vx DT", Input: `LD V3, DT`, Output: []byte{0xF3, 0x07}},
		{Name: "LD Vx K", Input: `LD V3, K`, Output: []byte{0xF3, 0x0A}},
		{Name: "LD DT Vx", Input: `LD DT, V3`, Output: []byte{0xF3, 0x15}},
		{Name: "LD ST Vx", Input: `LD ST, V3`, Output: []byte{0xF3, 0x18}},
		{Name: "LD F Vx", Input: `LD F, V3`, Output: []byte{0xF3, 0x29}},
		{Name: "LD B Vx", Input: `LD B, V3`, Output: []byte{0xF3, 0x33}},
		{Name: "LD [I] Vx", Input: `LD [I], V3`, Output: []byte{0xF3, 0x55}},
		{Name: "LD Vx [I]", Input: `LD V3, [I]`, Output: []byte{0xF3, 0x65}},
		{Name: "Lowercase", Input: `ld v1, v2`, Output: []byte{0x81, 0x20}},
		{Name: "Comment", Input: `LD V1, 5 ; five`, Output: []byte{0x61, 0x05}},
	})

	testFail(t, []failCase{
		{
			Name:  "LD Oversized Byte",
			Input: `LD V1, 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "LD Index Into Register",
			Input: `LD V1, I`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD Bad Register",
			Input: `LD VG, 1`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "LD Bad Hex",
			Input: `LD V1, 0x`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "LD Unexpected Character",
			Input: `LD V1, @`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "LD Non ASCII",
			Input: `LD V1, é`,
			Error: &assembler.OversizedCharacterError{},
		},
	})
}

// ADD  7xkk, 8xy4, Fx1E
// ALU  8xy1, 8xy2, 8xy3, 8xy5, 8xy6, 8xy7, 8xyE
// RND  Cxkk
// DRW  Dxyn
func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "ADD Byte", Input: `ADD V1, 1`, Output: []byte{0x71, 0x01}},
		{Name: "ADD Negative", Input: `ADD V1, -1`, Output: []byte{0x71, 0xFF}},
		{Name: "ADD Negative Hash", Input: `ADD V1, #-2`, Output: []byte{0x71, 0xFE}},
		{Name: "ADD Register", Input: `ADD V1, V2`, Output: []byte{0x81, 0x24}},
		{Name: "ADD I", Input: `ADD I, V2`, Output: []byte{0xF2, 0x1E}},
		{Name: "OR", Input: `OR V1, V2`, Output: []byte{0x81, 0x21}},
		{Name: "AND", Input: `AND V1, V2`, Output: []byte{0x81, 0x22}},
		{Name: "XOR", Input: `XOR V1, V2`, Output: []byte{0x81, 0x23}},
		{Name: "SUB", Input: `SUB V1, V2`, Output: []byte{0x81, 0x25}},
		{Name: "SHR", Input: `SHR V1`, Output: []byte{0x81, 0x06}},
		{Name: "SHR Vy", Input: `SHR V1, V2`, Output: []byte{0x81, 0x26}},
		{Name: "SUBN", Input: `SUBN V1, V2`, Output: []byte{0x81, 0x27}},
		{Name: "SHL", Input: `SHL V1`, Output: []byte{0x81, 0x0E}},
		{Name: "RND", Input: `RND V1, 0x0F`, Output: []byte{0xC1, 0x0F}},
		{Name: "DRW", Input: `DRW V1, V2, 5`, Output: []byte{0xD1, 0x25}},
	})

	testFail(t, []failCase{
		{
			Name:  "ADD String",
			Input: `ADD V1, "foo"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "ADD Negative Oversized",
			Input: `ADD V1, -129`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "DRW Oversized Nibble",
			Input: `DRW V1, V2, 16`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "DRW Missing Height",
			Input: `DRW V1, V2`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "SHL Too Many",
			Input: `SHL V1, V2, V3`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Unknown Mnemonic",
			Input: `FOO V1`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Label References",
			Input: strings.Join([]string{
				"start:",
				"    LD V0, 1",
				"loop: ADD V0, 1",
				"    JP loop",
				"    CALL sub",
				"sub: RET",
				"    LD I, start",
			}, "\n"),
			Output: []byte{
				0x60, 0x01,
				0x70, 0x01,
				0x12, 0x02,
				0x22, 0x08,
				0x00, 0xEE,
				0xA2, 0x00,
			},
		},
		{
			Name:   "Mnemonic Label",
			Input:  "CALL sub\nsub: RET",
			Output: []byte{0x22, 0x02, 0x00, 0xEE},
		},
		{
			Name:   "Mnemonic Label Reference",
			Input:  "ld: LD V0, 1\nJP ld",
			Output: []byte{0x60, 0x01, 0x12, 0x00},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unknown Label",
			Input: `JP nowhere`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name:  "Redeclared Label",
			Input: "a: CLS\na: CLS",
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Reserved Label",
			Input: `V1 CLS`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Reserved Label With Colon",
			Input: `DT: CLS`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Label After Keyword",
			Input: `CLS end:`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Label Past Memory",
			Input: "JP end\n.ORG 0xFFE\nCLS\nend:",
			Error: &assembler.OversizedLabelError{},
		},
	})
}

func TestDirectives(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   ".BYTE",
			Input:  `.BYTE 1, 0x2, $FF, -1`,
			Output: []byte{0x01, 0x02, 0xFF, 0xFF},
		},
		{
			Name:   ".BYTE String",
			Input:  `.byte "AB", 0`,
			Output: []byte{0x41, 0x42, 0x00},
		},
		{
			Name:   ".WORD",
			Input:  `.WORD 0x1234`,
			Output: []byte{0x12, 0x34},
		},
		{
			Name:   ".WORD Label",
			Input:  ".WORD data\ndata: .BYTE 7",
			Output: []byte{0x02, 0x02, 0x07},
		},
		{
			Name:   ".ORG",
			Input:  ".ORG 0x204\nCLS",
			Output: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0xE0},
		},
		{
			Name:   ".END",
			Input:  "CLS\n.END\nRET",
			Output: []byte{0x00, 0xE0},
		},
		{
			Name:   "Empty",
			Input:  "; nothing here\n\n",
			Output: []byte{},
		},
	})

	testFail(t, []failCase{
		{
			Name:  ".ORG Below Program Space",
			Input: `.ORG 0x100`,
			Error: &assembler.InvalidOriginError{},
		},
		{
			Name:  ".ORG Label",
			Input: `.ORG start`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  ".END Operand",
			Input: `.END 1`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Unknown Directive",
			Input: `.FOO`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  ".BYTE Register",
			Input: `.BYTE V1`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  ".BYTE Empty",
			Input: `.BYTE`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  ".BYTE Oversized",
			Input: `.BYTE 300`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  ".BYTE Unterminated String",
			Input: `.BYTE "abc`,
			Error: &assembler.InvalidStringError{},
		},
		{
			Name:  ".WORD String",
			Input: `.WORD "ab"`,
			Error: &assembler.InvalidOperandError{},
		},
	})
}

func TestProgramSize(t *testing.T) {
	testFail(t, []failCase{
		{
			Name:  "Instruction Past Memory",
			Input: ".ORG 0xFFF\nCLS",
			Error: &assembler.OversizedBinaryError{},
		},
	})

	result, errs := assembler.AssembleChip8Source(
		strings.NewReader(".ORG 0xFFE\nCLS"), nil,
	)

	assert.Empty(t, errs)
	assert.Len(t, result, machine.PROGRAM_MAX_SIZE)
}

func TestSymtable(t *testing.T) {
	symtable := assembler.SymTable{
		Symbols: make(map[uint16]int64),
		Labels:  make(map[uint16]string),
	}

	_, errs := assembler.AssembleChip8Source(
		strings.NewReader("start: CLS\n  RET ; done\n.BYTE 1\nend:\n"),
		&symtable,
	)

	assert.Empty(t, errs)
	assert.Equal(t, map[uint16]int64{0x200: 0, 0x202: 11, 0x204: 24}, symtable.Symbols)
	assert.Equal(t, map[uint16]string{0x200: "start", 0x205: "end"}, symtable.Labels)

	var buffer bytes.Buffer
	assert.NoError(t, symtable.Save(&buffer))

	loaded, err := assembler.LoadSymTable(&buffer)
	assert.NoError(t, err)
	assert.Equal(t, symtable.Symbols, loaded.Symbols)
	assert.Equal(t, symtable.Labels, loaded.Labels)
}

func TestAssembledProgramRuns(t *testing.T) {
	source := strings.Join([]string{
		"    LD V0, 0",
		"    LD V1, 3",
		"loop:",
		"    ADD V0, 2",
		"    ADD V1, -1",
		"    SE V1, 0",
		"    JP loop",
		"    LD I, result",
		"    LD [I], V0",
		"done: JP done",
		"result: .BYTE 0",
	}, "\n")

	rom, errs := assembler.AssembleChip8Source(strings.NewReader(source), nil)
	assert.Empty(t, errs)

	mc := machine.NewMachine()
	assert.NoError(t, mc.LoadROM(bytes.NewReader(rom)))

	for i := 0; i < 64; i++ {
		_, err := mc.Step()
		assert.NoError(t, err)
	}

	assert.Equal(t, uint8(6), mc.State.Registers[0])
	assert.Equal(t, uint8(0), mc.State.Registers[1])
	assert.Equal(t, uint8(6), mc.State.Memory[0x212])
}
