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

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

type labelRef struct {
	Label    string
	Addr     uint16
	Field    FieldType
	Position Cursor
}

func (cursor *Cursor) nextLine(line string) {
	cursor.Line++
	cursor.Byte += int64(len(line) + 1)
	cursor.LineByte += int64(len(line) + 1)
}

func parseDirective(ident string) DirectiveType {
	return directives[strings.ToUpper(ident)]
}

func parseInstruction(ident string) []instructionForm {
	return instructions[strings.ToUpper(ident)]
}

// Words such as x2A are hex literals even though they start with a letter
func isHexWord(s string) bool {
	if len(s) < 2 || (s[0] != 'x' && s[0] != 'X') {
		return false
	}

	for _, char := range s[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, char) {
			return false
		}
	}

	return true
}

func fieldLimit(field FieldType) int {
	switch field {
	case FIELD_NIBBLE:
		return 0xF
	case FIELD_BYTE:
		return 0xFF
	case FIELD_ADDR:
		return machine.MEMORY_LAST
	}

	return 0xFFFF
}

func parseLiteral(token *Token, field FieldType) (uint16, error) {
	limit := fieldLimit(field)

	if strings.ContainsAny(token.Value, "xX$") {
		result, err := encoding.DecodeHex(token.Value)

		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		if int(result) > limit {
			return 0, &OversizedLiteralError{token.Position, limit, int(result)}
		}

		return result, nil
	}

	result, err := encoding.DecodeInt(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	// Bytes and words also take negative values in two's complement
	floor := 0
	if field == FIELD_BYTE || field == FIELD_WORD {
		floor = -(limit + 1) / 2
	}

	if result < floor || result > limit {
		return 0, &OversizedLiteralError{token.Position, limit, result}
	}

	return uint16(result) & uint16(limit), nil
}

func parseRegister(token *Token) (uint16, bool) {
	ident := token.Value

	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false
	}

	reg, err := strconv.ParseUint(ident[1:], 16, 8)

	if err != nil {
		return 0, false
	}

	return uint16(reg), true
}

func parseOperand(token *Token) OperandType {
	switch token.Type {
	case TOKEN_LITERAL:
		return OPERAND_LITERAL
	case TOKEN_STRING:
		return OPERAND_STRING
	case TOKEN_IDENT:
		if _, ok := parseRegister(token); ok {
			return OPERAND_REGISTER
		}

		if operand, ok := reservedOperands[strings.ToUpper(token.Value)]; ok {
			return operand
		}

		return OPERAND_LABEL
	}

	return OPERAND_NONE
}

// Registers and reserved operands cannot name a label. Mnemonics can, as
// long as the declaration carries its colon.
func isLabelName(token *Token) bool {
	if _, ok := parseRegister(token); ok {
		return false
	}

	_, reserved := reservedOperands[strings.ToUpper(token.Value)]
	return !reserved
}

func slotAccepts(slot operandSlot, operand OperandType) bool {
	if slot.Type == operand {
		return true
	}

	// Addresses may be given as labels and resolved after the last line
	return slot.Type == OPERAND_LITERAL &&
		(slot.Field == FIELD_ADDR || slot.Field == FIELD_WORD) &&
		operand == OPERAND_LABEL
}

func matchingPrefix(form instructionForm, kinds []OperandType) int {
	for i, slot := range form.Operands {
		if !slotAccepts(slot, kinds[i]) {
			return i
		}
	}

	return len(form.Operands)
}

// Reports the operand that ruled out the closest form
func mismatchError(candidates []instructionForm, operands []Token, kinds []OperandType) error {
	best := 0

	for _, form := range candidates {
		if prefix := matchingPrefix(form, kinds); prefix > best {
			best = prefix
		}
	}

	var required []OperandType
	seen := make(map[OperandType]bool)

	for _, form := range candidates {
		if matchingPrefix(form, kinds) != best {
			continue
		}

		if want := form.Operands[best].Type; !seen[want] {
			seen[want] = true
			required = append(required, want)
		}
	}

	if seen[OPERAND_REGISTER] && kinds[best] == OPERAND_LABEL {
		return &InvalidRegisterError{operands[best].Position}
	}

	return &InvalidOperandError{operands[best].Position, required, kinds[best]}
}

func encodeForm(form instructionForm, operands []Token, addr uint16) (uint16, *labelRef, error) {
	var ref *labelRef
	word := form.Base

	for i, slot := range form.Operands {
		operand := &operands[i]

		switch slot.Field {
		case FIELD_X:
			reg, _ := parseRegister(operand)
			word |= reg << 8

		case FIELD_Y:
			reg, _ := parseRegister(operand)
			word |= reg << 4

		case FIELD_V0:
			if reg, _ := parseRegister(operand); reg != 0 {
				return 0, nil, &InvalidRegisterError{operand.Position}
			}

		case FIELD_NIBBLE, FIELD_BYTE, FIELD_ADDR:
			if parseOperand(operand) == OPERAND_LABEL {
				ref = &labelRef{operand.Value, addr, slot.Field, operand.Position}
				continue
			}

			literal, err := parseLiteral(operand, slot.Field)

			if err != nil {
				return 0, nil, err
			}

			word |= literal
		}
	}

	return word, ref, nil
}

func encodeInstruction(keyword *Token, forms []instructionForm, operands []Token, addr uint16) (uint16, *labelRef, error) {
	kinds := make([]OperandType, len(operands))

	for i := range operands {
		kinds[i] = parseOperand(&operands[i])
	}

	var candidates []instructionForm

	for _, form := range forms {
		if len(form.Operands) == len(operands) {
			candidates = append(candidates, form)
		}
	}

	if len(candidates) == 0 {
		return 0, nil, &InvalidNumArgumentsError{
			keyword.Position, len(forms[0].Operands), len(operands),
		}
	}

	for _, form := range candidates {
		if matchingPrefix(form, kinds) == len(kinds) {
			return encodeForm(form, operands, addr)
		}
	}

	return 0, nil, mismatchError(candidates, operands, kinds)
}

// .ORG addr
func assembleOrigin(keyword *Token, operands []Token) (uint32, error) {
	if count := len(operands); count != 1 {
		return 0, &InvalidNumArgumentsError{keyword.Position, 1, count}
	}

	if operands[0].Type != TOKEN_LITERAL {
		return 0, &InvalidOperandError{
			operands[0].Position,
			[]OperandType{OPERAND_LITERAL},
			parseOperand(&operands[0]),
		}
	}

	origin, err := parseLiteral(&operands[0], FIELD_ADDR)

	if err != nil {
		return 0, err
	}

	if origin < machine.MEMSPACE_PROGRAM {
		return 0, &InvalidOriginError{operands[0].Position, origin}
	}

	return uint32(origin), nil
}

// .BYTE value[, value...] where each value is a literal or a string
func assembleBytes(keyword *Token, operands []Token) ([]byte, error) {
	if len(operands) == 0 {
		return nil, &InvalidNumArgumentsError{keyword.Position, 1, 0}
	}

	data := make([]byte, 0, len(operands))

	for i := range operands {
		operand := &operands[i]

		switch operand.Type {
		case TOKEN_LITERAL:
			literal, err := parseLiteral(operand, FIELD_BYTE)

			if err != nil {
				return nil, err
			}

			data = append(data, uint8(literal))

		case TOKEN_STRING:
			s, err := strconv.Unquote(operand.Value)

			if err != nil {
				return nil, &InvalidStringError{operand.Position}
			}

			for _, char := range s {
				if char > unicode.MaxASCII {
					return nil, &OversizedCharacterError{operand.Position}
				}

				data = append(data, byte(char))
			}

		default:
			return nil, &InvalidOperandError{
				operand.Position,
				[]OperandType{OPERAND_LITERAL, OPERAND_STRING},
				parseOperand(operand),
			}
		}
	}

	return data, nil
}

// .WORD value where value is a literal or a label
func assembleWord(keyword *Token, operands []Token, addr uint16) (uint16, *labelRef, error) {
	form := instructionForm{0, []operandSlot{{OPERAND_LITERAL, FIELD_WORD}}}

	if count := len(operands); count != 1 {
		return 0, nil, &InvalidNumArgumentsError{keyword.Position, 1, count}
	}

	switch kind := parseOperand(&operands[0]); kind {
	case OPERAND_LABEL:
		return 0, &labelRef{
			operands[0].Value, addr, FIELD_WORD, operands[0].Position,
		}, nil

	case OPERAND_LITERAL:
		literal, err := parseLiteral(&operands[0], FIELD_WORD)
		return literal, nil, err

	default:
		return 0, nil, mismatchError(
			[]instructionForm{form}, operands, []OperandType{kind},
		)
	}
}

func tokenizeLine(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenStart int
	var tokenType = TOKEN_NONE

	flush := func() {
		if builder.Len() > 0 {
			value := builder.String()

			if tokenType == TOKEN_IDENT && isHexWord(value) {
				tokenType = TOKEN_LITERAL
			}

			tokens = append(tokens, Token{
				Type:  tokenType,
				Value: value,
				Position: Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.Byte + int64(tokenStart-1),
					Size:     int64(builder.Len()),
					LineByte: cursor.Byte,
				},
			})

			builder.Reset()
		}

		tokenType = TOKEN_NONE
	}

	for column, char := range line {
		cursor.Column = column + 1

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column
		}

		switch {
		// String contents are taken verbatim up to the closing quote
		case tokenType == TOKEN_STRING:
			builder.WriteRune(char)

			if char == '"' {
				flush()
			}

			continue

		case unicode.IsSpace(char), char == ',':
			flush()
			continue

		// Comments
		case char == ';':
			flush()
			return

		// Label terminator (i.e. loop:), only valid on the first token
		case char == ':':
			if tokenType != TOKEN_IDENT || len(tokens) > 0 {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			} else {
				tokenType = TOKEN_LABEL
			}

			flush()
			continue

		case char == '"':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_STRING

		// Assembler Directives
		case char == '.':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_DIRECTIVE

		// Base 10 (#42) and hex ($2A) literal prefixes
		case char == '#' || char == '$':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_LITERAL

		// Numeric Sign
		case char == '-':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else if tokenType != TOKEN_LITERAL || builder.String() != "#" {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		// Indirect operand (i.e. [I])
		case char == '[':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_IDENT

		case char == ']':
			if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		case unicode.IsDigit(char):
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			}

		// Identifier
		case char == '_' || unicode.IsLetter(char):
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
				continue
			}

			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			}

		default:
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

			continue
		}

		builder.WriteRune(char)
	}

	if tokenType == TOKEN_STRING {
		errs = append(errs, &InvalidStringError{cursor})
		builder.Reset()
	}

	flush()
	return
}

// AssembleChip8Source assembles a program into a ROM image that loads at
// MEMSPACE_PROGRAM. When symtable is given it receives the source offset of
// every line that emitted bytes, along with every label.
func AssembleChip8Source(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	var labels = make(map[string]uint16)
	var labelRefs []labelRef

	var memory [machine.MEMORY_SIZE]byte
	var program = uint32(machine.MEMSPACE_PROGRAM)
	var end = program

	var scanner = bufio.NewScanner(input)
	var cursor = Cursor{Line: 1}

	errs = make([]error, 0)

	image := func() []byte {
		rom := make([]byte, end-uint32(machine.MEMSPACE_PROGRAM))
		copy(rom, memory[machine.MEMSPACE_PROGRAM:end])
		return rom
	}

	emit := func(values ...byte) bool {
		for _, value := range values {
			if program >= machine.MEMORY_SIZE {
				errs = append(errs, &OversizedBinaryError{})
				return false
			}

			memory[program] = value
			program++
		}

		if program > end {
			end = program
		}

		return true
	}

	for scanner.Scan() {
		line := scanner.Text()
		cursor.Size = int64(len(line))

		tokens, lineErrs := tokenizeLine(line, cursor)

		// Skip assembling lines the tokenizer already rejected
		if len(tokens) == 0 || len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			cursor.nextLine(line)
			continue
		}

		if first := &tokens[0]; first.Type == TOKEN_LABEL ||
			(first.Type == TOKEN_IDENT && parseInstruction(first.Value) == nil) {
			if !isLabelName(first) {
				errs = append(
					errs, &UnknownIdentifierError{first.Position, first.Value},
				)
				cursor.nextLine(line)
				continue
			}

			if _, exists := labels[first.Value]; exists {
				errs = append(
					errs, &RedeclaredLabelError{first.Position, first.Value},
				)
			} else {
				labels[first.Value] = uint16(program)
			}

			// No need to assemble label-only statements
			if tokens = tokens[1:]; len(tokens) == 0 {
				cursor.nextLine(line)
				continue
			}
		}

		keyword := &tokens[0]
		operands := tokens[1:]

		var directive DirectiveType
		var forms []instructionForm

		switch keyword.Type {
		case TOKEN_DIRECTIVE:
			directive = parseDirective(keyword.Value)
		case TOKEN_IDENT:
			forms = parseInstruction(keyword.Value)
		}

		if directive == DIRECTIVE_INVALID && forms == nil {
			errs = append(
				errs, &UnknownIdentifierError{keyword.Position, keyword.Value},
			)
			cursor.nextLine(line)
			continue
		}

		if directive == DIRECTIVE_END {
			if count := len(operands); count != 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 0, count},
				)
			}

			break
		}

		begin := program
		ok := true

		switch directive {
		case DIRECTIVE_ORG:
			if origin, err := assembleOrigin(keyword, operands); err != nil {
				errs = append(errs, err)
			} else {
				program = origin
			}

		case DIRECTIVE_BYTE:
			if data, err := assembleBytes(keyword, operands); err != nil {
				errs = append(errs, err)
			} else {
				ok = emit(data...)
			}

		case DIRECTIVE_WORD:
			word, ref, err := assembleWord(keyword, operands, uint16(program))

			if err != nil {
				errs = append(errs, err)
				break
			}

			if ref != nil {
				labelRefs = append(labelRefs, *ref)
			}

			hi, lo := encoding.SplitOpcode(word)
			ok = emit(hi, lo)

		default:
			word, ref, err := encodeInstruction(
				keyword, forms, operands, uint16(program),
			)

			if err != nil {
				errs = append(errs, err)
				break
			}

			if ref != nil {
				labelRefs = append(labelRefs, *ref)
			}

			hi, lo := encoding.SplitOpcode(word)
			ok = emit(hi, lo)
		}

		if !ok {
			return image(), errs
		}

		if symtable != nil && program > begin && directive != DIRECTIVE_ORG {
			symtable.Symbols[uint16(begin)] = cursor.LineByte
		}

		cursor.nextLine(line)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		if ref.Field == FIELD_ADDR && addr > machine.MEMORY_LAST {
			errs = append(
				errs,
				&OversizedLabelError{ref.Position, machine.MEMORY_LAST, addr},
			)
			continue
		}

		word := encoding.JoinOpcode(memory[ref.Addr], memory[ref.Addr+1])
		memory[ref.Addr], memory[ref.Addr+1] = encoding.SplitOpcode(word | addr)
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	return image(), errs
}
