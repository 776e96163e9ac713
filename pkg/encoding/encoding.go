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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

// Decodes a hexidecimal string in the formats: 0xFFF, xFFF, $FFF
func DecodeHex(s string) (uint16, error) {
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}

	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 || s[0] != '0' {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil {
		return 0, err
	}

	return int(result), nil
}

// Joins two big-endian bytes into one instruction word
func JoinOpcode(hi, lo uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

func SplitOpcode(opcode uint16) (hi, lo uint8) {
	return uint8(opcode >> 8), uint8(opcode & 0xFF)
}

// Nibble returns the 4-bit group at index i, counted from the most
// significant nibble (0) to the least significant one (3).
func Nibble(opcode uint16, i uint) uint8 {
	return uint8((opcode >> (12 - 4*(i&0x3))) & 0xF)
}

func Address(opcode uint16) uint16 {
	return opcode & 0x0FFF
}

func LowByte(opcode uint16) uint8 {
	return uint8(opcode & 0xFF)
}

// Splits a value into its hundreds, tens and ones digits
func BCD(value uint8) [3]uint8 {
	return [3]uint8{value / 100, (value / 10) % 10, value % 10}
}
