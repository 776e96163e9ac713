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
)

// Raised by the state accessors when a value falls outside its domain
type StateFault struct {
	Field string
	Value int
}

func (err *StateFault) Error() string {
	return fmt.Sprintf("State fault: %s out of range (%#x)", err.Field, err.Value)
}

type UnknownOpcodeError struct {
	Opcode  uint16
	Program uint16
}

func (err *UnknownOpcodeError) Error() string {
	return fmt.Sprintf(
		"[%#04x] Unknown opcode %#04x", err.Program, err.Opcode,
	)
}

type StackOverflowError struct {
	Program uint16
}

func (err *StackOverflowError) Error() string {
	return fmt.Sprintf(
		"[%#04x] Stack overflow\n\twant:<%d\n\thave:%d",
		err.Program,
		STACK_SIZE,
		STACK_SIZE,
	)
}

type StackUnderflowError struct {
	Program uint16
}

func (err *StackUnderflowError) Error() string {
	return fmt.Sprintf("[%#04x] Stack underflow", err.Program)
}

type AddressOutOfRangeError struct {
	Addr    uint32
	Program uint16
}

func (err *AddressOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"[%#04x] Address out of range\n\twant:<=%#04x\n\thave:%#04x",
		err.Program,
		MEMORY_LAST,
		err.Addr,
	)
}

type ROMTooLargeError struct {
	Size int
}

func (err *ROMTooLargeError) Error() string {
	return fmt.Sprintf(
		"ROM exceeds program space\n\twant:<=%d\n\thave:%d",
		PROGRAM_MAX_SIZE,
		err.Size,
	)
}
