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
	"encoding/gob"
	"io"
)

func NewSymTable(source string) *SymTable {
	return &SymTable{
		Source:  source,
		Symbols: make(map[uint16]int64),
		Labels:  make(map[uint16]string),
	}
}

// Save writes the table in the gob format read by LoadSymTable
func (symtable *SymTable) Save(writer io.Writer) error {
	return gob.NewEncoder(writer).Encode(symtable)
}

func LoadSymTable(reader io.Reader) (*SymTable, error) {
	symtable := NewSymTable("")

	if err := gob.NewDecoder(reader).Decode(symtable); err != nil {
		return nil, err
	}

	return symtable, nil
}

// Label declared at addr, if any
func (symtable *SymTable) Label(addr uint16) (string, bool) {
	label, ok := symtable.Labels[addr]
	return label, ok
}

// Address of the named label, if declared
func (symtable *SymTable) Lookup(label string) (uint16, bool) {
	for addr, name := range symtable.Labels {
		if name == label {
			return addr, true
		}
	}

	return 0, false
}
