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


package machine_test

import (
	"bytes"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type recordingDebugger struct {
	Steps  int
	Reads  []uint16
	Writes []uint16
}

func (dbg *recordingDebugger) Step(mc *machine.Machine) {
	dbg.Steps++
}

func (dbg *recordingDebugger) Read(addr uint16, mc *machine.Machine) {
	dbg.Reads = append(dbg.Reads, addr)
}

func (dbg *recordingDebugger) Write(addr uint16, mc *machine.Machine) {
	dbg.Writes = append(dbg.Writes, addr)
}

func TestLoadROM(t *testing.T) {
	mc := machine.NewMachine()
	mc.Logger = log.NewTestLogger(t)
	mc.State.Registers[4] = 0x44

	rom := []byte{0x60, 0x05, 0x12, 0x00}
	assert.NoError(t, mc.LoadROM(bytes.NewReader(rom)))

	assert.Equal(t, uint16(0x200), mc.State.Program)
	assert.Equal(t, uint8(0), mc.State.Registers[4])
	assert.Equal(t, rom, mc.State.Memory[0x200:0x204])
	assert.Equal(t, machine.Font[:], mc.State.Memory[:len(machine.Font)])
	assert.Equal(t, uint8(0), mc.State.Memory[0x204])
}

func TestLoadROMFull(t *testing.T) {
	mc := machine.NewMachine()
	rom := bytes.Repeat([]byte{0xAB}, machine.PROGRAM_MAX_SIZE)

	assert.NoError(t, mc.LoadROM(bytes.NewReader(rom)))
	assert.Equal(t, uint8(0xAB), mc.State.Memory[0xFFF])
}

func TestLoadROMTooLarge(t *testing.T) {
	mc := machine.NewMachine()
	mc.State.Registers[1] = 0x11
	rom := make([]byte, machine.PROGRAM_MAX_SIZE+1)

	err := mc.LoadROM(bytes.NewReader(rom))
	assert.Error(t, err)

	_, ok := err.(*machine.ROMTooLargeError)
	assert.True(t, ok)

	// A rejected image leaves the machine as it was
	assert.Equal(t, uint8(0x11), mc.State.Registers[1])
}

func TestSnapshot(t *testing.T) {
	mc := machine.NewMachine()
	mc.State.Program = 0x2A0
	mc.State.Index = 0x123
	mc.State.StackPointer = 2
	mc.State.Stack[1] = 0x246
	mc.State.DelayTimer = 9
	mc.State.SoundTimer = 3
	mc.State.Registers[0xE] = 0xEE

	snap := mc.Snapshot()
	assert.Equal(t, uint16(0x2A0), snap.Program)
	assert.Equal(t, uint16(0x123), snap.Index)
	assert.Equal(t, uint8(2), snap.StackPointer)
	assert.Equal(t, uint16(0x246), snap.Stack[1])
	assert.Equal(t, uint8(9), snap.DelayTimer)
	assert.Equal(t, uint8(3), snap.SoundTimer)
	assert.Equal(t, uint8(0xEE), snap.Registers[0xE])

	// The snapshot is a copy
	snap.Registers[0xE] = 0
	assert.Equal(t, uint8(0xEE), mc.State.Registers[0xE])
}

func TestBeeping(t *testing.T) {
	mc := machine.NewMachine()
	assert.False(t, mc.Beeping())

	mc.State.SoundTimer = 2
	mc.State.Memory[0x200] = 0x12
	mc.State.Memory[0x201] = 0x00
	assert.True(t, mc.Beeping())

	_, err := mc.Step()
	assert.NoError(t, err)
	assert.True(t, mc.Beeping())

	_, err = mc.Step()
	assert.NoError(t, err)
	assert.False(t, mc.Beeping())
}

func TestDebuggerHooks(t *testing.T) {
	mc := machine.NewMachine()
	dbg := &recordingDebugger{}
	mc.Debugger = dbg
	mc.Logger = log.NewTestLogger(t)

	mc.State.Index = 0x300
	mc.State.Registers[0] = 0x01
	mc.State.Registers[1] = 0x02

	// LD [I], V1 followed by LD V0, [I]
	copy(mc.State.Memory[0x200:], []byte{0xF1, 0x55, 0xF0, 0x65})

	_, err := mc.Step()
	assert.NoError(t, err)
	_, err = mc.Step()
	assert.NoError(t, err)

	assert.Equal(t, 2, dbg.Steps)
	assert.Equal(t, []uint16{0x300, 0x301}, dbg.Writes)
	assert.Equal(t, []uint16{0x200, 0x201, 0x202, 0x203, 0x300}, dbg.Reads)
}

func TestFaultSkipsDebuggerStep(t *testing.T) {
	mc := machine.NewMachine()
	dbg := &recordingDebugger{}
	mc.Debugger = dbg

	copy(mc.State.Memory[0x200:], []byte{0x50, 0x01})

	_, err := mc.Step()
	assert.Error(t, err)
	assert.Equal(t, 0, dbg.Steps)
	assert.Equal(t, uint16(0x200), mc.State.Program)
}

func TestRandomSource(t *testing.T) {
	first := machine.NewRandomSource(1234)
	second := machine.NewRandomSource(1234)

	for i := 0; i < 32; i++ {
		assert.Equal(t, first.Byte(), second.Byte())
	}
}

func TestSeededRND(t *testing.T) {
	run := func() uint8 {
		mc := machine.NewMachine()
		mc.Random = machine.NewRandomSource(99)
		copy(mc.State.Memory[0x200:], []byte{0xC3, 0xFF})

		_, err := mc.Step()
		assert.NoError(t, err)
		return mc.State.Registers[3]
	}

	assert.Equal(t, run(), run())
}
