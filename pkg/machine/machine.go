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
	"io"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/retroenv/retrogolib/log"
)

type flowControl uint

const (
	flowAdvance flowControl = iota // PC += 2
	flowSkip                       // PC += 4
	flowJump                       // PC already redirected
	flowBlock                      // PC unchanged, instruction not completed
)

func NewMachine() *Machine {
	mc := &Machine{Random: NewRandomSource(0)}
	mc.State.Reset()
	return mc
}

// LoadROM resets the machine, installs the hexadecimal font and copies the
// ROM image verbatim to MEMSPACE_PROGRAM.
func (mc *Machine) LoadROM(reader io.Reader) error {
	rom, err := io.ReadAll(io.LimitReader(reader, int64(PROGRAM_MAX_SIZE)+1))

	if err != nil {
		return err
	}

	if len(rom) > PROGRAM_MAX_SIZE {
		return &ROMTooLargeError{len(rom)}
	}

	mc.State.Reset()
	copy(mc.State.Memory[MEMSPACE_FONT:], Font[:])
	copy(mc.State.Memory[MEMSPACE_PROGRAM:], rom)

	if mc.Logger != nil {
		mc.Logger.Debug("ROM loaded",
			log.Int("size", len(rom)),
			log.Hex("start", MEMSPACE_PROGRAM))
	}

	return nil
}

func (mc *Machine) Snapshot() Snapshot {
	return Snapshot{
		Program:      mc.State.Program,
		StackPointer: mc.State.StackPointer,
		Index:        mc.State.Index,
		DelayTimer:   mc.State.DelayTimer,
		SoundTimer:   mc.State.SoundTimer,
		Registers:    mc.State.Registers,
		Stack:        mc.State.Stack,
	}
}

// Beeping reports whether the sound timer is still running
func (mc *Machine) Beeping() bool {
	return mc.State.SoundTimer > 0
}

// Callers must have validated addr against MEMORY_LAST
func (mc *Machine) read(addr uint16) uint8 {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value uint8) {
	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// Returns an error unless the block [addr, addr+size) lies in memory
func (mc *Machine) checkRange(addr uint16, size int) error {
	if size > 0 && uint32(addr)+uint32(size)-1 > MEMORY_LAST {
		return &AddressOutOfRangeError{
			Addr:    uint32(addr) + uint32(size) - 1,
			Program: mc.State.Program,
		}
	}

	return nil
}

func (mc *Machine) random() uint8 {
	if mc.Random == nil {
		mc.Random = NewRandomSource(0)
	}

	return mc.Random.Byte()
}

func (mc *Machine) decayTimers() {
	if mc.State.DelayTimer > 0 {
		mc.State.DelayTimer--
	}

	if mc.State.SoundTimer > 0 {
		mc.State.SoundTimer--
	}
}

func (mc *Machine) fault(err error) error {
	if mc.Logger != nil {
		mc.Logger.Error("Machine fault",
			log.Hex("pc", mc.State.Program),
			log.Err(err))
	}

	return err
}

// Step fetches, decodes and executes one instruction, then advances the
// program counter and decays both timers. The returned flag is set when the
// framebuffer changed. A faulting step leaves the state untouched.
func (mc *Machine) Step() (bool, error) {
	pc := mc.State.Program

	if err := mc.checkRange(pc, 2); err != nil {
		return false, mc.fault(err)
	}

	opcode := encoding.JoinOpcode(mc.read(pc), mc.read(pc+1))
	inst, err := Decode(opcode)

	if err != nil {
		if unknown, ok := err.(*UnknownOpcodeError); ok {
			unknown.Program = pc
		}

		return false, mc.fault(err)
	}

	if mc.Logger != nil {
		mc.Logger.Debug("Executing instruction",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.String("op", inst.String()))
	}

	draw, flow, err := mc.execute(inst)

	if err != nil {
		return false, mc.fault(err)
	}

	switch flow {
	case flowAdvance:
		mc.State.Program += 2
	case flowSkip:
		mc.State.Program += 4
	}

	if flow != flowBlock {
		mc.decayTimers()
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return draw, nil
}

func skipIf(cond bool) flowControl {
	if cond {
		return flowSkip
	}

	return flowAdvance
}

func (mc *Machine) execute(inst Instruction) (bool, flowControl, error) {
	state := &mc.State
	v := &state.Registers

	switch inst.Op {
	case OP_CLS:
		state.ClearDisplay()
		return true, flowAdvance, nil

	case OP_RET:
		if state.StackPointer > STACK_SIZE {
			return false, flowAdvance, &StateFault{
				"StackPointer", int(state.StackPointer),
			}
		}

		if state.StackPointer == 0 {
			return false, flowAdvance, &StackUnderflowError{state.Program}
		}

		state.StackPointer--
		state.Program = state.Stack[state.StackPointer]
		return false, flowJump, nil

	case OP_JP:
		state.Program = inst.NNN
		return false, flowJump, nil

	case OP_CALL:
		if state.StackPointer > STACK_SIZE {
			return false, flowAdvance, &StateFault{
				"StackPointer", int(state.StackPointer),
			}
		}

		if state.StackPointer == STACK_SIZE {
			return false, flowAdvance, &StackOverflowError{state.Program}
		}

		// Push the return address so RET resumes after the call
		state.Stack[state.StackPointer] = state.Program + 2
		state.StackPointer++
		state.Program = inst.NNN
		return false, flowJump, nil

	case OP_SE_BYTE:
		return false, skipIf(v[inst.X] == inst.KK), nil

	case OP_SNE_BYTE:
		return false, skipIf(v[inst.X] != inst.KK), nil

	case OP_SE_REG:
		return false, skipIf(v[inst.X] == v[inst.Y]), nil

	case OP_SNE_REG:
		return false, skipIf(v[inst.X] != v[inst.Y]), nil

	case OP_LD_BYTE:
		v[inst.X] = inst.KK

	case OP_ADD_BYTE:
		v[inst.X] += inst.KK

	case OP_LD_REG:
		v[inst.X] = v[inst.Y]

	case OP_OR:
		v[inst.X] |= v[inst.Y]

	case OP_AND:
		v[inst.X] &= v[inst.Y]

	case OP_XOR:
		v[inst.X] ^= v[inst.Y]

	// VF is written before Vx, so a result targeting VF replaces the flag
	case OP_ADD_REG:
		sum := uint16(v[inst.X]) + uint16(v[inst.Y])
		v[REGISTER_FLAG] = boolToFlag(sum > 0xFF)
		v[inst.X] = uint8(sum)

	case OP_SUB:
		vx, vy := v[inst.X], v[inst.Y]
		v[REGISTER_FLAG] = boolToFlag(vx > vy)
		v[inst.X] = vx - vy

	case OP_SHR:
		vx := v[inst.X]
		v[REGISTER_FLAG] = vx & 0x1
		v[inst.X] = vx >> 1

	case OP_SUBN:
		vx, vy := v[inst.X], v[inst.Y]
		v[REGISTER_FLAG] = boolToFlag(vy > vx)
		v[inst.X] = vy - vx

	case OP_SHL:
		vx := v[inst.X]
		v[REGISTER_FLAG] = vx >> 7
		v[inst.X] = vx << 1

	case OP_LD_I:
		state.Index = inst.NNN

	case OP_JP_V0:
		target := uint32(inst.NNN) + uint32(v[0])

		if target > MEMORY_LAST {
			return false, flowAdvance, &AddressOutOfRangeError{
				target, state.Program,
			}
		}

		state.Program = uint16(target)
		return false, flowJump, nil

	case OP_RND:
		v[inst.X] = mc.random() & inst.KK

	case OP_DRW:
		if err := mc.checkRange(state.Index, int(inst.N)); err != nil {
			return false, flowAdvance, err
		}

		mc.drawSprite(v[inst.X], v[inst.Y], state.Index, inst.N)
		return true, flowAdvance, nil

	case OP_SKP, OP_SKNP:
		pressed, err := state.Key(v[inst.X])

		if err != nil {
			return false, flowAdvance, err
		}

		if inst.Op == OP_SKP {
			return false, skipIf(pressed), nil
		}

		return false, skipIf(!pressed), nil

	case OP_LD_VX_DT:
		v[inst.X] = state.DelayTimer

	case OP_LD_VX_K:
		key, pressed := state.PressedKey()

		if !pressed {
			return false, flowBlock, nil
		}

		v[inst.X] = key

	case OP_LD_DT_VX:
		state.DelayTimer = v[inst.X]

	case OP_LD_ST_VX:
		state.SoundTimer = v[inst.X]

	case OP_ADD_I:
		sum := uint32(state.Index) + uint32(v[inst.X])
		v[REGISTER_FLAG] = boolToFlag(sum > MEMORY_LAST)
		state.Index = uint16(sum % MEMORY_SIZE)

	case OP_LD_F:
		state.Index = MEMSPACE_FONT + uint16(v[inst.X])*FONT_HEIGHT

	case OP_LD_B:
		if err := mc.checkRange(state.Index, 3); err != nil {
			return false, flowAdvance, err
		}

		for i, digit := range encoding.BCD(v[inst.X]) {
			mc.write(state.Index+uint16(i), digit)
		}

	case OP_LD_MEM_REGS:
		if err := mc.checkRange(state.Index, int(inst.X)+1); err != nil {
			return false, flowAdvance, err
		}

		for i := uint16(0); i <= uint16(inst.X); i++ {
			mc.write(state.Index+i, v[i])
		}

	case OP_LD_REGS_MEM:
		if err := mc.checkRange(state.Index, int(inst.X)+1); err != nil {
			return false, flowAdvance, err
		}

		for i := uint16(0); i <= uint16(inst.X); i++ {
			v[i] = mc.read(state.Index + i)
		}

	default:
		return false, flowAdvance, &UnknownOpcodeError{inst.Raw, state.Program}
	}

	return false, flowAdvance, nil
}

// XORs an n-row sprite read from addr onto the framebuffer. Coordinates wrap
// around both edges. VF reports whether any lit pixel was erased.
func (mc *Machine) drawSprite(x, y uint8, addr uint16, rows uint8) {
	state := &mc.State
	collision := false

	for row := uint16(0); row < uint16(rows); row++ {
		line := mc.read(addr + row)

		for col := 0; col < SPRITE_WIDTH; col++ {
			if line&(0x80>>col) == 0 {
				continue
			}

			px := (int(x) + col) % DISPLAY_WIDTH
			py := (int(y) + int(row)) % DISPLAY_HEIGHT
			cell := px + py*DISPLAY_WIDTH

			if state.Display[cell] == 1 {
				collision = true
			}

			state.Display[cell] ^= 1
		}
	}

	state.Registers[REGISTER_FLAG] = boolToFlag(collision)
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}
