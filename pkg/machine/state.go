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

func (mc *MachineState) Reset() {
	*mc = MachineState{}

	// Programs are loaded above the reserved interpreter area
	mc.Program = MEMSPACE_PROGRAM
}

func (mc *MachineState) Register(x uint8) (uint8, error) {
	if x >= REGISTER_LEN {
		return 0, &StateFault{"Register", int(x)}
	}

	return mc.Registers[x], nil
}

func (mc *MachineState) SetRegister(x uint8, value uint8) error {
	if x >= REGISTER_LEN {
		return &StateFault{"Register", int(x)}
	}

	mc.Registers[x] = value
	return nil
}

func (mc *MachineState) Read(addr uint16) (uint8, error) {
	if addr > MEMORY_LAST {
		return 0, &StateFault{"Memory", int(addr)}
	}

	return mc.Memory[addr], nil
}

func (mc *MachineState) Write(addr uint16, value uint8) error {
	if addr > MEMORY_LAST {
		return &StateFault{"Memory", int(addr)}
	}

	mc.Memory[addr] = value
	return nil
}

func (mc *MachineState) SetIndex(value uint16) error {
	if value > MEMORY_LAST {
		return &StateFault{"Index", int(value)}
	}

	mc.Index = value
	return nil
}

func (mc *MachineState) SetProgram(value uint16) error {
	if value > MEMORY_LAST {
		return &StateFault{"Program", int(value)}
	}

	mc.Program = value
	return nil
}

func (mc *MachineState) StackSlot(i uint8) (uint16, error) {
	if i >= STACK_SIZE {
		return 0, &StateFault{"Stack", int(i)}
	}

	return mc.Stack[i], nil
}

func (mc *MachineState) SetStackSlot(i uint8, addr uint16) error {
	if i >= STACK_SIZE {
		return &StateFault{"Stack", int(i)}
	}

	if addr > MEMORY_LAST {
		return &StateFault{"StackAddress", int(addr)}
	}

	mc.Stack[i] = addr
	return nil
}

// The pointer may equal STACK_SIZE, meaning every slot is in use
func (mc *MachineState) SetStackPointer(sp uint8) error {
	if sp > STACK_SIZE {
		return &StateFault{"StackPointer", int(sp)}
	}

	mc.StackPointer = sp
	return nil
}

func (mc *MachineState) SetDelayTimer(value uint8) {
	mc.DelayTimer = value
}

func (mc *MachineState) SetSoundTimer(value uint8) {
	mc.SoundTimer = value
}

func (mc *MachineState) Key(k uint8) (bool, error) {
	if k >= KEY_COUNT {
		return false, &StateFault{"Key", int(k)}
	}

	return mc.Keys[k], nil
}

func (mc *MachineState) SetKey(k uint8, pressed bool) error {
	if k >= KEY_COUNT {
		return &StateFault{"Key", int(k)}
	}

	mc.Keys[k] = pressed
	return nil
}

func (mc *MachineState) Pixel(x, y int) (uint8, error) {
	if x < 0 || x >= DISPLAY_WIDTH {
		return 0, &StateFault{"PixelX", x}
	}

	if y < 0 || y >= DISPLAY_HEIGHT {
		return 0, &StateFault{"PixelY", y}
	}

	return mc.Display[x+y*DISPLAY_WIDTH], nil
}

func (mc *MachineState) SetPixel(x, y int, value uint8) error {
	if x < 0 || x >= DISPLAY_WIDTH {
		return &StateFault{"PixelX", x}
	}

	if y < 0 || y >= DISPLAY_HEIGHT {
		return &StateFault{"PixelY", y}
	}

	if value > 1 {
		return &StateFault{"PixelValue", int(value)}
	}

	mc.Display[x+y*DISPLAY_WIDTH] = value
	return nil
}

func (mc *MachineState) ClearDisplay() {
	for i := range mc.Display {
		mc.Display[i] = 0
	}
}

// Index of the highest pressed key, or false when no key is down
func (mc *MachineState) PressedKey() (uint8, bool) {
	var key uint8
	pressed := false

	for k, down := range mc.Keys {
		if down {
			key = uint8(k)
			pressed = true
		}
	}

	return key, pressed
}
