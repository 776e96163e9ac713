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


package keypad_test

import (
	"testing"
	"time"

	"github.com/lassandro/gochip8/pkg/keypad"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultKeymap(t *testing.T) {
	tests := []struct {
		Input  rune
		Output uint8
	}{
		{'0', 0x0}, {'5', 0x5}, {'9', 0x9},
		{'q', 0xA}, {'W', 0xB}, {'e', 0xC},
		{'r', 0xD}, {'t', 0xE}, {'Y', 0xF},
	}

	for _, test := range tests {
		key, ok := keypad.DefaultKeymap.Lookup(test.Input)
		assert.True(t, ok)
		assert.Equal(t, test.Output, key)
	}

	_, ok := keypad.DefaultKeymap.Lookup('z')
	assert.False(t, ok)
}

func TestReleaseWindow(t *testing.T) {
	start := time.Unix(0, 0)
	kp := keypad.New(nil, 100*time.Millisecond)

	assert.True(t, kp.PressRune('w', start))
	assert.False(t, kp.PressRune('!', start))
	assert.True(t, kp.Held(0xB))

	kp.Update(start.Add(50 * time.Millisecond))
	assert.True(t, kp.Held(0xB))

	// Repeated presses extend the window
	kp.PressRune('w', start.Add(60*time.Millisecond))
	kp.Update(start.Add(120 * time.Millisecond))
	assert.True(t, kp.Held(0xB))

	kp.Update(start.Add(160 * time.Millisecond))
	assert.False(t, kp.Held(0xB))
}

func TestExplicitRelease(t *testing.T) {
	kp := keypad.New(keypad.DefaultKeymap, 0)
	now := time.Unix(0, 0)

	kp.Press(0x3, now)
	kp.Update(now.Add(time.Hour))
	assert.True(t, kp.Held(0x3))

	assert.True(t, kp.LiftRune('3'))
	assert.False(t, kp.Held(0x3))

	kp.Press(0x10, now)
	assert.False(t, kp.Held(0x10))
}

func TestApply(t *testing.T) {
	kp := keypad.New(nil, 0)
	now := time.Unix(0, 0)

	kp.Press(0x1, now)
	kp.Press(0xF, now)

	var state machine.MachineState
	state.Keys[0x4] = true
	kp.Apply(&state)

	assert.Equal(t, [machine.KEY_COUNT]bool{0x1: true, 0xF: true}, state.Keys)

	key, pressed := state.PressedKey()
	assert.True(t, pressed)
	assert.Equal(t, uint8(0xF), key)

	kp.Reset()
	kp.Apply(&state)
	_, pressed = state.PressedKey()
	assert.False(t, pressed)
}

func TestLatch(t *testing.T) {
	kp := keypad.New(nil, 10*time.Millisecond)
	now := time.Unix(0, 0)

	kp.Latch(0x5, true)
	kp.Update(now.Add(time.Second))
	assert.True(t, kp.Held(0x5))

	var state machine.MachineState
	kp.Apply(&state)
	assert.True(t, state.Keys[0x5])

	kp.Latch(0x5, false)
	kp.Apply(&state)
	assert.False(t, state.Keys[0x5])

	kp.Latch(0x20, true)
	assert.False(t, kp.Held(0x20))
}
