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


package keypad

import (
	"time"
	"unicode"

	"github.com/lassandro/gochip8/pkg/machine"
)

type Keymap map[rune]uint8

// Digits map to themselves, q w e r t y to 0xA through 0xF
var DefaultKeymap = Keymap{
	'0': 0x0, '1': 0x1, '2': 0x2, '3': 0x3,
	'4': 0x4, '5': 0x5, '6': 0x6, '7': 0x7,
	'8': 0x8, '9': 0x9,
	'q': 0xA, 'w': 0xB, 'e': 0xC, 'r': 0xD, 't': 0xE, 'y': 0xF,
}

func (km Keymap) Lookup(r rune) (uint8, bool) {
	key, ok := km[unicode.ToLower(r)]
	return key, ok
}

// Keypad tracks which of the 16 keys are held. Terminals only report
// presses, so with a non-zero Release window a key counts as held until
// that long after its last press.
type Keypad struct {
	Keymap  Keymap
	Release time.Duration

	held    [machine.KEY_COUNT]bool
	latched [machine.KEY_COUNT]bool
	pressed [machine.KEY_COUNT]time.Time
}

func New(keymap Keymap, release time.Duration) *Keypad {
	if keymap == nil {
		keymap = DefaultKeymap
	}

	return &Keypad{Keymap: keymap, Release: release}
}

func (kp *Keypad) Press(key uint8, now time.Time) {
	if key >= machine.KEY_COUNT {
		return
	}

	kp.held[key] = true
	kp.pressed[key] = now
}

func (kp *Keypad) Lift(key uint8) {
	if key >= machine.KEY_COUNT {
		return
	}

	kp.held[key] = false
}

// PressRune presses the key mapped to r, reporting whether one exists
func (kp *Keypad) PressRune(r rune, now time.Time) bool {
	key, ok := kp.Keymap.Lookup(r)

	if ok {
		kp.Press(key, now)
	}

	return ok
}

func (kp *Keypad) LiftRune(r rune) bool {
	key, ok := kp.Keymap.Lookup(r)

	if ok {
		kp.Lift(key)
	}

	return ok
}

// Update lifts every key whose release window has passed
func (kp *Keypad) Update(now time.Time) {
	if kp.Release <= 0 {
		return
	}

	for key, held := range kp.held {
		if held && now.Sub(kp.pressed[key]) >= kp.Release {
			kp.held[key] = false
		}
	}
}

// Latch holds a key down until it is unlatched, ignoring the release
// window
func (kp *Keypad) Latch(key uint8, on bool) {
	if key >= machine.KEY_COUNT {
		return
	}

	kp.latched[key] = on
}

func (kp *Keypad) Held(key uint8) bool {
	return key < machine.KEY_COUNT && (kp.held[key] || kp.latched[key])
}

// Apply copies the held keys into the machine's keypad flags
func (kp *Keypad) Apply(state *machine.MachineState) {
	for key := range state.Keys {
		state.Keys[key] = kp.held[key] || kp.latched[key]
	}
}

func (kp *Keypad) Reset() {
	kp.held = [machine.KEY_COUNT]bool{}
	kp.latched = [machine.KEY_COUNT]bool{}
}
