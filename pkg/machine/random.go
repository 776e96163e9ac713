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
	"math/rand"
	"time"
)

type RandomSource struct {
	r *rand.Rand
}

func (rng *RandomSource) Byte() uint8 {
	return uint8(rng.r.Intn(256))
}

// NewRandomSource returns a generator that replays the same byte sequence
// for the same seed. A zero seed picks one from the clock.
func NewRandomSource(seed int64) *RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSource{r: rand.New(rand.NewSource(seed))}
}
