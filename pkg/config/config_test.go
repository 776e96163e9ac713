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


package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/retroenv/retrogolib/assert"
)

func TestSymTablePath(t *testing.T) {
	assert.Equal(t, filepath.Join("roms", "pong.c8db"), config.SymTablePath("roms/pong.ch8"))
	assert.Equal(t, "pong.c8db", config.SymTablePath("pong"))
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, config.CreateLogger(true, false))
	assert.NotNil(t, config.CreateLogger(false, true))
}

func TestClockPeriod(t *testing.T) {
	period, err := config.ClockPeriod(500)
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Millisecond, period)

	period, err = config.ClockPeriod(config.CLOCK_MAX_HZ)
	assert.NoError(t, err)
	assert.Equal(t, time.Microsecond, period)

	for _, hz := range []int{0, -1, config.CLOCK_MAX_HZ + 1, 2000000000} {
		_, err := config.ClockPeriod(hz)
		assert.ErrorContains(t, err, "Invalid clock rate")
	}
}
