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


package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const SYMTABLE_EXT = ".c8db"

// Fastest clock the front-ends accept, one instruction per microsecond
const CLOCK_MAX_HZ = 1000000

type ClockRateError struct {
	Hz int
}

func (err *ClockRateError) Error() string {
	return fmt.Sprintf(
		"Invalid clock rate\n\twant:1-%d\n\thave:%d", CLOCK_MAX_HZ, err.Hz,
	)
}

// ClockPeriod converts an instructions-per-second rate into the ticker
// period driving the run loop
func ClockPeriod(hz int) (time.Duration, error) {
	if hz <= 0 || hz > CLOCK_MAX_HZ {
		return 0, &ClockRateError{hz}
	}

	return time.Second / time.Duration(hz), nil
}

// CreateLogger creates a logger at debug level, error level when quiet, and
// info level otherwise
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// SymTablePath names the symbol table that sits next to a ROM, i.e.
// pong.ch8 -> pong.c8db
func SymTablePath(rom string) string {
	base := filepath.Base(rom)
	return filepath.Join(
		filepath.Dir(rom), strings.TrimSuffix(base, filepath.Ext(base))+SYMTABLE_EXT,
	)
}
