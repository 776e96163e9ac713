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


package screen

import (
	"bufio"
	"io"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	CELL_EMPTY  = ' '
	CELL_TOP    = '▀'
	CELL_BOTTOM = '▄'
	CELL_FULL   = '█'
)

type Framebuffer = [machine.DISPLAY_SIZE]uint8

// Frame packs two framebuffer rows into each text line using half-block
// characters, giving 16 lines of 64 cells.
func Frame(display *Framebuffer) []string {
	lines := make([]string, 0, machine.DISPLAY_HEIGHT/2)

	var builder strings.Builder

	for y := 0; y < machine.DISPLAY_HEIGHT; y += 2 {
		builder.Reset()

		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			top := display[x+y*machine.DISPLAY_WIDTH] != 0
			bottom := display[x+(y+1)*machine.DISPLAY_WIDTH] != 0

			switch {
			case top && bottom:
				builder.WriteRune(CELL_FULL)
			case top:
				builder.WriteRune(CELL_TOP)
			case bottom:
				builder.WriteRune(CELL_BOTTOM)
			default:
				builder.WriteRune(CELL_EMPTY)
			}
		}

		lines = append(lines, builder.String())
	}

	return lines
}

// Render homes the cursor and redraws the whole frame. Lines end in CRLF
// since the terminal runs without output processing.
func Render(w io.Writer, display *Framebuffer) error {
	out := bufio.NewWriter(w)

	out.WriteString("\033[H")

	for _, line := range Frame(display) {
		out.WriteString(line)
		out.WriteString("\r\n")
	}

	return out.Flush()
}

func Clear(w io.Writer) error {
	_, err := io.WriteString(w, "\033[H\033[2J")
	return err
}
