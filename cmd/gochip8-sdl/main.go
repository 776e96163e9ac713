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


package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/keypad"
	"github.com/lassandro/gochip8/pkg/machine"
)

var helpvar bool
var lenientvar bool
var tracevar bool
var quietvar bool
var hzvar int
var scalevar int
var seedvar int64

const usage = "gochip8-sdl [-scale #] [-hz #] [-seed #] filename"

const title = "gochip8"

func init() {
	// SDL calls have to stay on the main thread
	runtime.LockOSThread()
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&lenientvar, "lenient", false, "Skips unknown opcodes instead of stopping")
	flag.BoolVar(&tracevar, "trace", false, "Logs every executed instruction")
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
	flag.IntVar(&hzvar, "hz", 500, "Instructions executed per second")
	flag.IntVar(&scalevar, "scale", 10, "Window pixels per display pixel")
	flag.Int64Var(&seedvar, "seed", 0, "Seed for RND, 0 seeds from the clock")
	flag.Parse()
}

type display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	scale    int32
}

func newDisplay(scale int32) (*display, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	window, err := sdl.CreateWindow(
		title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		machine.DISPLAY_WIDTH*scale, machine.DISPLAY_HEIGHT*scale,
		sdl.WINDOW_SHOWN,
	)

	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)

	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	return &display{window, renderer, scale}, nil
}

func (d *display) close() {
	d.renderer.Destroy()
	d.window.Destroy()
	sdl.Quit()
}

func (d *display) draw(fb *[machine.DISPLAY_SIZE]uint8) error {
	if err := d.renderer.SetDrawColor(0x00, 0x00, 0x00, 0xFF); err != nil {
		return err
	}

	if err := d.renderer.Clear(); err != nil {
		return err
	}

	if err := d.renderer.SetDrawColor(0xFF, 0xFF, 0xFF, 0xFF); err != nil {
		return err
	}

	for i, pixel := range fb {
		if pixel == 0 {
			continue
		}

		x := int32(i % machine.DISPLAY_WIDTH)
		y := int32(i / machine.DISPLAY_WIDTH)

		if err := d.renderer.FillRect(&sdl.Rect{
			X: x * d.scale, Y: y * d.scale, W: d.scale, H: d.scale,
		}); err != nil {
			return err
		}
	}

	d.renderer.Present()
	return nil
}

// Drains the SDL event queue into the keypad, reporting whether the window
// was closed
func pollEvents(pad *keypad.Keypad, now time.Time) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			return true

		case *sdl.KeyboardEvent:
			if t.Keysym.Sym == sdl.K_ESCAPE {
				return true
			}

			switch t.Type {
			case sdl.KEYDOWN:
				pad.PressRune(rune(t.Keysym.Sym), now)
			case sdl.KEYUP:
				pad.LiftRune(rune(t.Keysym.Sym))
			}
		}
	}

	return false
}

func run(ctx context.Context, period time.Duration, logger *log.Logger, mc *machine.Machine, d *display) error {
	pad := keypad.New(keypad.DefaultKeymap, 0)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	beeping := false

	for {
		var now time.Time

		select {
		case <-ctx.Done():
			return nil
		case now = <-ticker.C:
		}

		if pollEvents(pad, now) {
			return nil
		}

		pad.Apply(&mc.State)

		draw, err := mc.Step()

		if err != nil {
			var unknown *machine.UnknownOpcodeError

			if lenientvar && errors.As(err, &unknown) {
				logger.Warn("Skipping unknown opcode",
					log.Hex("pc", unknown.Program),
					log.Hex("opcode", unknown.Opcode))
				mc.State.Program += 2
				continue
			}

			return err
		}

		if draw {
			if err := d.draw(&mc.State.Display); err != nil {
				return fmt.Errorf("drawing frame: %w", err)
			}
		}

		if mc.Beeping() != beeping {
			beeping = mc.Beeping()

			if beeping {
				d.window.SetTitle(title + " *")
			} else {
				d.window.SetTitle(title)
			}
		}
	}
}

func gochip8_sdl() int {
	logger := config.CreateLogger(tracevar, quietvar)

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		logger.Error(usage)
		return 1
	}

	period, err := config.ClockPeriod(hzvar)

	if err != nil {
		logger.Error("Invalid -hz", log.Err(err))
		return 1
	}

	if scalevar <= 0 {
		logger.Error("Scale must be positive", log.Int("scale", scalevar))
		return 1
	}

	mc := machine.NewMachine()
	mc.Random = machine.NewRandomSource(seedvar)

	if tracevar {
		mc.Logger = logger
	}

	file, err := os.Open(args[0])

	if err != nil {
		logger.Error("Loading ROM failed", log.Err(err))
		return 1
	}

	err = mc.LoadROM(file)
	file.Close()

	if err != nil {
		logger.Error("Loading ROM failed", log.Err(err))
		return 1
	}

	d, err := newDisplay(int32(scalevar))

	if err != nil {
		logger.Error("Opening display failed", log.Err(err))
		return 1
	}

	defer d.close()

	if err := d.draw(&mc.State.Display); err != nil {
		logger.Error("Drawing frame failed", log.Err(err))
		return 1
	}

	if err := run(app.Context(), period, logger, mc, d); err != nil {
		logger.Error("Machine stopped", log.Err(err))
		return 1
	}

	return 0
}

func main() {
	os.Exit(gochip8_sdl())
}
