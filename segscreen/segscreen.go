// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package segscreen implements an i2c.Bus that emulates a TM1650 display
// controller and draws its digits on the terminal (stdout) using ANSI color
// codes.
//
// Useful while you are waiting for your 7-segment module to come by mail.
package segscreen

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/segdisplay/tm1650"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for this display.
type Opts struct {
	// Digits is the number of emulated digits, 4 if 0.
	Digits int
	// Color is the color of a lit segment at full brightness, red if unset.
	Color   color.NRGBA
	Palette *ansi256.Palette
	// W receives the frames, the colorable stdout if nil.
	W io.Writer

	_ struct{}
}

// Dev is an emulated TM1650 that outputs to the console.
type Dev struct {
	mu      sync.Mutex
	w       io.Writer
	palette ansi256.Palette
	lit     color.NRGBA

	digits []byte
	ctrl   []byte
	drawn  bool
	buf    bytes.Buffer
}

// ErrNoDevice is returned for addresses no emulated register answers at.
var ErrNoDevice = errors.New("segscreen: no device at address")

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	n := opts.Digits
	if n <= 0 {
		n = tm1650.DefaultOpts.Digits
	}
	n = min(n, tm1650.MaxDigits)
	lit := opts.Color
	if lit == (color.NRGBA{}) {
		lit = color.NRGBA{R: 255, A: 255}
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		palette: *p,
		lit:     lit,
		digits:  make([]byte, n),
		ctrl:    make([]byte, n),
	}
}

func (d *Dev) String() string {
	return "SegScreen"
}

// Tx implements i2c.Bus.
//
// Every register takes exactly one byte. An empty write acknowledges the
// address without changing anything.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	if len(r) != 0 {
		return errors.New("segscreen: reads are not supported")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var reg []byte
	switch {
	case addr >= tm1650.DisplayBase && int(addr-tm1650.DisplayBase) < len(d.digits):
		reg = d.digits[addr-tm1650.DisplayBase:]
	case addr >= tm1650.ControlBase && int(addr-tm1650.ControlBase) < len(d.ctrl):
		reg = d.ctrl[addr-tm1650.ControlBase:]
	default:
		return fmt.Errorf("%w %#x", ErrNoDevice, addr)
	}
	switch len(w) {
	case 0:
		return nil
	case 1:
		reg[0] = w[0]
	default:
		return fmt.Errorf("segscreen: expected a single byte at %#x, got %d", addr, len(w))
	}
	_, err := d.refresh()
	return err
}

// SetSpeed implements i2c.Bus.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
//
// It resets the terminal colors so it is not corrupted.
func (d *Dev) Close() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Digits returns the number of emulated digits.
func (d *Dev) Digits() int {
	return len(d.digits)
}

// Position returns the content of the display register of pos.
func (d *Dev) Position(pos int) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pos < 0 || pos >= len(d.digits) {
		return 0
	}
	return d.digits[pos]
}

// Control returns the content of the control register of pos.
func (d *Dev) Control(pos int) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pos < 0 || pos >= len(d.ctrl) {
		return 0
	}
	return d.ctrl[pos]
}

// rows lists, per text line, the segment drawn in each cell of a digit.
// 0 is background.
var rows = [5][5]byte{
	{0, tm1650.SegA, tm1650.SegA, 0, 0},
	{tm1650.SegF, 0, 0, tm1650.SegB, 0},
	{0, tm1650.SegG, tm1650.SegG, 0, 0},
	{tm1650.SegE, 0, 0, tm1650.SegC, 0},
	{0, tm1650.SegD, tm1650.SegD, 0, tm1650.DecimalPoint},
}

// colors returns the lit and unlit colors of a digit from its control
// register.
func (d *Dev) colors(ctrl byte) (color.NRGBA, color.NRGBA) {
	off := color.NRGBA{R: d.lit.R / 8, G: d.lit.G / 8, B: d.lit.B / 8, A: 255}
	if ctrl&1 == 0 {
		return off, off
	}
	level := uint16(ctrl>>4&7) + 1
	on := color.NRGBA{
		R: byte(uint16(d.lit.R) * level / 8),
		G: byte(uint16(d.lit.G) * level / 8),
		B: byte(uint16(d.lit.B) * level / 8),
		A: 255,
	}
	return on, off
}

func (d *Dev) refresh() (int, error) {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.drawn {
		_, _ = fmt.Fprintf(&d.buf, "\033[%dA", len(rows))
	}
	bg := color.NRGBA{A: 255}
	for _, row := range rows {
		_, _ = d.buf.WriteString("\r\033[0m")
		for i, v := range d.digits {
			on, off := d.colors(d.ctrl[i])
			for _, seg := range row {
				c := bg
				if seg != 0 {
					c = off
					if v&seg != 0 {
						c = on
					}
				}
				_, _ = io.WriteString(&d.buf, d.palette.Block(c))
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	n := d.buf.Len()
	_, err := d.buf.WriteTo(d.w)
	return n, err
}

var _ i2c.BusCloser = &Dev{}
var _ fmt.Stringer = &Dev{}
