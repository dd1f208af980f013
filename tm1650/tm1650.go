// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tm1650

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

const (
	// DisplayBase is the bus address of the display register of the left
	// most digit. Digit n answers at DisplayBase+n.
	DisplayBase uint16 = 0x34
	// ControlBase is the bus address of the control register of the left
	// most digit. Digit n answers at ControlBase+n.
	ControlBase uint16 = 0x24
	// MaxDigits is the largest number of digits the driver addresses.
	MaxDigits = 16
	// MaxString is the capacity of the scrolling text buffer.
	MaxString = 128
	// MaxBrightness is the brightest level accepted by SetBrightness.
	MaxBrightness byte = 7
	// BrightnessStep is the pause between two levels of
	// SetBrightnessGradually.
	BrightnessStep = 50 * time.Millisecond

	packageName = "tm1650"
)

const (
	bitOnOff    byte = 0x01
	mskOnOff    byte = 0xfe
	brightShift      = 4
	mskBright   byte = 0x8f
)

var (
	// ErrNotDetected is returned when the chip does not acknowledge the
	// presence probe.
	ErrNotDetected = errors.New("device not detected")

	errNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	errInvalid        = fmt.Errorf("%s: %w", packageName, display.ErrInvalidCommand)
)

// Opts holds the configuration of a display.
type Opts struct {
	// Digits is the number of physical digits. 0 selects 4, values above
	// MaxDigits are clamped.
	Digits int
	// Clock paces SetBrightnessGradually. nil selects the wall clock.
	Clock clockwork.Clock
}

// DefaultOpts is the configuration of the common 4 digit modules.
var DefaultOpts = Opts{Digits: 4}

// Dev is a handle to a TM1650 based display.
type Dev struct {
	bus    i2c.Bus
	clock  clockwork.Clock
	digits int

	active     bool
	brightness byte
	buf        []byte
	ctrl       []byte

	// scroll holds the text of DisplayRunning, cursor is the index of the
	// character shown on digit 0.
	scroll    [MaxString]byte
	scrollLen int
	cursor    int
	scrolling bool

	// col is the column used by Write.
	col int
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// New returns a display on the bus and runs Init.
//
// When the chip does not answer, New returns a usable Dev whose operations
// are all no-ops together with an error wrapping ErrNotDetected.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	digits := opts.Digits
	switch {
	case digits < 0:
		return nil, wrap(fmt.Errorf("invalid number of digits %d", digits))
	case digits == 0:
		digits = DefaultOpts.Digits
	case digits > MaxDigits:
		digits = MaxDigits
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	d := &Dev{
		bus:    bus,
		clock:  clock,
		digits: digits,
		buf:    make([]byte, digits),
		ctrl:   make([]byte, digits),
	}
	return d, d.Init()
}

// Init probes the chip, resets the mirror, blanks every digit and turns the
// display on.
func (d *Dev) Init() error {
	d.scrolling = false
	d.scrollLen = 0
	d.cursor = 0
	d.col = 0
	d.brightness = 0
	for i := range d.buf {
		d.buf[i] = 0
		d.ctrl[i] = 0
	}
	// The probe blanks digit 0, Clear below does it anyway.
	if err := d.bus.Tx(DisplayBase, []byte{0}, nil); err != nil {
		d.active = false
		return wrap(fmt.Errorf("%w at %#x: %v", ErrNotDetected, DisplayBase, err))
	}
	d.active = true
	if err := d.Clear(); err != nil {
		return err
	}
	return d.DisplayOn()
}

// Active reports whether the chip acknowledged the last Init.
func (d *Dev) Active() bool {
	return d.active
}

// Digits returns the number of digits of the display.
func (d *Dev) Digits() int {
	return d.digits
}

// Brightness returns the current brightness level.
func (d *Dev) Brightness() byte {
	return d.brightness
}

// Position returns the last value written to the display register of pos.
func (d *Dev) Position(pos int) byte {
	if pos < 0 || pos >= d.digits {
		return 0
	}
	return d.buf[pos]
}

// Control returns the last value written to the control register of pos.
func (d *Dev) Control(pos int) byte {
	if pos < 0 || pos >= d.digits {
		return 0
	}
	return d.ctrl[pos]
}

func (d *Dev) writeControl(pos int, value byte) error {
	d.ctrl[pos] = value
	return wrap(d.bus.Tx(ControlBase+uint16(pos), []byte{value}, nil))
}

func (d *Dev) writeDisplay(pos int, value byte) error {
	d.buf[pos] = value
	return wrap(d.bus.Tx(DisplayBase+uint16(pos), []byte{value}, nil))
}

// ControlPosition writes value verbatim to the control register of pos.
// Positions outside the display are ignored.
func (d *Dev) ControlPosition(pos int, value byte) error {
	if !d.active || pos < 0 || pos >= d.digits {
		return nil
	}
	return d.writeControl(pos, value)
}

// SetPosition writes value verbatim to the display register of pos.
// Positions outside the display are ignored.
func (d *Dev) SetPosition(pos int, value byte) error {
	if !d.active || pos < 0 || pos >= d.digits {
		return nil
	}
	return d.writeDisplay(pos, value)
}

// SetDot turns the decimal point of pos on or off, keeping its segments.
func (d *Dev) SetDot(pos int, on bool) error {
	if !d.active || pos < 0 || pos >= d.digits {
		return nil
	}
	v := d.buf[pos] &^ DecimalPoint
	if on {
		v |= DecimalPoint
	}
	return d.writeDisplay(pos, v)
}

// Clear blanks every digit. The display stays on.
func (d *Dev) Clear() error {
	if !d.active {
		return nil
	}
	d.col = 0
	for i := range d.digits {
		if err := d.writeDisplay(i, 0); err != nil {
			return err
		}
	}
	return nil
}

// DisplayOn turns every digit on.
func (d *Dev) DisplayOn() error {
	return d.DisplayState(true)
}

// DisplayOff turns every digit off. Segments and brightness are retained.
func (d *Dev) DisplayOff() error {
	return d.DisplayState(false)
}

// DisplayState turns every digit on or off.
func (d *Dev) DisplayState(on bool) error {
	if !d.active {
		return nil
	}
	for i := range d.digits {
		v := d.ctrl[i] & mskOnOff
		if on {
			v |= bitOnOff
		}
		if err := d.writeControl(i, v); err != nil {
			return err
		}
	}
	return nil
}

// SetBrightness sets every digit to level. Levels above MaxBrightness are
// clamped.
func (d *Dev) SetBrightness(level byte) error {
	if !d.active {
		return nil
	}
	d.brightness = min(level, MaxBrightness)
	for i := range d.digits {
		v := (d.ctrl[i] & mskBright) | (d.brightness << brightShift)
		if err := d.writeControl(i, v); err != nil {
			return err
		}
	}
	return nil
}

// SetBrightnessGradually fades to level one step at a time, pausing
// BrightnessStep after each step. It blocks until level is reached.
func (d *Dev) SetBrightnessGradually(level byte) error {
	level = min(level, MaxBrightness)
	if !d.active || level == d.brightness {
		return nil
	}
	for b := d.brightness; b != level; {
		if b < level {
			b++
		} else {
			b--
		}
		if err := d.SetBrightness(b); err != nil {
			return err
		}
		d.clock.Sleep(BrightnessStep)
	}
	return nil
}

// DisplayString shows text from the left most digit. Only the first Digits()
// characters are shown. A shorter text leaves the remaining digits
// untouched, so does a NUL character. The high bit of a character turns the
// decimal point of its digit on.
func (d *Dev) DisplayString(text string) error {
	if !d.active {
		return nil
	}
	for i := 0; i < d.digits && i < len(text); i++ {
		c := text[i]
		if c&^DecimalPoint == 0 {
			break
		}
		if err := d.writeDisplay(i, Encode(c)); err != nil {
			return err
		}
	}
	return nil
}

// DisplayRunning stores text for scrolling and shows its first Digits()
// characters. Text longer than MaxString is truncated.
//
// It returns the number of DisplayRunningShift calls needed to show the
// whole text. The count is computed even when the chip is absent.
func (d *Dev) DisplayRunning(text string) (int, error) {
	n := copy(d.scroll[:], text)
	if i := strings.IndexByte(text[:n], 0); i >= 0 {
		n = i
	}
	d.scrollLen = n
	d.cursor = 0
	d.scrolling = true
	err := d.DisplayString(d.scrolled())
	return max(n-d.digits, 0), err
}

// DisplayRunningShift scrolls the text set by DisplayRunning one character
// to the left and returns the number of shifts remaining. It returns 0
// without doing anything once the end of the text is shown.
func (d *Dev) DisplayRunningShift() (int, error) {
	if !d.scrolling || d.scrollLen-d.cursor <= d.digits {
		return 0, nil
	}
	d.cursor++
	err := d.DisplayString(d.scrolled())
	return d.scrollLen - d.cursor - d.digits, err
}

func (d *Dev) scrolled() string {
	return string(d.scroll[d.cursor:d.scrollLen])
}

// Halt implements conn.Resource. It turns the display off.
func (d *Dev) Halt() error {
	return d.DisplayOff()
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{bus: %s, digits: %d, active: %t}", packageName, d.bus, d.digits, d.active)
}

// Backlight implements display.DisplayBacklight. The 0-255 intensity is
// scaled to the 8 brightness levels of the chip.
func (d *Dev) Backlight(intensity display.Intensity) error {
	intensity = max(0, min(intensity, 0xff))
	return d.SetBrightness(byte(intensity >> 5))
}

// AutoScroll is not supported, use DisplayRunning.
func (d *Dev) AutoScroll(enabled bool) error {
	return errNotImplemented
}

// Cols returns the number of digits.
func (d *Dev) Cols() int {
	return d.digits
}

// Rows returns 1.
func (d *Dev) Rows() int {
	return 1
}

// MinCol returns 0.
func (d *Dev) MinCol() int {
	return 0
}

// MinRow returns 0.
func (d *Dev) MinRow() int {
	return 0
}

// Cursor accepts only display.CursorOff, the chip has no cursor.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		switch {
		case mode < display.CursorOff || mode > display.CursorBlink:
			return fmt.Errorf("%w: cursor mode %d", errInvalid, mode)
		case mode != display.CursorOff:
			return errNotImplemented
		}
	}
	return nil
}

// Home moves the write column to the left most digit.
func (d *Dev) Home() error {
	d.col = 0
	return nil
}

// Move moves the write column one digit forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		if d.col < d.digits {
			d.col++
		}
	case display.Backward:
		if d.col > 0 {
			d.col--
		}
	case display.Up, display.Down:
		return errNotImplemented
	default:
		return fmt.Errorf("%w: direction %d", errInvalid, dir)
	}
	return nil
}

// MoveTo moves the write column to col. row must be 0.
func (d *Dev) MoveTo(row, col int) error {
	if row != 0 || col < 0 || col >= d.digits {
		return fmt.Errorf("%w: position (%d,%d)", errInvalid, row, col)
	}
	d.col = col
	return nil
}

// Display implements display.TextDisplay, see DisplayState.
func (d *Dev) Display(on bool) error {
	return d.DisplayState(on)
}

// Write encodes p from the write column onwards. Characters past the last
// digit are dropped.
func (d *Dev) Write(p []byte) (int, error) {
	for _, c := range p {
		if d.col >= d.digits {
			break
		}
		if err := d.SetPosition(d.col, Encode(c)); err != nil {
			return 0, err
		}
		d.col++
	}
	return len(p), nil
}

// WriteString implements display.TextDisplay.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
