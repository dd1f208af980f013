// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tm1650

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

var initOps = []i2ctest.IO{
	{Addr: 0x34, W: []byte{0x00}}, // probe
	{Addr: 0x34, W: []byte{0x00}}, // clear
	{Addr: 0x35, W: []byte{0x00}},
	{Addr: 0x36, W: []byte{0x00}},
	{Addr: 0x37, W: []byte{0x00}},
	{Addr: 0x24, W: []byte{0x01}}, // on
	{Addr: 0x25, W: []byte{0x01}},
	{Addr: 0x26, W: []byte{0x01}},
	{Addr: 0x27, W: []byte{0x01}},
}

var recordingData = map[string][]i2ctest.IO{
	"TestBasic": append(append([]i2ctest.IO{}, initOps...),
		i2ctest.IO{Addr: 0x34, W: []byte{0x76}}, // H
		i2ctest.IO{Addr: 0x35, W: []byte{0x86}}, // I.
		i2ctest.IO{Addr: 0x24, W: []byte{0x51}},
		i2ctest.IO{Addr: 0x25, W: []byte{0x51}},
		i2ctest.IO{Addr: 0x26, W: []byte{0x51}},
		i2ctest.IO{Addr: 0x27, W: []byte{0x51}},
		i2ctest.IO{Addr: 0x24, W: []byte{0x50}},
		i2ctest.IO{Addr: 0x25, W: []byte{0x50}},
		i2ctest.IO{Addr: 0x26, W: []byte{0x50}},
		i2ctest.IO{Addr: 0x27, W: []byte{0x50}},
	),
}

// absentBus never acknowledges.
type absentBus struct {
	i2ctest.Record
	count int
}

func (b *absentBus) Tx(addr uint16, w, r []byte) error {
	b.count++
	return errors.New("nack")
}

func newRecorded(t *testing.T, digits int) (*Dev, *i2ctest.Record) {
	t.Helper()
	bus := &i2ctest.Record{}
	dev, err := New(bus, &Opts{Digits: digits})
	if err != nil {
		t.Fatal(err)
	}
	bus.Ops = nil
	return dev, bus
}

func verifyOps(t *testing.T, found, expected []i2ctest.IO) {
	t.Helper()
	if len(found) != len(expected) {
		t.Fatalf("found %d operations, expected %d: %#v", len(found), len(expected), found)
	}
	for ix := range expected {
		if found[ix].Addr != expected[ix].Addr || string(found[ix].W) != string(expected[ix].W) {
			t.Errorf("operation %d: found {%#x %#v} expected {%#x %#v}", ix, found[ix].Addr, found[ix].W, expected[ix].Addr, expected[ix].W)
		}
	}
}

func TestBasic(t *testing.T) {
	bus := &i2ctest.Playback{Ops: recordingData["TestBasic"]}
	dev, err := New(bus, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !dev.Active() {
		t.Fatal("expected active device")
	}
	if s := dev.String(); len(s) == 0 {
		t.Error("empty string")
	}
	if err = dev.DisplayString(string([]byte{'H', WithDot('I')})); err != nil {
		t.Error(err)
	}
	if err = dev.SetBrightness(5); err != nil {
		t.Error(err)
	}
	if err = dev.Halt(); err != nil {
		t.Error(err)
	}
	if err = bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		digits   int
		expected int
	}{
		{0, 4},
		{1, 1},
		{6, 6},
		{MaxDigits, MaxDigits},
		{40, MaxDigits},
	}
	for _, tc := range tests {
		dev, err := New(&i2ctest.Record{}, &Opts{Digits: tc.digits})
		if err != nil {
			t.Fatal(err)
		}
		if dev.Digits() != tc.expected {
			t.Errorf("Digits: %d -> %d, expected %d", tc.digits, dev.Digits(), tc.expected)
		}
	}
	if _, err := New(&i2ctest.Record{}, &Opts{Digits: -1}); err == nil {
		t.Error("expected error on negative digit count")
	}
}

func TestNotDetected(t *testing.T) {
	bus := &absentBus{}
	dev, err := New(bus, nil)
	if !errors.Is(err, ErrNotDetected) {
		t.Fatalf("expected ErrNotDetected, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), packageName) {
		t.Errorf("error not prefixed: %v", err)
	}
	if dev == nil || dev.Active() {
		t.Fatal("expected an inactive device")
	}

	_ = dev.Clear()
	_ = dev.DisplayOn()
	_ = dev.DisplayOff()
	_ = dev.SetBrightness(3)
	_ = dev.SetBrightnessGradually(6)
	_ = dev.ControlPosition(0, 0xff)
	_ = dev.SetPosition(0, 0xff)
	_ = dev.SetDot(0, true)
	_ = dev.DisplayString("8888")
	_, _ = dev.WriteString("8888")
	n, err := dev.DisplayRunning("HELLOWORLD")
	if err != nil {
		t.Error(err)
	}
	if n != 6 {
		t.Errorf("expected 6 remaining shifts, got %d", n)
	}
	if n, _ = dev.DisplayRunningShift(); n != 5 {
		t.Errorf("expected 5 remaining shifts, got %d", n)
	}

	if bus.count != 1 {
		t.Errorf("expected only the probe on the bus, got %d transactions", bus.count)
	}
	for i := range dev.Digits() {
		if dev.Position(i) != 0 || dev.Control(i) != 0 {
			t.Errorf("digit %d modified: %#x %#x", i, dev.Position(i), dev.Control(i))
		}
	}
	if dev.Brightness() != 0 {
		t.Errorf("brightness modified: %d", dev.Brightness())
	}
}

func TestReinit(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, nil)
	if !errors.Is(err, ErrNotDetected) {
		t.Fatalf("expected ErrNotDetected, got %v", err)
	}
	bus.Ops = initOps
	if err = dev.Init(); err != nil {
		t.Fatal(err)
	}
	if !dev.Active() {
		t.Error("expected active device after Init")
	}
}

func TestSegments(t *testing.T) {
	for c := range 128 {
		s := Segments(byte(c))
		if Segments(byte(c)|DecimalPoint) != s {
			t.Errorf("Segments(%#x) depends on the high bit", c)
		}
		if Encode(WithDot(byte(c))) != s|DecimalPoint {
			t.Errorf("Encode(%#x) lost the decimal point", c)
		}
	}
	tests := map[byte]byte{
		0:    0x00,
		'0':  0x3F,
		'8':  0x7F,
		'A':  0x77,
		'b':  0x7C,
		'-':  0x40,
		'.':  0x80,
		'#':  0x00,
		'W':  0x00,
		0x7f: 0x00,
	}
	for c, expected := range tests {
		if s := Segments(c); s != expected {
			t.Errorf("Segments(%q) = %#x, expected %#x", c, s, expected)
		}
	}
}

func TestDisplayString(t *testing.T) {
	dev, bus := newRecorded(t, 4)
	_ = dev.SetPosition(2, 0x55)
	_ = dev.SetPosition(3, 0x66)
	bus.Ops = nil

	if err := dev.DisplayString("AB"); err != nil {
		t.Fatal(err)
	}
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x34, W: []byte{0x77}},
		{Addr: 0x35, W: []byte{0x7C}},
	})
	if dev.Position(2) != 0x55 || dev.Position(3) != 0x66 {
		t.Errorf("positions past the text were modified: %#x %#x", dev.Position(2), dev.Position(3))
	}

	bus.Ops = nil
	if err := dev.DisplayString("1\x002"); err != nil {
		t.Fatal(err)
	}
	verifyOps(t, bus.Ops, []i2ctest.IO{{Addr: 0x34, W: []byte{0x06}}})

	bus.Ops = nil
	if err := dev.DisplayString(string([]byte{'1', WithDot('2'), '3', '4', '5'})); err != nil {
		t.Fatal(err)
	}
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x34, W: []byte{0x06}},
		{Addr: 0x35, W: []byte{0xDB}},
		{Addr: 0x36, W: []byte{0x4F}},
		{Addr: 0x37, W: []byte{0x66}},
	})
	if dev.Position(1) != 0xDB {
		t.Errorf("expected the decimal point in the mirror, got %#x", dev.Position(1))
	}
}

func TestSetBrightness(t *testing.T) {
	dev, bus := newRecorded(t, 2)
	tests := []struct {
		level    byte
		on       bool
		expected byte
		ctrl     byte
	}{
		{9, true, 7, 0x71},
		{7, true, 7, 0x71},
		{3, true, 3, 0x31},
		{0, true, 0, 0x01},
		{5, false, 5, 0x50},
		{255, false, 7, 0x70},
	}
	for _, tc := range tests {
		_ = dev.DisplayState(tc.on)
		bus.Ops = nil
		if err := dev.SetBrightness(tc.level); err != nil {
			t.Fatal(err)
		}
		if dev.Brightness() != tc.expected {
			t.Errorf("SetBrightness(%d): brightness %d, expected %d", tc.level, dev.Brightness(), tc.expected)
		}
		verifyOps(t, bus.Ops, []i2ctest.IO{
			{Addr: 0x24, W: []byte{tc.ctrl}},
			{Addr: 0x25, W: []byte{tc.ctrl}},
		})
	}
}

func TestSetBrightnessGradually(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bus := &i2ctest.Record{}
	dev, err := New(bus, &Opts{Digits: 1, Clock: clock})
	if err != nil {
		t.Fatal(err)
	}

	fade := func(level byte, steps int) {
		t.Helper()
		bus.Ops = nil
		done := make(chan error)
		go func() {
			done <- dev.SetBrightnessGradually(level)
		}()
		for range steps {
			clock.BlockUntil(1)
			clock.Advance(BrightnessStep)
		}
		if err := <-done; err != nil {
			t.Fatal(err)
		}
		if len(bus.Ops) != steps {
			t.Errorf("fade to %d: %d writes, expected %d", level, len(bus.Ops), steps)
		}
	}

	fade(3, 3)
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x24, W: []byte{0x11}},
		{Addr: 0x24, W: []byte{0x21}},
		{Addr: 0x24, W: []byte{0x31}},
	})
	fade(1, 2)
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x24, W: []byte{0x21}},
		{Addr: 0x24, W: []byte{0x11}},
	})
	fade(1, 0)
	fade(12, 6)
	if dev.Brightness() != MaxBrightness {
		t.Errorf("expected brightness %d, got %d", MaxBrightness, dev.Brightness())
	}
	fade(9, 0)
}

func TestRawWrites(t *testing.T) {
	dev, bus := newRecorded(t, 4)
	_ = dev.ControlPosition(1, 0xAB)
	_ = dev.ControlPosition(4, 0xAB)
	_ = dev.ControlPosition(-1, 0xAB)
	_ = dev.SetPosition(3, 0x7F)
	_ = dev.SetPosition(4, 0x7F)
	_ = dev.SetPosition(-2, 0x7F)
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x25, W: []byte{0xAB}},
		{Addr: 0x37, W: []byte{0x7F}},
	})
	if dev.Control(1) != 0xAB || dev.Position(3) != 0x7F {
		t.Errorf("mirror not updated: %#x %#x", dev.Control(1), dev.Position(3))
	}
	if dev.Control(9) != 0 || dev.Position(-1) != 0 {
		t.Error("out of range read back should be 0")
	}
}

func TestSetDot(t *testing.T) {
	dev, bus := newRecorded(t, 4)
	_ = dev.SetPosition(0, 0x3F)
	_ = dev.SetDot(0, true)
	if dev.Position(0) != 0xBF {
		t.Errorf("expected 0xbf, got %#x", dev.Position(0))
	}
	_ = dev.SetDot(0, true)
	_ = dev.SetDot(0, false)
	if dev.Position(0) != 0x3F {
		t.Errorf("expected 0x3f, got %#x", dev.Position(0))
	}
	_ = dev.SetDot(4, true)
	_ = dev.SetDot(-1, true)
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x34, W: []byte{0x3F}},
		{Addr: 0x34, W: []byte{0xBF}},
		{Addr: 0x34, W: []byte{0xBF}},
		{Addr: 0x34, W: []byte{0x3F}},
	})
}

func TestDisplayOnOff(t *testing.T) {
	dev, bus := newRecorded(t, 2)
	_ = dev.SetBrightness(6)
	_ = dev.DisplayOff()
	_ = dev.DisplayState(true)
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x24, W: []byte{0x61}},
		{Addr: 0x25, W: []byte{0x61}},
		{Addr: 0x24, W: []byte{0x60}},
		{Addr: 0x25, W: []byte{0x60}},
		{Addr: 0x24, W: []byte{0x61}},
		{Addr: 0x25, W: []byte{0x61}},
	})
}

func TestScroll(t *testing.T) {
	dev, bus := newRecorded(t, 4)
	if n, _ := dev.DisplayRunningShift(); n != 0 {
		t.Errorf("shift without text returned %d", n)
	}
	if len(bus.Ops) != 0 {
		t.Error("shift without text wrote to the bus")
	}

	n, err := dev.DisplayRunning("HELLOWORLD")
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("expected 6, got %d", n)
	}
	for expected := 5; expected >= 0; expected-- {
		if n, err = dev.DisplayRunningShift(); err != nil {
			t.Fatal(err)
		}
		if n != expected {
			t.Fatalf("expected %d, got %d", expected, n)
		}
	}
	bus.Ops = nil
	for range 3 {
		if n, _ = dev.DisplayRunningShift(); n != 0 {
			t.Errorf("finished scroll returned %d", n)
		}
	}
	if len(bus.Ops) != 0 {
		t.Error("finished scroll wrote to the bus")
	}
	for i, c := range []byte("ORLD") {
		if dev.Position(i) != Segments(c) {
			t.Errorf("position %d: %#x, expected %q", i, dev.Position(i), c)
		}
	}

	if n, _ = dev.DisplayRunning("HI"); n != 0 {
		t.Errorf("short text returned %d", n)
	}
	if n, _ = dev.DisplayRunning("HALLO"); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n, _ = dev.DisplayRunning(strings.Repeat("8", 200)); n != MaxString-4 {
		t.Errorf("long text: expected %d, got %d", MaxString-4, n)
	}
	if n, _ = dev.DisplayRunning("ABCDEF\x00GHIJ"); n != 2 {
		t.Errorf("text with NUL: expected 2, got %d", n)
	}
}

func TestBusError(t *testing.T) {
	bus := &i2ctest.Playback{Ops: initOps, DontPanic: true}
	dev, err := New(bus, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = dev.SetBrightness(2)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(err.Error(), packageName) {
		t.Errorf("error not prefixed: %v", err)
	}
	if err = dev.DisplayString("88"); err == nil {
		t.Error("expected an error")
	}
}

func TestTextDisplay(t *testing.T) {
	dev, bus := newRecorded(t, 4)
	if dev.Rows() != 1 || dev.Cols() != 4 || dev.MinRow() != 0 || dev.MinCol() != 0 {
		t.Errorf("unexpected geometry %dx%d", dev.Rows(), dev.Cols())
	}
	if err := dev.MoveTo(0, 2); err != nil {
		t.Fatal(err)
	}
	n, err := dev.WriteString("ABC")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 bytes written, got %d", n)
	}
	_ = dev.Move(display.Backward)
	_, _ = dev.Write([]byte{'1'})
	_ = dev.Home()
	_, _ = dev.Write([]byte{'0'})
	verifyOps(t, bus.Ops, []i2ctest.IO{
		{Addr: 0x36, W: []byte{0x77}},
		{Addr: 0x37, W: []byte{0x7C}},
		{Addr: 0x37, W: []byte{0x06}},
		{Addr: 0x34, W: []byte{0x3F}},
	})

	for _, tc := range [][2]int{{1, 0}, {-1, 0}, {0, -1}, {0, 4}} {
		if err = dev.MoveTo(tc[0], tc[1]); !errors.Is(err, display.ErrInvalidCommand) {
			t.Errorf("MoveTo(%d,%d) returned %v", tc[0], tc[1], err)
		}
	}
	if err = dev.Cursor(display.CursorOff); err != nil {
		t.Error(err)
	}
	if err = dev.Cursor(display.CursorBlink); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Cursor(CursorBlink) returned %v", err)
	}
	if err = dev.Cursor(display.CursorBlink + 1); !errors.Is(err, display.ErrInvalidCommand) {
		t.Errorf("Cursor(invalid) returned %v", err)
	}
	if err = dev.AutoScroll(true); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("AutoScroll returned %v", err)
	}
	if err = dev.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Move(Up) returned %v", err)
	}
	if err = dev.Move(display.Down + 1); !errors.Is(err, display.ErrInvalidCommand) {
		t.Errorf("Move(invalid) returned %v", err)
	}

	_ = dev.Backlight(0xff)
	if dev.Brightness() != 7 {
		t.Errorf("Backlight(0xff): brightness %d", dev.Brightness())
	}
	_ = dev.Backlight(0x40)
	if dev.Brightness() != 2 {
		t.Errorf("Backlight(0x40): brightness %d", dev.Brightness())
	}
	_ = dev.Backlight(-5)
	if dev.Brightness() != 0 {
		t.Errorf("Backlight(-5): brightness %d", dev.Brightness())
	}
	_ = dev.Display(false)
	if dev.Control(0)&bitOnOff != 0 {
		t.Error("Display(false) left the digit on")
	}
}
