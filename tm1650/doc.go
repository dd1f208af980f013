// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tm1650 drives 7-segment LED displays built around the Titan Micro
// TM1650 controller, such as the JY-MCU 4 digit modules.
//
// The TM1650 is not a regular I²C device. Every digit owns two single byte
// registers, each one answering at its own bus address: the display register
// at DisplayBase+n holds the segment pattern and the control register at
// ControlBase+n holds the on/off bit and the brightness level. The chip cannot
// be read back, so Dev keeps a mirror of every register it writes.
//
// Presence is checked once by Init. If the chip does not acknowledge, the
// driver stays usable but every operation silently becomes a no-op until the
// next successful Init.
//
// Implements periph.io/x/conn/v3/display.TextDisplay and
// periph.io/x/conn/v3/display.DisplayBacklight.
package tm1650
