// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package segdisplay is a container for 7-segment LED display drivers and
// the tools around them.
//
// tm1650 drives the chip, segscreen emulates it on the terminal and segimage
// renders what it shows.
package segdisplay
