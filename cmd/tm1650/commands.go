// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/segdisplay/tm1650"
	"github.com/jonboulle/clockwork"
)

const usage = `usage: tm1650 [flags] <command> [args]

commands:
  text <text>          show text
  scroll <text>        scroll text longer than the display
  brightness <0-7>     set the brightness
  fade <0-7>           fade to a brightness
  dot <pos> <on|off>   set a decimal point
  raw <pos> <value>    write a display register
  ctrl <pos> <value>   write a control register
  on | off | clear

flags:
`

var errUsage = errors.New("invalid arguments, use -help")

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errUsage)
	}
	return byte(v), nil
}

func parsePos(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errUsage)
	}
	return v, nil
}

// run executes one command on dev. interval paces scrolling.
func run(dev *tm1650.Dev, clock clockwork.Clock, interval time.Duration, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	want := map[string]int{
		"text": 1, "scroll": 1, "brightness": 1, "fade": 1,
		"dot": 2, "raw": 2, "ctrl": 2,
		"on": 0, "off": 0, "clear": 0,
	}
	n, ok := want[cmd]
	if !ok || len(args) != n {
		return fmt.Errorf("%s: %w", cmd, errUsage)
	}
	log.Printf("%s: %s %q", dev, cmd, args)

	switch cmd {
	case "text":
		return dev.DisplayString(args[0])
	case "scroll":
		remaining, err := dev.DisplayRunning(args[0])
		for err == nil && remaining > 0 {
			if interval > 0 {
				clock.Sleep(interval)
			}
			remaining, err = dev.DisplayRunningShift()
		}
		return err
	case "brightness", "fade":
		level, err := parseByte(args[0])
		if err != nil {
			return err
		}
		if cmd == "fade" {
			return dev.SetBrightnessGradually(level)
		}
		return dev.SetBrightness(level)
	case "dot":
		pos, err := parsePos(args[0])
		if err != nil {
			return err
		}
		on, err := strconv.ParseBool(map[string]string{"on": "true", "off": "false"}[args[1]])
		if err != nil {
			return fmt.Errorf("%q: %w", args[1], errUsage)
		}
		return dev.SetDot(pos, on)
	case "raw", "ctrl":
		pos, err := parsePos(args[0])
		if err != nil {
			return err
		}
		v, err := parseByte(args[1])
		if err != nil {
			return err
		}
		if cmd == "ctrl" {
			return dev.ControlPosition(pos, v)
		}
		return dev.SetPosition(pos, v)
	case "on":
		return dev.DisplayOn()
	case "off":
		return dev.DisplayOff()
	default:
		return dev.Clear()
	}
}
