// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// tm1650 writes to a TM1650 7-segment display, or to an emulated one drawn
// on the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/GermanBionicSystems/segdisplay/segimage"
	"github.com/GermanBionicSystems/segdisplay/segscreen"
	"github.com/GermanBionicSystems/segdisplay/tm1650"
	"github.com/jonboulle/clockwork"
	"gopkg.in/natefinch/lumberjack.v2"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// setupLog routes the log to a rotated file when logFilePath is set. The
// returned function closes the file.
func setupLog(logFilePath string) func() {
	if logFilePath == "" {
		return func() {}
	}
	l := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    1, // megabytes
		MaxBackups: 3,
		MaxAge:     28, //days
	}
	log.SetOutput(l)
	return func() {
		log.SetOutput(os.Stderr)
		_ = l.Close()
	}
}

func openBus(conf *Config) (i2c.BusCloser, error) {
	if conf.Emulate {
		return segscreen.New(&segscreen.Opts{Digits: conf.Digits}), nil
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(conf.Bus)
}

func savePNG(path string, dev *tm1650.Dev) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = segimage.EncodePNG(f, dev, nil); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func mainImpl() error {
	conf, args, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	defer setupLog(conf.LogFilePath)()

	bus, err := openBus(conf)
	if err != nil {
		return err
	}
	defer bus.Close()

	dev, err := tm1650.New(bus, &tm1650.Opts{Digits: conf.Digits})
	if errors.Is(err, tm1650.ErrNotDetected) {
		// Keep going, the commands become no-ops.
		log.Println(err)
	} else if err != nil {
		return err
	}

	if err = run(dev, clockwork.NewRealClock(), conf.ScrollInterval(), args); err != nil {
		return err
	}
	if conf.PNGPath != "" {
		return savePNG(conf.PNGPath, dev)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "tm1650: %s.\n", err)
		os.Exit(1)
	}
}
