// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"os"
	"time"
)

// Config is the tool configuration. It is read from a JSON file, then
// command line flags override single fields.
type Config struct {
	Bus     string `json:"bus"`
	Digits  int    `json:"digits"`
	Emulate bool   `json:"emulate"`

	ScrollIntervalMillis int `json:"scroll_interval_ms"` // time between two scroll steps

	LogFilePath string `json:"log_file_path"`
	PNGPath     string `json:"png_path"`
}

// ScrollInterval returns the pause between two scroll steps.
func (c *Config) ScrollInterval() time.Duration {
	return time.Duration(c.ScrollIntervalMillis) * time.Millisecond
}

func defaultConfig() Config {
	return Config{
		Digits:               4,
		ScrollIntervalMillis: 300,
	}
}

// LoadConfig returns the defaults overridden by the file at filePath. An
// empty path returns the defaults.
func LoadConfig(filePath string) (*Config, error) {
	conf := defaultConfig()
	if filePath == "" {
		return &conf, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&conf); err != nil {
		return nil, err
	}
	if conf.Digits < 0 {
		return nil, errors.New("digits must be positive")
	}
	return &conf, nil
}

// parseFlags parses args, loads the -config file and applies the flags that
// were set on top of it. It returns the remaining arguments.
func parseFlags(args []string) (*Config, []string, error) {
	def := defaultConfig()
	fs := flag.NewFlagSet("tm1650", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON configuration file")
	bus := fs.String("bus", def.Bus, "I²C bus to use")
	digits := fs.Int("digits", def.Digits, "number of digits of the display")
	emulate := fs.Bool("emulate", def.Emulate, "draw an emulated display on the terminal instead of using I²C")
	interval := fs.Int("interval", def.ScrollIntervalMillis, "milliseconds between two scroll steps")
	logFile := fs.String("log", def.LogFilePath, "log to this file, with rotation")
	pngPath := fs.String("png", def.PNGPath, "save the display content as PNG once done")
	fs.Usage = func() {
		out := fs.Output()
		_, _ = out.Write([]byte(usage))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	conf, err := LoadConfig(*configPath)
	if err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus":
			conf.Bus = *bus
		case "digits":
			conf.Digits = *digits
		case "emulate":
			conf.Emulate = *emulate
		case "interval":
			conf.ScrollIntervalMillis = *interval
		case "log":
			conf.LogFilePath = *logFile
		case "png":
			conf.PNGPath = *pngPath
		}
	})
	return conf, fs.Args(), nil
}
