// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package segimage draws the registers of a 7-segment display as an image.
//
// It works from the write-only mirror a driver keeps, so it can be used to
// document or check what a display shows without looking at the hardware.
package segimage

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Mirror is the register content of a display. Implemented by tm1650.Dev
// and segscreen.Dev.
type Mirror interface {
	Digits() int
	// Position returns the segments of pos, bit 0 is segment A, bit 7 the
	// decimal point.
	Position(pos int) byte
	// Control returns the control register of pos, bit 0 turns it on.
	Control(pos int) byte
}

// Opts represents the rendering options.
type Opts struct {
	// DigitW and DigitH are the size of a digit in pixels.
	DigitW int
	DigitH int

	Lit        color.Color
	Unlit      color.Color
	Background color.Color
	// Labels prints the position under each digit.
	Labels bool

	_ struct{}
}

// DefaultOpts renders red digits on black.
var DefaultOpts = Opts{
	DigitW:     60,
	DigitH:     100,
	Lit:        color.RGBA{R: 255, A: 255},
	Unlit:      color.RGBA{R: 60, A: 255},
	Background: color.RGBA{A: 255},
	Labels:     true,
}

var (
	faceOnce sync.Once
	labelTTF *truetype.Font
	faceErr  error
)

func labelFace(size float64) (font.Face, error) {
	faceOnce.Do(func() {
		labelTTF, faceErr = truetype.Parse(goregular.TTF)
	})
	if faceErr != nil {
		return nil, fmt.Errorf("segimage: %w", faceErr)
	}
	return truetype.NewFace(labelTTF, &truetype.Options{Size: size}), nil
}

// layout is the geometry derived from Opts.
type layout struct {
	w, h      float64
	thickness float64
	margin    float64
	label     float64
}

func newLayout(opts *Opts) layout {
	l := layout{w: float64(opts.DigitW), h: float64(opts.DigitH)}
	l.thickness = l.w / 6
	l.margin = 2 * l.thickness
	if opts.Labels {
		l.label = 2 * l.thickness
	}
	return l
}

func (l layout) bounds(digits int) image.Rectangle {
	return image.Rect(0, 0,
		int(l.margin+float64(digits)*(l.w+l.margin)),
		int(2*l.margin+l.h+l.label))
}

func (l layout) origin(pos int) (float64, float64) {
	return l.margin + float64(pos)*(l.w+l.margin), l.margin
}

// segment returns the rectangle of the bar lit by bit, relative to the
// origin of the digit.
func (l layout) segment(bit int) (x, y, w, h float64) {
	t := l.thickness
	half := l.h / 2
	bar := half - t - t/2
	switch bit {
	case 0: // A
		return t, 0, l.w - 2*t, t
	case 1: // B
		return l.w - t, t, t, bar
	case 2: // C
		return l.w - t, half + t/2, t, bar
	case 3: // D
		return t, l.h - t, l.w - 2*t, t
	case 4: // E
		return 0, half + t/2, t, bar
	case 5: // F
		return 0, t, t, bar
	default: // G
		return t, half - t/2, l.w - 2*t, t
	}
}

// dot returns the center and radius of the decimal point.
func (l layout) dot() (x, y, r float64) {
	return l.w + l.thickness, l.h - l.thickness/2, l.thickness / 2
}

// Render draws every digit of m.
func Render(m Mirror, opts *Opts) (image.Image, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.DigitW <= 0 || opts.DigitH <= 0 {
		return nil, fmt.Errorf("segimage: invalid digit size %dx%d", opts.DigitW, opts.DigitH)
	}
	lit, unlit, bg := opts.Lit, opts.Unlit, opts.Background
	if lit == nil {
		lit = DefaultOpts.Lit
	}
	if unlit == nil {
		unlit = DefaultOpts.Unlit
	}
	if bg == nil {
		bg = DefaultOpts.Background
	}
	l := newLayout(opts)
	r := l.bounds(m.Digits())
	dc := gg.NewContext(r.Dx(), r.Dy())
	dc.SetColor(bg)
	dc.Clear()

	if opts.Labels {
		face, err := labelFace(l.label * 0.8)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
	}
	for pos := range m.Digits() {
		v := m.Position(pos)
		on := m.Control(pos)&1 != 0
		ox, oy := l.origin(pos)
		for bit := range 7 {
			dc.SetColor(unlit)
			if on && v&(1<<bit) != 0 {
				dc.SetColor(lit)
			}
			x, y, w, h := l.segment(bit)
			dc.DrawRectangle(ox+x, oy+y, w, h)
			dc.Fill()
		}
		dc.SetColor(unlit)
		if on && v&0x80 != 0 {
			dc.SetColor(lit)
		}
		x, y, radius := l.dot()
		dc.DrawCircle(ox+x, oy+y, radius)
		dc.Fill()

		if opts.Labels {
			dc.SetColor(unlit)
			dc.DrawStringAnchored(strconv.Itoa(pos), ox+l.w/2, oy+l.h+l.margin/2+l.label/2, 0.5, 0.5)
		}
	}
	return dc.Image(), nil
}

// EncodePNG renders m and writes it to w as PNG.
func EncodePNG(w io.Writer, m Mirror, opts *Opts) error {
	img, err := Render(m, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}
