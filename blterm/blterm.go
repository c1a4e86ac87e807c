// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package blterm emulates a backlight at the terminal (stdout) using ANSI
// color codes.
//
// Useful while you are waiting for your backlit panel to come by mail.
package blterm

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// X is the width of the rendered bar in terminal cells.
	X int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a backlight emulator that renders the intensity as a bar of
// shaded blocks on the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits local testing of brightness ramps and fades.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Dev{
		w:       colorable.NewColorableStdout(),
		l:       opts.X,
		palette: *p,
	}
}

func (d *Dev) String() string {
	return "BLTerm"
}

// Halt implements conn.Resource.
//
// It clears the bar so the terminal is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Backlight implements display.DisplayBacklight. It redraws the bar in
// place at the given intensity.
func (d *Dev) Backlight(intensity display.Intensity) error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	v := uint8(intensity)
	c := color.NRGBA{v, v, v, 255}
	for i := 0; i < d.l; i++ {
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.DisplayBacklight = &Dev{}
var _ fmt.Stringer = &Dev{}
