// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rt8555

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// MaxBrightness is the hardware ceiling of the 10 bit brightness range.
const MaxBrightness uint16 = 1023

const (
	// Register offsets from the datasheet.
	_CFG0          byte = 0x00
	_CFG1          byte = 0x01
	_CURRENT_LIMIT byte = 0x02
	_ILED1_LSB     byte = 0x04
	_ILED1_MSB     byte = 0x05
	_CFG8          byte = 0x08

	// CFG0 fields.
	_MIXED_DIM_MASK   byte = 0x01 // set: mixed PWM/analog dimming, clear: PWM only
	_I2C_SOURCE_MASK  byte = 0x02 // set: brightness comes from the I²C registers, clear: PWM pin
	_CHANGE_DUTY_MASK byte = 0x0c
	_MIX_CLOCK_MASK   byte = 0x80 // set: internal 26kHz mixed mode dimming clock

	_CHANGE_DUTY_SHIFT = 2

	// CFG1 fields.
	_EN_10BIT_MASK byte = 0x80

	// CFG8 fields.
	_HEADROOM_MASK  byte = 0x0c
	_HEADROOM_SHIFT      = 2

	// Valid bits of the ILED1 MSB register.
	_ILED1_MSB_MASK byte = 0x03
)

// powerOnDelay is how long the chip needs after the enable line rises
// before it acknowledges register transactions.
const powerOnDelay = 10 * time.Millisecond

// Opts holds the configuration written to the chip by Enable.
//
// Out of range values are clamped to the field's valid range by New, never
// rejected.
type Opts struct {
	// MaxBrightness caps the brightness scale. At most 1023.
	MaxBrightness uint16
	// DefaultBrightness is the level a host should apply at attach time. At
	// most MaxBrightness. The driver carries it but does not apply it
	// itself.
	DefaultBrightness uint16
	// PWMDimming selects PWM only dimming instead of the mixed PWM/analog
	// scheme.
	PWMDimming bool
	// ChangeDuty tunes mixed mode duty cycle transitions, 0 to 3. Only
	// meaningful in mixed mode but written regardless.
	ChangeDuty uint8
	// Headroom tunes the LED driver voltage headroom, 0 to 3.
	Headroom uint8
	// CurrentLimit is the raw value of the ILED current limit register.
	CurrentLimit uint8
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	MaxBrightness:     MaxBrightness,
	DefaultBrightness: MaxBrightness,
	PWMDimming:        false,
	ChangeDuty:        3,
	Headroom:          0,
	CurrentLimit:      0x92,
}

// Dev represents an RT8555 backlight driver.
type Dev struct {
	d      *i2c.Dev
	enable gpio.PinIO
	opts   Opts

	mu sync.Mutex
	// configured is true once the chip has been taken through the Enable
	// sequence in the current power cycle.
	configured bool
}

// New returns an RT8555 ready for use.
//
// enable is the optional line gating power to the chip; pass nil if the
// chip is hard wired to its supply. When nil the chip is always powered,
// so call Enable once before the first SetBrightness. When present the
// line is driven active immediately, matching the hardware default at
// acquisition, but the configuration sequence only runs on the first
// nonzero SetBrightness (or an explicit Enable call).
//
// opts may be nil, in which case DefaultOpts is used. Out of range option
// values are clamped.
func New(bus i2c.Bus, addr uint16, enable gpio.PinIO, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	o.MaxBrightness = min(o.MaxBrightness, MaxBrightness)
	o.DefaultBrightness = min(o.DefaultBrightness, o.MaxBrightness)
	o.ChangeDuty = min(o.ChangeDuty, 3)
	o.Headroom = min(o.Headroom, 3)

	dev := &Dev{
		d:      &i2c.Dev{Bus: bus, Addr: addr},
		enable: enable,
		opts:   o,
	}
	if enable != nil {
		if err := enable.Out(gpio.High); err != nil {
			return nil, wrap(err)
		}
	}
	return dev, nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("rt8555: %w", err)
}

// Enable powers the chip up and writes the full operating configuration.
//
// The sequence is idempotent; rerunning it after a partial failure
// completes the configuration. The first bus error aborts the remaining
// steps and is returned, leaving the chip partially configured.
func (dev *Dev) Enable() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.enableLocked()
}

func (dev *Dev) enableLocked() error {
	if dev.enable != nil {
		if err := dev.enable.Out(gpio.High); err != nil {
			return wrap(err)
		}
		// The chip ignores register transactions until its supply settles.
		time.Sleep(powerOnDelay)
	}
	if err := dev.updateBits(_CFG1, _EN_10BIT_MASK, _EN_10BIT_MASK); err != nil {
		return err
	}
	if err := dev.updateBits(_CFG0, _I2C_SOURCE_MASK, _I2C_SOURCE_MASK); err != nil {
		return err
	}
	dim := _MIXED_DIM_MASK
	if dev.opts.PWMDimming {
		dim = 0
	}
	if err := dev.updateBits(_CFG0, _MIXED_DIM_MASK, dim); err != nil {
		return err
	}
	if err := dev.updateBits(_CFG0, _CHANGE_DUTY_MASK, dev.opts.ChangeDuty<<_CHANGE_DUTY_SHIFT); err != nil {
		return err
	}
	if err := dev.updateBits(_CFG0, _MIX_CLOCK_MASK, _MIX_CLOCK_MASK); err != nil {
		return err
	}
	if err := dev.updateBits(_CFG8, _HEADROOM_MASK, dev.opts.Headroom<<_HEADROOM_SHIFT); err != nil {
		return err
	}
	if err := dev.d.Tx([]byte{_CURRENT_LIMIT, dev.opts.CurrentLimit}, nil); err != nil {
		return wrap(err)
	}
	dev.configured = true
	return nil
}

// updateBits rewrites the masked bits of a configuration register,
// preserving the others. The write is skipped when the register already
// holds the wanted value.
func (dev *Dev) updateBits(reg, mask, value byte) error {
	var buf [1]byte
	if err := dev.d.Tx([]byte{reg}, buf[:]); err != nil {
		return wrap(err)
	}
	next := (buf[0] &^ mask) | (value & mask)
	if next == buf[0] {
		return nil
	}
	return wrap(dev.d.Tx([]byte{reg, next}, nil))
}

// SetBrightness writes a 10 bit brightness level.
//
// level must already be within [0, MaxBrightness]; values above spill into
// reserved MSB bits. If an enable line is wired and the chip has not been
// configured in this power cycle, a nonzero level runs the full Enable
// sequence first. Setting 0 drives the enable line inactive after the
// brightness registers latch the zero, so the next power up does not
// flash the previous duty cycle.
func (dev *Dev) SetBrightness(level uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if level > 0 && dev.enable != nil && !dev.configured {
		if err := dev.enableLocked(); err != nil {
			return err
		}
	}
	// LSB before MSB; the chip latches the new duty cycle on the MSB write.
	if err := dev.d.Tx([]byte{_ILED1_LSB, byte(level), byte(level >> 8)}, nil); err != nil {
		return wrap(err)
	}
	if level == 0 && dev.enable != nil {
		if err := dev.enable.Out(gpio.Low); err != nil {
			return wrap(err)
		}
		// Power is gone, so the configuration is too.
		dev.configured = false
	}
	return nil
}

// Brightness reads back the current 10 bit brightness level.
//
// When the chip is powered down it returns 0 without touching the bus;
// there is no point powering the chip up just to read it.
func (dev *Dev) Brightness() (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if !dev.isEnabled() {
		return 0, nil
	}
	var buf [2]byte
	if err := dev.d.Tx([]byte{_ILED1_LSB}, buf[:]); err != nil {
		return 0, wrap(err)
	}
	return uint16(buf[0]) | uint16(buf[1]&_ILED1_MSB_MASK)<<8, nil
}

// IsEnabled reports the last driven value of the enable line, or true when
// no enable line is wired since the chip then has no way to power down.
// It never touches the bus.
func (dev *Dev) IsEnabled() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.isEnabled()
}

func (dev *Dev) isEnabled() bool {
	if dev.enable == nil {
		return true
	}
	return dev.enable.Read() == gpio.High
}

// MaxBrightness returns the configured brightness ceiling.
func (dev *Dev) MaxBrightness() uint16 {
	return dev.opts.MaxBrightness
}

// DefaultBrightness returns the level a host should apply at attach time.
func (dev *Dev) DefaultBrightness() uint16 {
	return dev.opts.DefaultBrightness
}

// Backlight implements display.DisplayBacklight, scaling the 8 bit
// intensity onto the configured brightness range.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.SetBrightness(uint16(uint32(intensity) * uint32(dev.opts.MaxBrightness) / 255))
}

// Halt turns the backlight off and, if an enable line is wired, powers the
// chip down. Used at detach so the panel is left dark regardless of what
// was last set. Implements conn.Resource.
func (dev *Dev) Halt() error {
	return dev.SetBrightness(0)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("RT8555::%s", dev.d)
}

var _ conn.Resource = &Dev{}
var _ display.DisplayBacklight = &Dev{}
