// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rt8555 controls a Richtek RT8555 LED backlight driver over I²C.
//
// The RT8555 drives white LED strings for LCD panel backlights. Brightness
// is a 10 bit value split across two registers, and the chip supports a
// PWM only or a mixed PWM/analog dimming scheme. An optional enable line
// gates power to the chip; when one is wired, the driver powers the chip
// up on the first nonzero brightness and powers it back down after
// brightness is set to zero.
//
// # Datasheet
//
// https://www.richtek.com/assets/product_file/RT8555/DS8555-00.pdf
package rt8555
