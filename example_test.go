// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rt8555_test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/rt8555"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	// The enable line gating power to the chip. Pass nil instead if the
	// chip is hard wired to its supply.
	en := gpioreg.ByName("GPIO23")

	dev, err := rt8555.New(b, 0x31, en, &rt8555.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	// Leave the panel dark on the way out.
	defer dev.Halt()

	// The first nonzero level powers the chip up and configures it.
	if err := dev.SetBrightness(dev.DefaultBrightness()); err != nil {
		log.Fatal(err)
	}
	level, err := dev.Brightness()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("brightness=%d/%d\n", level, dev.MaxBrightness())
}
