//go:build rp2040

package main

import (
	"fmt"

	"machine"

	"github.com/FastLED/clockless/core"
)

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		// Already configured, this is OK
		return nil
	}

	machinePin, err := d.pinNumberToMachinePin(pin)
	if err != nil {
		return err
	}
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = machinePin
	return nil
}

// ConfigureInput configures a pin as a digital input
func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}

	machinePin, err := d.pinNumberToMachinePin(pin)
	if err != nil {
		return err
	}
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInput})
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets an output pin high or low
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return fmt.Errorf("gpio %d not configured", pin)
	}
	machinePin.Set(value)
	return nil
}

// GetPin reads the current pin state
func (d *RPGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false, fmt.Errorf("gpio %d not configured", pin)
	}
	return machinePin.Get(), nil
}

// pinNumberToMachinePin maps a logical pin to a machine.Pin
// RP2040 has GPIO0-GPIO29
func (d *RPGPIODriver) pinNumberToMachinePin(pin core.GPIOPin) (machine.Pin, error) {
	if pin > 29 {
		return machine.NoPin, fmt.Errorf("gpio %d out of range for RP2040", pin)
	}
	return machine.Pin(pin), nil
}
