//go:build tinygo && stockpico

package main

import "github.com/ece362/ili9341/monitor"

// GP29 reads VSYS/3 on a stock Pico.
var channels = []monitor.Channel{
	{Name: "SENS1", Pin: 26, ADC: 0},
	{Name: "SENS2", Pin: 27, ADC: 1},
	{Name: "SENS3", Pin: 28, ADC: 2},
}
