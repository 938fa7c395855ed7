//go:build tinygo && !stockpico

package main

import "github.com/ece362/ili9341/monitor"

var channels = []monitor.Channel{
	{Name: "SENS1", Pin: 26, ADC: 0},
	{Name: "SENS2", Pin: 27, ADC: 1},
	{Name: "SENS3", Pin: 28, ADC: 2},
	{Name: "SENS4", Pin: 29, ADC: 3},
}
