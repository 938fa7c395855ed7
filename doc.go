// Package ili9341 controls an ILI9341 TFT display via SPI.
//
// The ILI9341 is a 240×320 RGB colour LCD controller. This driver programs it
// for 16-bit RGB565 pixels in landscape orientation, giving a 320×240 surface.
// It implements the display.Drawer interface from periph.io and provides
// rectangle fills and 8×8 bitmap text on top of it.
//
// # Display Characteristics
//
// - 16-bit RGB565 colour (65536 colours), sent big-endian over the wire
// - 320×240 landscape drawing surface, smaller panels configurable
// - Address windows: any rectangle can be filled by one pixel stream
// - Display inversion
// - Panel offsets for modules whose glass is not aligned with controller RAM
//
// # Hardware Connection
//
// Connect the ILI9341 module to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCK         → SPI Clock (SCLK)
//	SDI/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RESET       → Optional: GPIO for hardware reset
//	LED         → 3.3V (backlight)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//
//		"github.com/ece362/ili9341"
//		"github.com/ece362/ili9341/rgb565"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO25")
//
//		dev, _ := ili9341.NewSPI(spiBus, dcPin, nil)
//		defer dev.Halt()
//
//		dev.FillScreen(rgb565.Black)
//		dev.FillRect(0, 0, 320, 55, rgb565.Blue)
//		dev.DrawString(40, 10, "HELLO", rgb565.White, rgb565.Blue, 2)
//	}
//
// # Reset And Chip Select
//
// When Opts.RST is set the driver pulses it during initialization
// (high 50ms, low 50ms, high 120ms) before the software reset. When Opts.CS
// is set every command and every data block is bracketed by CS low and high;
// leave it nil if the SPI port toggles chip select on its own.
//
// # Drawing
//
// Every primitive first selects an address window and then streams exactly
// the pixels that fill it:
//
//	dev.DrawPixel(10, 10, rgb565.Red)             // 1×1 window
//	dev.FillRect(10, 10, 100, 20, rgb565.Green)   // one window, 2000 pixels
//	dev.DrawChar(10, 40, 'A', fg, bg, 3)          // 24×24 cell
//	dev.DrawString(10, 80, "RAW", fg, bg, 2)      // 16 pixel advance
//
// Pixels of DrawPixel, DrawChar and DrawString that fall outside the display
// are dropped. FillRect does not clip.
//
// Full frames can be written as raw pixel data with Write, and any image.Image
// can be drawn with Draw. After the first full-screen update Draw only
// transfers the bounding box of the pixels that changed:
//
//	img := rgb565.NewImage(dev.Bounds())
//	// ... draw into img ...
//	dev.Draw(dev.Bounds(), img, image.Point{})
//
// # TinyGo
//
// Displayer returns an adapter implementing tinygo.org/x/drivers.Displayer,
// so the device can be handed to TinyGo graphics packages.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/ILI9341.pdf
package ili9341
