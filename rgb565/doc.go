// Package rgb565 provides the 16-bit 5-6-5 color format used by the ILI9341 display controller.
//
// The ILI9341 is configured for 16 bits per pixel. Each pixel travels over the wire as two bytes,
// most significant byte first:
//
//	bit:   15..11  10..5   4..0
//	       red     green   blue
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0       1
//	Colors: Red     Cyan
//	Bytes:  F8 00   07 FF
//
// This package provides:
//
// - Color: a packed 5-6-5 value implementing color.Color
// - Model: a color model converting standard Go colors to Color
// - Image: an image.Image whose Pix slice is already in wire order
//
// Example usage:
//
//	// Create a 320x240 frame
//	img := rgb565.NewImage(image.Rect(0, 0, 320, 240))
//
//	// Paint a pixel
//	img.SetRGB565(10, 20, rgb565.Yellow)
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(rgb565.Blue), image.Point{}, draw.Src)
package rgb565
