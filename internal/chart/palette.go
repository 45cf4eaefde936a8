package chart

import "image/color"

// qualitative is a 20-color palette for nominal categories, ordered so
// neighbouring entries stay visually distinct.
var qualitative = []color.NRGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xae, G: 0xc7, B: 0xe8, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0xff, G: 0xbb, B: 0x78, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0x98, G: 0xdf, B: 0x8a, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0xff, G: 0x98, B: 0x96, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0xc5, G: 0xb0, B: 0xd5, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xc4, G: 0x9c, B: 0x94, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0xf7, G: 0xb6, B: 0xd2, A: 0xff},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	{R: 0xc7, G: 0xc7, B: 0xc7, A: 0xff},
	{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
	{R: 0xdb, G: 0xdb, B: 0x8d, A: 0xff},
	{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
	{R: 0x9e, G: 0xda, B: 0xe5, A: 0xff},
}

// CategoryColor returns the palette color for the i-th category, cycling
// when there are more categories than palette entries.
func CategoryColor(i int) color.NRGBA {
	if i < 0 {
		i = 0
	}
	return qualitative[i%len(qualitative)]
}

// withAlpha returns c with the given alpha channel.
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
