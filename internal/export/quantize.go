package export

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// paletteSize is the largest palette an indexed PNG can carry.
const paletteSize = 256

// Paletted reduces img to at most 256 colours with a median cut palette.
func Paletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	q := quantize.MedianCutQuantizer{}
	palette := q.Quantize(make(color.Palette, 0, paletteSize), img)

	out := image.NewPaletted(b, palette)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
