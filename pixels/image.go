// This file is part of Lumeview.
//
// Lumeview is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lumeview is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lumeview.  If not, see <https://www.gnu.org/licenses/>.

package pixels

import (
	"encoding/binary"
	"image"

	"golang.org/x/image/draw"

	"github.com/lumeview/lumeview/curated"
)

// FromImage converts a decoded Go image into a Source. Grayscale images keep
// their grayscale layout (and 16bit depth in the case of image.Gray16),
// everything else is converted to 8bit RGBA.
func FromImage(img image.Image) (*Source, error) {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	switch img := img.(type) {
	case *image.Gray:
		data := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(data[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
		}
		return NewSource(data, w, h, Gray, U8)

	case *image.Gray16:
		// image.Gray16 stores big-endian samples. pixel data is kept in
		// native order for transfer to the GPU
		data := make([]byte, w*h*2)
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*2]
			for x := 0; x < w; x++ {
				v := uint16(row[x*2])<<8 | uint16(row[x*2+1])
				binary.LittleEndian.PutUint16(data[(y*w+x)*2:], v)
			}
		}
		return NewSource(data, w, h, Gray, U16)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return NewSource(rgba.Pix, w, h, RGBA, U8)
}

// Scale resamples an 8bit RGBA Source to the new dimensions using bilinear
// interpolation. Useful for thumbnails. Sources with other layouts or element
// types are not supported.
func Scale(src *Source, width int, height int) (*Source, error) {
	if src.Layout() != RGBA || src.Elem() != U8 {
		return nil, curated.Errorf(DataError, "scale requires 8bit rgba data")
	}

	in := &image.RGBA{
		Pix:    src.Data(),
		Stride: src.Width() * 4,
		Rect:   image.Rect(0, 0, src.Width(), src.Height()),
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), in, in.Bounds(), draw.Src, nil)

	return NewSource(out.Pix, width, height, RGBA, U8)
}
