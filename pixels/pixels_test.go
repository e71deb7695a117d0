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

package pixels_test

import (
	"image"
	"testing"

	"github.com/lumeview/lumeview/curated"
	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/test"
)

func TestSourceValidation(t *testing.T) {
	// correct length for 4x3 single channel uint8
	src, err := pixels.NewSource(make([]byte, 12), 4, 3, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)
	test.Equate(t, src.Width(), 4)
	test.Equate(t, src.Height(), 3)

	// short buffer
	_, err = pixels.NewSource(make([]byte, 11), 4, 3, pixels.Gray, pixels.U8)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, pixels.DataError))

	// element and channel sizes participate in the length check
	_, err = pixels.NewSource(make([]byte, 4*3*3*2), 4, 3, pixels.RGB, pixels.U16)
	test.ExpectedSuccess(t, err)

	// zero dimensions
	_, err = pixels.NewSource([]byte{}, 0, 0, pixels.Gray, pixels.U8)
	test.ExpectedFailure(t, err)
}

func TestIdentityTokens(t *testing.T) {
	a, err := pixels.NewSource(make([]byte, 4), 2, 2, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)
	b, err := pixels.NewSource(make([]byte, 4), 2, 2, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	// tokens are never zero and never shared between sources
	if a.Identity() == 0 || b.Identity() == 0 {
		t.Fatalf("identity token of zero issued to a live source")
	}
	if a.Identity() == b.Identity() {
		t.Fatalf("identity token shared between two sources")
	}

	// a stable source keeps its token
	test.Equate(t, a.Identity(), a.Identity())

	// Refresh() issues a new token
	before := a.Identity()
	a.Refresh()
	if a.Identity() == before {
		t.Errorf("identity token unchanged by Refresh()")
	}

	// Set() issues a new token
	before = a.Identity()
	err = a.Set(make([]byte, 16), 2, 2, pixels.RGBA, pixels.U8)
	test.ExpectedSuccess(t, err)
	if a.Identity() == before {
		t.Errorf("identity token unchanged by Set()")
	}

	// a failed Set() leaves content and token alone
	before = a.Identity()
	err = a.Set(make([]byte, 3), 2, 2, pixels.RGBA, pixels.U8)
	test.ExpectedFailure(t, err)
	test.Equate(t, a.Identity(), before)
	test.Equate(t, a.Layout() == pixels.RGBA, true)
}

func TestFullScale(t *testing.T) {
	test.Equate(t, pixels.U8.FullScale(), float32(255))
	test.Equate(t, pixels.U16.FullScale(), float32(65535))
	test.Equate(t, pixels.F32.FullScale(), float32(1))

	test.Equate(t, pixels.Gray.Channels(), 1)
	test.Equate(t, pixels.GrayAlpha.Channels(), 2)
	test.Equate(t, pixels.RGB.Channels(), 3)
	test.Equate(t, pixels.RGBA.Channels(), 4)
}

func TestFromImage(t *testing.T) {
	// grayscale images keep their layout
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.Pix[4] = 0x80
	src, err := pixels.FromImage(gray)
	test.ExpectedSuccess(t, err)
	test.Equate(t, src.Layout() == pixels.Gray, true)
	test.Equate(t, src.Elem() == pixels.U8, true)
	test.Equate(t, int(src.Data()[4]), 0x80)

	// 16bit grayscale keeps its depth. samples arrive big-endian from the
	// image package and are stored native
	gray16 := image.NewGray16(image.Rect(0, 0, 2, 1))
	gray16.Pix[0] = 0x12
	gray16.Pix[1] = 0x34
	src, err = pixels.FromImage(gray16)
	test.ExpectedSuccess(t, err)
	test.Equate(t, src.Elem() == pixels.U16, true)
	test.Equate(t, int(src.Data()[0]), 0x34)
	test.Equate(t, int(src.Data()[1]), 0x12)

	// colour images convert to 8bit RGBA
	nrgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src, err = pixels.FromImage(nrgba)
	test.ExpectedSuccess(t, err)
	test.Equate(t, src.Layout() == pixels.RGBA, true)
	test.Equate(t, len(src.Data()), 16)
}

func TestScale(t *testing.T) {
	src, err := pixels.NewSource(make([]byte, 8*8*4), 8, 8, pixels.RGBA, pixels.U8)
	test.ExpectedSuccess(t, err)

	thumb, err := pixels.Scale(src, 4, 4)
	test.ExpectedSuccess(t, err)
	test.Equate(t, thumb.Width(), 4)
	test.Equate(t, thumb.Height(), 4)

	// only 8bit RGBA can be scaled
	graySrc, err := pixels.NewSource(make([]byte, 4), 2, 2, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)
	_, err = pixels.Scale(graySrc, 1, 1)
	test.ExpectedFailure(t, err)
}
