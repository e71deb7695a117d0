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

package histogram_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/lumeview/lumeview/histogram"
	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/test"
)

func TestGrayU8(t *testing.T) {
	data := []byte{0, 0, 128, 255}
	src, err := pixels.NewSource(data, 2, 2, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	h := histogram.Compute(src)
	test.Equate(t, len(h.Bins), 1)
	test.Equate(t, h.Bins[0][0], 2)
	test.Equate(t, h.Bins[0][128], 1)
	test.Equate(t, h.Bins[0][255], 1)
	test.Equate(t, h.Peak, 2)
	test.Equate(t, h.Identity, src.Identity())
}

func TestGrayU16BinsByHighByte(t *testing.T) {
	data := make([]byte, 3*2)
	binary.LittleEndian.PutUint16(data[0:], 0x0000)
	binary.LittleEndian.PutUint16(data[2:], 0x01ff) // bin 1
	binary.LittleEndian.PutUint16(data[4:], 0xffff) // bin 255
	src, err := pixels.NewSource(data, 3, 1, pixels.Gray, pixels.U16)
	test.ExpectedSuccess(t, err)

	h := histogram.Compute(src)
	test.Equate(t, h.Bins[0][0], 1)
	test.Equate(t, h.Bins[0][1], 1)
	test.Equate(t, h.Bins[0][255], 1)
}

func TestRGBChannels(t *testing.T) {
	// one pixel: r=10, g=20, b=30
	data := []byte{10, 20, 30}
	src, err := pixels.NewSource(data, 1, 1, pixels.RGB, pixels.U8)
	test.ExpectedSuccess(t, err)

	h := histogram.Compute(src)
	test.Equate(t, len(h.Bins), 3)
	test.Equate(t, h.Bins[0][10], 1)
	test.Equate(t, h.Bins[1][20], 1)
	test.Equate(t, h.Bins[2][30], 1)
}

func TestFloatClamping(t *testing.T) {
	data := make([]byte, 4*4)
	put := func(i int, v float32) {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	put(0, -0.5) // clamps to bin 0
	put(1, 0.5)  // bin 128
	put(2, 1.0)  // clamps to bin 255
	put(3, 2.0)  // clamps to bin 255

	src, err := pixels.NewSource(data, 4, 1, pixels.Gray, pixels.F32)
	test.ExpectedSuccess(t, err)

	h := histogram.Compute(src)
	test.Equate(t, h.Bins[0][0], 1)
	test.Equate(t, h.Bins[0][128], 1)
	test.Equate(t, h.Bins[0][255], 2)
}

func TestPlotNormalisation(t *testing.T) {
	data := []byte{0, 0, 0, 255}
	src, err := pixels.NewSource(data, 2, 2, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	h := histogram.Compute(src)
	p := h.Plot(0)
	test.Equate(t, len(p), histogram.NumBins)
	test.Equate(t, p[0], float32(1))
	test.Equate(t, p[255], float32(1)/3)

	// out of range channels plot flat
	test.Equate(t, h.Plot(5)[0], float32(0))
}
