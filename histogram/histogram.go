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

// Package histogram bins the intensities of a pixel source, per channel. The
// result drives the gamma and min/max controls of the viewer UI.
package histogram

import (
	"encoding/binary"
	"math"

	"github.com/lumeview/lumeview/pixels"
)

// NumBins in each channel of a Histogram.
const NumBins = 256

// Histogram of a pixel source. One row of bins per channel, in the channel
// order of the source's layout.
type Histogram struct {
	Bins [][NumBins]uint32

	// the largest single bin count across all channels. zero for an
	// empty source
	Peak uint32

	// identity of the source the histogram was computed from
	Identity uint64
}

// bin an element value. integer types bin by their high bits; float data is
// taken as normalised to [0,1] and clamped.
func bin(data []byte, elem pixels.ElemType) int {
	switch elem {
	case pixels.U8:
		return int(data[0])
	case pixels.U16:
		return int(binary.LittleEndian.Uint16(data) >> 8)
	case pixels.F32:
		v := math.Float32frombits(binary.LittleEndian.Uint32(data))
		if v <= 0 || v != v {
			return 0
		}
		if v >= 1 {
			return NumBins - 1
		}
		return int(v * NumBins)
	}
	return 0
}

// Compute the histogram of a pixel source.
func Compute(src *pixels.Source) *Histogram {
	channels := src.Layout().Channels()
	stride := src.Elem().Bytes()

	h := &Histogram{
		Bins:     make([][NumBins]uint32, channels),
		Identity: src.Identity(),
	}

	data := src.Data()
	pixelStride := channels * stride
	for off := 0; off+pixelStride <= len(data); off += pixelStride {
		for c := 0; c < channels; c++ {
			b := bin(data[off+c*stride:], src.Elem())
			h.Bins[c][b]++
			if h.Bins[c][b] > h.Peak {
				h.Peak = h.Bins[c][b]
			}
		}
	}

	return h
}

// Plot returns a channel's bins normalised to [0,1] by the histogram peak,
// in the form the UI plotting widgets want.
func (h *Histogram) Plot(channel int) []float32 {
	p := make([]float32, NumBins)
	if channel < 0 || channel >= len(h.Bins) || h.Peak == 0 {
		return p
	}
	for i, v := range h.Bins[channel] {
		p[i] = float32(v) / float32(h.Peak)
	}
	return p
}
