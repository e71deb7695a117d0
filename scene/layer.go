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

package scene

import (
	"sync/atomic"

	"github.com/lumeview/lumeview/pixels"
)

// drawable ids are unique for the lifetime of the process. a layer takes two,
// one for its image and one for its overlay.
var drawableSrc uint64

// Layer is one image in a layer stack, with its display parameters. The
// Source may be replaced or refreshed between paints; the painter notices
// through the source's identity token.
type Layer struct {
	id        uint64
	overlayID uint64

	// the image. a nil Source releases the layer's texture on the next
	// paint
	Source *pixels.Source

	// an optional second image blended over the first, sampled on texture
	// unit 1
	Overlay *pixels.Source

	Visible bool

	// placement of the image and the overlay in the view
	Transform        Transform
	OverlayTransform Transform

	// display parameters, in the units of the source's element type.
	// grayscale layouts use index 0 only
	Gamma [3]float32
	Min   [3]float32
	Max   [3]float32

	// when false the image is shown over the element type's full range
	RescaleEnabled bool
}

// NewLayer is the preferred method of initialisation of the Layer type.
func NewLayer() *Layer {
	return &Layer{
		id:               atomic.AddUint64(&drawableSrc, 1),
		overlayID:        atomic.AddUint64(&drawableSrc, 1),
		Visible:          true,
		Transform:        Identity(),
		OverlayTransform: Identity(),
		Gamma:            [3]float32{1, 1, 1},
	}
}

// ID of the layer's image drawable.
func (l *Layer) ID() uint64 {
	return l.id
}

// rescale parameters normalised to the [0,1] intensity range the fragment
// shader samples in. with rescaling disabled the element type's full range is
// used. a zero range clamps to black/white around the threshold.
func (l *Layer) rescale(elem pixels.ElemType) ([3]float32, [3]float32) {
	var min [3]float32
	rng := [3]float32{1, 1, 1}

	if l.RescaleEnabled {
		scale := elem.FullScale()
		for i := 0; i < 3; i++ {
			min[i] = l.Min[i] / scale
			rng[i] = (l.Max[i] - l.Min[i]) / scale
			if rng[i] <= 0 {
				min[i] = l.Min[i] / scale
				rng[i] = 1e-30
			}
		}
	}

	return min, rng
}

// Stack is an ordered list of layers, painted base-first.
type Stack struct {
	layers []*Layer
}

// Add a layer to the top of the stack.
func (s *Stack) Add(l *Layer) {
	s.layers = append(s.layers, l)
}

// Remove a layer from the stack. The layer's GPU resources are released on
// the next paint of the stack only if the layer's Source is set to nil first;
// otherwise they live until the view is destroyed.
func (s *Stack) Remove(l *Layer) {
	for i, e := range s.layers {
		if e == l {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return
		}
	}
}

// Layers returns the stack in paint order.
func (s *Stack) Layers() []*Layer {
	return s.layers
}
