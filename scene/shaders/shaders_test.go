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

package shaders_test

import (
	"strings"
	"testing"

	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/scene/shaders"
	"github.com/lumeview/lumeview/test"
)

func TestFragmentVariants(t *testing.T) {
	// grayscale rescales a single intensity
	frag := shaders.Fragment(pixels.Gray, 0, false)
	test.Equate(t, strings.Contains(frag, "uniform float gamma;"), true)
	test.Equate(t, strings.Contains(frag, "uniform float rescale_min;"), true)
	test.Equate(t, strings.Contains(frag, "overlay"), false)

	// colour layouts rescale per channel
	frag = shaders.Fragment(pixels.RGB, 0, false)
	test.Equate(t, strings.Contains(frag, "uniform vec3 gamma;"), true)

	// the alpha channel of GrayAlpha and RGBA survives rescaling
	frag = shaders.Fragment(pixels.GrayAlpha, 0, false)
	test.Equate(t, strings.Contains(frag, "s.g)"), true)
	frag = shaders.Fragment(pixels.RGBA, 0, false)
	test.Equate(t, strings.Contains(frag, "s.a)"), true)

	// no substitution markers survive assembly
	for _, layout := range []pixels.Layout{pixels.Gray, pixels.GrayAlpha, pixels.RGB, pixels.RGBA} {
		frag = shaders.Fragment(layout, 0, false)
		test.Equate(t, strings.Contains(frag, "%"), false)
	}
}

func TestFragmentOverlay(t *testing.T) {
	frag := shaders.Fragment(pixels.Gray, pixels.RGBA, true)
	test.Equate(t, strings.Contains(frag, "uniform sampler2D overlay_tex;"), true)
	test.Equate(t, strings.Contains(frag, "overlay_frag_to_tex"), true)
	test.Equate(t, strings.Contains(frag, "%"), false)

	// a grayscale overlay blends by its own intensity
	frag = shaders.Fragment(pixels.Gray, pixels.Gray, true)
	test.Equate(t, strings.Contains(frag, "vec4(o.r, o.r, o.r, o.r)"), true)
}
