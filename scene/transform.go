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

// Transform places an image in a view: the image's top-left corner sits at
// (PanX, PanY) in view pixels and one image pixel covers Zoom view pixels.
type Transform struct {
	Zoom float32
	PanX float32
	PanY float32
}

// Identity returns the transform that draws the image one-to-one at the
// view's top-left corner.
func Identity() Transform {
	return Transform{Zoom: 1}
}

// FragToTex returns the matrix taking a fragment coordinate (x, y, 1), with y
// measured from the top of the viewport, to texture coordinates. Column-major
// order, ready for the mat3 uniform.
func FragToTex(tr Transform, imageWidth int, imageHeight int) [9]float32 {
	zoom := tr.Zoom
	if zoom == 0 {
		zoom = 1
	}

	sx := 1 / (zoom * float32(imageWidth))
	sy := 1 / (zoom * float32(imageHeight))

	return [9]float32{
		sx, 0, 0,
		0, sy, 0,
		-tr.PanX * sx, -tr.PanY * sy, 1,
	}
}
