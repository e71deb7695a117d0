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

package gpu

import (
	"fmt"

	"github.com/lumeview/lumeview/pixels"
)

// Format describes how pixel data is stored on the GPU and how it is
// transferred there. Texture storage is always allocated at 32bit float
// precision, whatever the element type of the incoming data. The driver
// converts during transfer. This means a texture allocation survives the
// element type of its source changing, as long as layout and dimensions are
// stable.
type Format struct {
	Layout pixels.Layout
	Elem   pixels.ElemType
}

// FormatFor returns the Format for a pixel source description.
func FormatFor(layout pixels.Layout, elem pixels.ElemType) Format {
	return Format{Layout: layout, Elem: elem}
}

// Storage returns the part of the format that determines texture storage.
// Storage is always 32bit float per channel, so only the layout matters; the
// element type affects transfer alone. Two formats with equal Storage()
// values can share a texture allocation.
func (f Format) Storage() pixels.Layout {
	return f.Layout
}

func (f Format) String() string {
	return fmt.Sprintf("%v/%v", f.Layout, f.Elem)
}
