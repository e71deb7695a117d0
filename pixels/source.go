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
	"sync/atomic"

	"github.com/lumeview/lumeview/curated"
)

// sentinel error returned when data does not describe a valid image.
const DataError = "pixel data: %v"

// identity tokens are unique across all Source instances for the lifetime of
// the process. zero is reserved to mean "no content".
var identitySrc uint64

func nextIdentity() uint64 {
	return atomic.AddUint64(&identitySrc, 1)
}

// Source is a packed pixel buffer with an identity token. The token changes
// on every Set() and Refresh() so that consumers can tell whether content
// they have derived from the Source (a GPU texture for instance) is still
// current, without comparing pixel data.
//
// The pixel data itself is not synchronised. The owner of the Source must not
// mutate the data while a consumer is reading it; Refresh() is to be called
// after mutation is complete.
type Source struct {
	data   []byte
	width  int
	height int
	layout Layout
	elem   ElemType

	// accessed with sync/atomic
	identity uint64
}

// NewSource is the preferred method of initialisation of the Source type.
// The data length must agree exactly with the stated dimensions, layout and
// element type.
func NewSource(data []byte, width int, height int, layout Layout, elem ElemType) (*Source, error) {
	src := &Source{}
	err := src.Set(data, width, height, layout, elem)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Set replaces the content of the Source and issues a new identity token.
func (src *Source) Set(data []byte, width int, height int, layout Layout, elem ElemType) error {
	if width <= 0 || height <= 0 {
		return curated.Errorf(DataError, "dimensions must be positive")
	}

	expected := width * height * layout.Channels() * elem.Bytes()
	if len(data) != expected {
		return curated.Errorf(DataError,
			curated.Errorf("length %d does not match %dx%d %v/%v (expected %d)",
				len(data), width, height, layout, elem, expected))
	}

	src.data = data
	src.width = width
	src.height = height
	src.layout = layout
	src.elem = elem
	atomic.StoreUint64(&src.identity, nextIdentity())

	return nil
}

// Refresh issues a new identity token without replacing the content. To be
// called after the pixel data has been mutated in place.
func (src *Source) Refresh() {
	atomic.StoreUint64(&src.identity, nextIdentity())
}

// Identity returns the current identity token.
func (src *Source) Identity() uint64 {
	return atomic.LoadUint64(&src.identity)
}

// Data returns the packed pixel data.
func (src *Source) Data() []byte {
	return src.data
}

// Width of the image in pixels.
func (src *Source) Width() int {
	return src.width
}

// Height of the image in pixels.
func (src *Source) Height() int {
	return src.height
}

// Layout of the pixel data.
func (src *Source) Layout() Layout {
	return src.layout
}

// Elem is the element type of the pixel data.
func (src *Source) Elem() ElemType {
	return src.elem
}
