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

// Package pixels describes image data as it arrives from an acquisition
// device or a file: a packed byte slice with a channel layout and an element
// type. The Source type wraps the data together with an identity token that
// changes whenever the content changes, which is what the texture cache keys
// on.
package pixels

import "fmt"

// Layout describes the channel arrangement of packed pixel data.
type Layout int

// List of valid Layout values.
const (
	Gray Layout = iota
	GrayAlpha
	RGB
	RGBA
)

// Channels returns the number of channels per pixel for the layout.
func (l Layout) Channels() int {
	switch l {
	case Gray:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	case RGBA:
		return 4
	}
	panic(fmt.Sprintf("unknown pixel layout (%d)", int(l)))
}

func (l Layout) String() string {
	switch l {
	case Gray:
		return "G"
	case GrayAlpha:
		return "Ga"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	}
	panic(fmt.Sprintf("unknown pixel layout (%d)", int(l)))
}

// ElemType describes the storage type of a single channel element.
type ElemType int

// List of valid ElemType values.
const (
	U8 ElemType = iota
	U16
	F32
)

// Bytes returns the storage size of a single element.
func (e ElemType) Bytes() int {
	switch e {
	case U8:
		return 1
	case U16:
		return 2
	case F32:
		return 4
	}
	panic(fmt.Sprintf("unknown element type (%d)", int(e)))
}

// FullScale returns the value an element of this type takes at full
// intensity. Float data is taken as already being normalised.
func (e ElemType) FullScale() float32 {
	switch e {
	case U8:
		return 255
	case U16:
		return 65535
	case F32:
		return 1
	}
	panic(fmt.Sprintf("unknown element type (%d)", int(e)))
}

func (e ElemType) String() string {
	switch e {
	case U8:
		return "uint8"
	case U16:
		return "uint16"
	case F32:
		return "float32"
	}
	panic(fmt.Sprintf("unknown element type (%d)", int(e)))
}
