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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package: it takes a formatting pattern and
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created by
// Errorf() with a specific pattern. The Has() function is similar but checks
// whether the pattern occurs anywhere in the error chain. Sentinel patterns
// should be stored as const strings, suitably named and commented; the GPU
// error taxonomy in the gltex and viewcache packages is expressed this way.
//
// The Error() function implementation for curated errors normalises the error
// chain so that it does not contain duplicate adjacent parts. For the
// purposes of this package a chain is composed of parts separated by the
// sub-string ': '.
package curated
