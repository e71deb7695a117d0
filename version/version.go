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

// Package version records the version number of the project.
package version

import "runtime/debug"

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "Lumeview"

// if number is empty then the project was probably not built using the makefile.
var number string

// Version returns the version string for the project. If no version number
// was stamped at build time the module version from the build info is used.
// A value of "unreleased" means neither was available, which can happen when
// compiling/running with "go run .".
func Version() string {
	if number != "" {
		return number
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "unreleased"
}
