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

import "github.com/lumeview/lumeview/prefs"

// Preferences for the painter.
type Preferences struct {
	// whether pixel transfers go through the background upload worker.
	// exists because background context sharing is unreliable on some
	// drivers; switching it off uses the foreground path inside the paint
	AsyncUpload prefs.Bool
}

// NewPreferences is the preferred method of initialisation of the
// Preferences type.
func NewPreferences() *Preferences {
	p := &Preferences{}
	_ = p.AsyncUpload.Set(true)
	return p
}
