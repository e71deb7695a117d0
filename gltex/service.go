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

package gltex

import (
	"sync"

	"github.com/lumeview/lumeview/gpu"
)

// only allowing one upload scheduler for the entire application. tests
// construct private Scheduler instances instead of going through Central.
var central *Scheduler
var centralCrit sync.Mutex

// Central returns the process-wide Scheduler, creating and starting it on
// first use. Must be called on the thread where the primary context is
// current. Calling Central again once the scheduler is running returns the
// same instance.
func Central(drv gpu.Driver, primary gpu.Context) (*Scheduler, error) {
	centralCrit.Lock()
	defer centralCrit.Unlock()

	if central == nil {
		central = NewScheduler(drv)
	}

	err := central.Start(primary)
	if err != nil {
		return nil, err
	}

	return central, nil
}

// StopCentral winds down the process-wide Scheduler, if one was ever created.
// The single application-shutdown teardown path. Queued uploads are
// discarded; every texture the scheduler knows about is destroyed under the
// worker's namespace-sharing context.
func StopCentral() {
	centralCrit.Lock()
	sch := central
	centralCrit.Unlock()

	if sch != nil {
		sch.Stop(false)
	}
}
