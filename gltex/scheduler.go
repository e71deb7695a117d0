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
	"runtime"
	"sync"

	"github.com/lumeview/lumeview/curated"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/logger"
	"github.com/lumeview/lumeview/pixels"
)

// State records the lifecycle position of a Scheduler.
type State int

// List of Scheduler states. A Scheduler only ever moves forward through
// these.
const (
	Starting State = iota
	Running
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// a queued transfer. the texture id, pixel data, dimensions and identity are
// snapshotted at enqueue time: a later Set() on the source cannot affect an
// upload already queued, and the worker never reads Texture fields that the
// render thread may be writing (Destroy, Ensure).
type task struct {
	tex      *Texture
	id       gpu.TextureID
	format   gpu.Format
	width    int
	height   int
	data     []byte
	identity uint64

	// closed by the worker when the task has been executed or discarded
	done chan struct{}
}

// Scheduler owns the single background upload worker. The worker thread has
// an offscreen context current for its whole life; the context shares the
// object namespace of the primary (render) context so textures uploaded on
// the worker are visible to the renderer.
//
// Upload() never blocks the caller. The queue is unbounded and strictly FIFO,
// which is what guarantees that two uploads queued for the same Texture are
// never reordered.
type Scheduler struct {
	drv gpu.Driver

	crit sync.Mutex
	wait *sync.Cond // on crit

	state State
	queue []*task

	// whether Draining executes or discards what is left in the queue
	finishQueued bool

	// every texture that has ever been queued for upload and has not been
	// forgotten. destroyed in bulk at Stop(), under the worker context,
	// which shares their namespace
	live map[*Texture]bool

	// closed by the worker on exit
	stopped chan struct{}
}

// NewScheduler is the preferred method of initialisation of the Scheduler
// type. The returned Scheduler does not accept uploads until Start() has
// succeeded.
func NewScheduler(drv gpu.Driver) *Scheduler {
	sch := &Scheduler{
		drv:     drv,
		state:   Starting,
		live:    make(map[*Texture]bool),
		stopped: make(chan struct{}),
	}
	sch.wait = sync.NewCond(&sch.crit)
	return sch
}

// State the scheduler is currently in.
func (sch *Scheduler) State() State {
	sch.crit.Lock()
	defer sch.crit.Unlock()
	return sch.state
}

// Start the worker. Must be called on the thread where the primary context is
// current; the offscreen context is created as part of the primary's share
// group and the primary is current again when Start returns. Start on a
// Running scheduler is a no-op; Start after Stop is an error.
func (sch *Scheduler) Start(primary gpu.Context) error {
	sch.crit.Lock()
	switch sch.state {
	case Running:
		sch.crit.Unlock()
		return nil
	case Draining, Stopped:
		sch.crit.Unlock()
		return curated.Errorf(StoppedError)
	}
	sch.crit.Unlock()

	offscreen, err := primary.NewShared()
	if err != nil {
		return err
	}

	ready := make(chan error)
	go sch.worker(offscreen, ready)

	err = <-ready
	if err != nil {
		offscreen.Destroy()
		return err
	}

	return nil
}

// worker is the whole of the upload thread.
func (sch *Scheduler) worker(ctx gpu.Context, ready chan error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cur, err := ctx.MakeCurrent()
	if err != nil {
		ready <- err
		return
	}

	// byte-tight transfers for the lifetime of the worker. nothing else
	// ever runs on this context
	sch.drv.SetUnpackAlignment(cur, 1)

	sch.crit.Lock()
	sch.state = Running
	sch.crit.Unlock()
	ready <- nil

	logger.Log("upload", "worker started")

	for {
		sch.crit.Lock()
		for len(sch.queue) == 0 && sch.state == Running {
			sch.wait.Wait()
		}

		if sch.state == Draining && (!sch.finishQueued || len(sch.queue) == 0) {
			break // with crit held
		}

		tk := sch.queue[0]
		sch.queue = sch.queue[1:]
		sch.crit.Unlock()

		// the sentinel pushed by Stop() to wake a blocked worker
		if tk == nil {
			continue
		}

		sch.execute(cur, tk)
	}

	// crit is held. release the discarded remainder of the queue so that
	// nobody blocks forever on a done channel
	for _, tk := range sch.queue {
		if tk != nil {
			close(tk.done)
		}
	}
	sch.queue = nil

	remaining := make([]*Texture, 0, len(sch.live))
	for t := range sch.live {
		remaining = append(remaining, t)
	}
	sch.live = nil
	sch.state = Stopped
	sch.crit.Unlock()

	// bulk teardown of every live texture, under a context that shares
	// their namespace
	for _, t := range remaining {
		t.Destroy(cur)
	}

	logger.Logf("upload", "worker stopped (%d textures destroyed)", len(remaining))

	ctx.ReleaseCurrent()
	ctx.Destroy()
	close(sch.stopped)
}

// execute a single task on the worker thread. a task failure is captured on
// the target texture, never raised here.
func (sch *Scheduler) execute(cur gpu.Current, tk *task) {
	defer close(tk.done)

	// the view owning the texture may have been destroyed while the task
	// was queued
	if tk.tex.Destroyed() {
		return
	}

	err := tk.tex.transfer(cur, tk.id, tk.format, tk.width, tk.height, tk.data, tk.identity)
	if err != nil {
		logger.Logf("upload", "captured: %v", err)
		tk.tex.captureError(err)
	}
}

// Upload queues a pixel transfer into the texture. Never blocks. A no-op if
// the source identity is already uploaded or already queued for the texture.
// Fails with the not-accepting-uploads error if the scheduler has not started
// or has stopped.
func (sch *Scheduler) Upload(t *Texture, src *pixels.Source) error {
	sch.crit.Lock()
	defer sch.crit.Unlock()

	if sch.state != Running {
		return curated.Errorf(StoppedError)
	}

	identity := src.Identity()
	if !t.needsUpload(identity) {
		return nil
	}

	tk := &task{
		tex:      t,
		id:       t.Handle(),
		format:   gpu.FormatFor(src.Layout(), src.Elem()),
		width:    src.Width(),
		height:   src.Height(),
		data:     src.Data(),
		identity: identity,
		done:     make(chan struct{}),
	}

	t.setPending(tk.done, identity)
	sch.live[t] = true
	sch.queue = append(sch.queue, tk)
	sch.wait.Signal()

	return nil
}

// Forget removes a texture from the bulk-teardown registry. To be called
// after the texture has been destroyed through its owning view.
func (sch *Scheduler) Forget(t *Texture) {
	sch.crit.Lock()
	defer sch.crit.Unlock()
	if sch.live != nil {
		delete(sch.live, t)
	}
}

// Stop the worker and block until it has wound down. If finishQueued is true
// the tasks already in the queue are executed first, otherwise they are
// discarded. Either way every texture still in the registry is destroyed
// under the worker's context before it winds down. Stop on a scheduler that
// never started, or a second Stop, returns immediately.
func (sch *Scheduler) Stop(finishQueued bool) {
	sch.crit.Lock()
	switch sch.state {
	case Starting:
		// the worker never ran so there is nothing to wind down
		sch.state = Stopped
		sch.crit.Unlock()
		close(sch.stopped)
		return
	case Draining, Stopped:
		sch.crit.Unlock()
		<-sch.stopped
		return
	}

	sch.state = Draining
	sch.finishQueued = finishQueued

	// sentinel wakes the worker if it is blocked on an empty queue
	sch.queue = append(sch.queue, nil)
	sch.wait.Signal()
	sch.crit.Unlock()

	<-sch.stopped
}
