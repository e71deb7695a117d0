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

// Package gltex turns pixel sources into bound GPU textures. The Texture type
// owns one texture object and keeps track of the identity of the pixel data
// most recently uploaded into it, so repeated paints of unchanged data cost
// nothing. The Scheduler type runs a single worker thread with an offscreen
// context that shares the render context's object namespace, and performs
// uploads there so the render thread never waits on a pixel transfer it
// doesn't need yet.
//
// Two threads participate: the render thread calls Ensure/Upload/Bind/Destroy
// and the worker thread performs queued transfers. A Texture is handed
// between them only through the Scheduler queue and the completion channel of
// the most recently queued transfer.
package gltex

import (
	"sync"
	"sync/atomic"

	"github.com/lumeview/lumeview/curated"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/pixels"
)

// sentinel errors for the gltex package.
const (
	// an operation that requires a current GPU context was given the zero
	// Current token
	ContextError = "gpu context: %v"

	// the driver refused texture storage
	AllocationError = "texture allocation: %v"

	// a pixel transfer failed
	UploadError = "texture upload: %v"

	// returned by Scheduler.Upload when the scheduler is not accepting
	// uploads
	StoppedError = "upload scheduler: not accepting uploads"
)

// Texture owns exactly one GPU texture object.
//
// All functions are for the render thread. The worker thread only ever
// touches a Texture through the transfer() and captureError() functions.
type Texture struct {
	drv gpu.Driver

	id      gpu.TextureID
	format  gpu.Format
	width   int
	height  int
	mipmaps bool

	// identity of the pixel data last successfully uploaded. zero means the
	// storage content is undefined. accessed with sync/atomic (written on
	// the worker thread, read on the render thread)
	uploaded uint64

	// accessed with sync/atomic. once destroyed a Texture is dead; the
	// cache creates a fresh instance if the drawable comes back
	destroyed uint32

	// critical section for the fields relating to an outstanding upload
	crit sync.Mutex

	// completion channel of the most recently queued upload and the
	// identity it will install. nil when nothing is outstanding
	pendingDone     chan struct{}
	pendingIdentity uint64

	// failure captured by the worker, consumed by the next Bind()
	err error
}

// NewTexture is the preferred method of initialisation of the Texture type.
// No GPU object is created until the first Ensure().
func NewTexture(drv gpu.Driver, mipmaps bool) *Texture {
	return &Texture{drv: drv, mipmaps: mipmaps}
}

// Handle returns the driver id of the texture object. Zero until the first
// Ensure() and after Destroy().
func (t *Texture) Handle() gpu.TextureID {
	return t.id
}

// Uploaded returns the identity of the pixel data last successfully uploaded.
// Zero if the storage content is undefined.
func (t *Texture) Uploaded() uint64 {
	return atomic.LoadUint64(&t.uploaded)
}

// Destroyed returns true once Destroy() has been called.
func (t *Texture) Destroyed() bool {
	return atomic.LoadUint32(&t.destroyed) == 1
}

// Ensure that texture storage exists and agrees with the dimensions and
// channel layout of the pixel source. If storage exists but does not agree,
// it is destroyed and allocated afresh; texture storage cannot be resized in
// place. Newly allocated storage has undefined content and an Uploaded()
// value of zero.
func (t *Texture) Ensure(cur gpu.Current, src *pixels.Source) error {
	if !cur.Valid() {
		return curated.Errorf(ContextError, "no context current")
	}
	if t.Destroyed() {
		return curated.Errorf(AllocationError, "texture has been destroyed")
	}

	f := gpu.FormatFor(src.Layout(), src.Elem())

	if t.id != gpu.NoTexture {
		if t.width == src.Width() && t.height == src.Height() && t.format.Storage() == f.Storage() {
			// the element type only affects transfer, not storage
			t.format = f
			return nil
		}
		t.drv.DeleteTexture(cur, t.id)
		t.id = gpu.NoTexture
		atomic.StoreUint64(&t.uploaded, 0)
	}

	id := t.drv.CreateTexture(cur)
	err := t.drv.AllocTexture(cur, id, f, src.Width(), src.Height(), t.mipmaps)
	if err != nil {
		t.drv.DeleteTexture(cur, id)
		return curated.Errorf(AllocationError, err)
	}

	t.id = id
	t.format = f
	t.width = src.Width()
	t.height = src.Height()
	atomic.StoreUint64(&t.uploaded, 0)

	return nil
}

// Upload pixel data in the foreground. A no-op if the source identity has
// already been uploaded. The ambient unpack alignment of the context is saved
// and restored around the byte-tight transfer, on every exit path, so other
// rendering sharing the context is not disturbed.
func (t *Texture) Upload(cur gpu.Current, src *pixels.Source) error {
	if !cur.Valid() {
		return curated.Errorf(ContextError, "no context current")
	}
	if t.id == gpu.NoTexture {
		return curated.Errorf(UploadError, "no storage; Ensure() has not succeeded")
	}

	identity := src.Identity()
	if t.Uploaded() == identity {
		return nil
	}

	ambient := t.drv.UnpackAlignment(cur)
	t.drv.SetUnpackAlignment(cur, 1)
	defer t.drv.SetUnpackAlignment(cur, ambient)

	return t.transfer(cur, t.id, t.format, src.Width(), src.Height(), src.Data(), identity)
}

// transfer performs the pixel transfer and records the new identity. Called
// on the render thread by Upload() (alignment bracketed there) and on the
// worker thread by the scheduler (alignment is 1 for the worker's lifetime).
// The texture id arrives as an argument rather than being read from the
// Texture; the worker transfers against the id snapshotted at enqueue time,
// so a concurrent Destroy() on the render thread is never observed mid-read.
func (t *Texture) transfer(cur gpu.Current, id gpu.TextureID, f gpu.Format, width int, height int, data []byte, identity uint64) error {
	err := t.drv.UploadTexture(cur, id, f, width, height, data)
	if err != nil {
		return curated.Errorf(UploadError, err)
	}
	if t.mipmaps {
		t.drv.GenerateMipmaps(cur, id)
	}
	atomic.StoreUint64(&t.uploaded, identity)
	return nil
}

// needsUpload returns false if the identity has already been uploaded or an
// upload that will install it is outstanding.
func (t *Texture) needsUpload(identity uint64) bool {
	if t.Uploaded() == identity {
		return false
	}

	t.crit.Lock()
	defer t.crit.Unlock()
	return !(t.pendingDone != nil && t.pendingIdentity == identity)
}

// setPending records the completion channel of a newly queued upload.
func (t *Texture) setPending(done chan struct{}, identity uint64) {
	t.crit.Lock()
	defer t.crit.Unlock()
	t.pendingDone = done
	t.pendingIdentity = identity
}

// captureError records a worker-side failure for the next Bind() caller. A
// worker failure never terminates the worker.
func (t *Texture) captureError(err error) {
	t.crit.Lock()
	defer t.crit.Unlock()
	t.err = err
}

// Bind the texture to a unit. This is the synchronisation point with the
// upload worker: if an upload queued for this texture has not completed, Bind
// blocks until it has. A failure captured by the worker (or a failure of the
// most recent foreground upload cycle) is returned here, once, instead of the
// bind taking place.
func (t *Texture) Bind(cur gpu.Current, unit int) error {
	if !cur.Valid() {
		return curated.Errorf(ContextError, "no context current")
	}

	t.crit.Lock()
	done := t.pendingDone
	t.crit.Unlock()

	if done != nil {
		<-done
		t.crit.Lock()
		if t.pendingDone == done {
			t.pendingDone = nil
			t.pendingIdentity = 0
		}
		t.crit.Unlock()
	}

	t.crit.Lock()
	err := t.err
	t.err = nil
	t.crit.Unlock()
	if err != nil {
		return err
	}

	t.drv.BindTexture(cur, unit, t.id)
	return nil
}

// Release the texture unit.
func (t *Texture) Release(cur gpu.Current, unit int) {
	t.drv.BindTexture(cur, unit, gpu.NoTexture)
}

// Destroy the texture object. Idempotent. The context current on the calling
// thread must share the object namespace the texture was created in. A
// transfer already queued for the texture becomes a no-op.
func (t *Texture) Destroy(cur gpu.Current) {
	if !atomic.CompareAndSwapUint32(&t.destroyed, 0, 1) {
		return
	}
	t.drv.DeleteTexture(cur, t.id)
	t.id = gpu.NoTexture
	atomic.StoreUint64(&t.uploaded, 0)
}
