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

package gltex_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lumeview/lumeview/curated"
	"github.com/lumeview/lumeview/gltex"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/gpu/gputest"
	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/test"
)

func graySource(t *testing.T, width int, height int) *pixels.Source {
	t.Helper()
	src, err := pixels.NewSource(make([]byte, width*height), width, height, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)
	return src
}

func TestForegroundUploadIdempotence(t *testing.T) {
	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))

	// two uploads of the same identity cost one transfer
	test.ExpectedSuccess(t, tex.Upload(cur, src))
	test.ExpectedSuccess(t, tex.Upload(cur, src))
	test.Equate(t, drv.Transfers(tex.Handle()), 1)
	test.Equate(t, tex.Uploaded(), src.Identity())

	// a content change (signalled by Refresh) costs one more
	src.Refresh()
	test.ExpectedSuccess(t, tex.Upload(cur, src))
	test.Equate(t, drv.Transfers(tex.Handle()), 2)
}

func TestEnsureRecreatesOnShapeChange(t *testing.T) {
	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	first := tex.Handle()

	// unchanged shape keeps the handle
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	test.Equate(t, uint32(tex.Handle()), uint32(first))

	// a width change forces destroy-then-recreate, even though the caller
	// did not bump identity. an upload attempted against the stale storage
	// is rejected; Ensure() must run first
	test.ExpectedSuccess(t, src.Set(make([]byte, 8*4), 8, 4, pixels.Gray, pixels.U8))
	err = tex.Upload(cur, src)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, gltex.UploadError))
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	if tex.Handle() == first {
		t.Errorf("texture handle survived a shape change")
	}
	test.Equate(t, tex.Uploaded(), 0)
	test.Equate(t, drv.LiveTextures(), 1)

	// a layout change likewise
	second := tex.Handle()
	test.ExpectedSuccess(t, src.Set(make([]byte, 8*4*3), 8, 4, pixels.RGB, pixels.U8))
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	if tex.Handle() == second {
		t.Errorf("texture handle survived a layout change")
	}
}

func TestEnsureAllocationFailure(t *testing.T) {
	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	drv.SetAllocErr(errors.New("unsupported size"))

	tex := gltex.NewTexture(drv, false)
	err = tex.Ensure(cur, graySource(t, 4, 4))
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, gltex.AllocationError))
	test.Equate(t, uint32(tex.Handle()), 0)
}

func TestContextTokenRequired(t *testing.T) {
	drv := gputest.NewDriver()
	tex := gltex.NewTexture(drv, false)

	// the zero Current token is rejected
	err := tex.Ensure(gpu.Current{}, graySource(t, 4, 4))
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, gltex.ContextError))

	err = tex.Bind(gpu.Current{}, 0)
	test.ExpectedSuccess(t, curated.Is(err, gltex.ContextError))
}

func startScheduler(t *testing.T, drv *gputest.Driver) (*gltex.Scheduler, gpu.Current) {
	t.Helper()

	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	sch := gltex.NewScheduler(drv)
	test.ExpectedSuccess(t, sch.Start(ctx))
	test.Equate(t, sch.State() == gltex.Running, true)

	return sch, cur
}

func TestSchedulerOrdering(t *testing.T) {
	drv := gputest.NewDriver()
	sch, cur := startScheduler(t, drv)
	defer sch.Stop(false)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))

	// queue a burst of uploads, each with a fresh identity. after the
	// bind, the texture must hold the identity of the last one
	var last uint64
	for i := 0; i < 10; i++ {
		src.Refresh()
		last = src.Identity()
		test.ExpectedSuccess(t, sch.Upload(tex, src))
	}

	test.ExpectedSuccess(t, tex.Bind(cur, 0))
	test.Equate(t, tex.Uploaded(), last)
}

func TestSchedulerCacheHit(t *testing.T) {
	drv := gputest.NewDriver()
	sch, cur := startScheduler(t, drv)
	defer sch.Stop(false)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))

	// the second enqueue of the same identity is a no-op whether or not
	// the first has completed
	test.ExpectedSuccess(t, sch.Upload(tex, src))
	test.ExpectedSuccess(t, sch.Upload(tex, src))
	test.ExpectedSuccess(t, tex.Bind(cur, 0))
	test.ExpectedSuccess(t, sch.Upload(tex, src))
	test.ExpectedSuccess(t, tex.Bind(cur, 0))

	test.Equate(t, drv.Transfers(tex.Handle()), 1)
}

func TestBindBlocksUntilUploadCompletes(t *testing.T) {
	drv := gputest.NewDriver()
	drv.SetUploadDelay(50 * time.Millisecond)

	sch, cur := startScheduler(t, drv)
	defer sch.Stop(false)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	test.ExpectedSuccess(t, sch.Upload(tex, src))

	start := time.Now()
	test.ExpectedSuccess(t, tex.Bind(cur, 0))
	if time.Since(start) < 50*time.Millisecond {
		t.Errorf("bind returned before the in-flight upload completed")
	}
	test.Equate(t, tex.Uploaded(), src.Identity())
}

func TestWorkerErrorSurfacesOnBind(t *testing.T) {
	drv := gputest.NewDriver()
	sch, cur := startScheduler(t, drv)
	defer sch.Stop(false)

	drv.SetUploadErr(errors.New("transfer fault"))

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	test.ExpectedSuccess(t, sch.Upload(tex, src))

	// the worker captures the failure; bind re-raises it, once
	err := tex.Bind(cur, 0)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, gltex.UploadError))
	test.ExpectedSuccess(t, tex.Bind(cur, 0))
	test.Equate(t, tex.Uploaded(), 0)

	// a worker failure does not terminate the worker
	drv.SetUploadErr(nil)
	src.Refresh()
	test.ExpectedSuccess(t, sch.Upload(tex, src))
	test.ExpectedSuccess(t, tex.Bind(cur, 0))
	test.Equate(t, tex.Uploaded(), src.Identity())
}

func TestForegroundAlignmentRestoration(t *testing.T) {
	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))

	// the ambient alignment is restored after a successful transfer
	drv.SetUnpackAlignment(cur, 4)
	test.ExpectedSuccess(t, tex.Upload(cur, src))
	test.Equate(t, drv.Alignment(), int32(4))

	// and after a failed one
	drv.SetUploadErr(errors.New("transfer fault"))
	src.Refresh()
	test.ExpectedFailure(t, tex.Upload(cur, src))
	test.Equate(t, drv.Alignment(), int32(4))

	// the transfer itself ran byte-tight
	log := drv.AlignmentLog()
	foundTight := false
	for _, a := range log {
		if a == 1 {
			foundTight = true
		}
	}
	test.Equate(t, foundTight, true)
	test.Equate(t, log[len(log)-1], int32(4))
}

func TestSchedulerShutdown(t *testing.T) {
	drv := gputest.NewDriver()
	sch, cur := startScheduler(t, drv)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))
	test.ExpectedSuccess(t, sch.Upload(tex, src))
	test.ExpectedSuccess(t, tex.Bind(cur, 0))

	sch.Stop(false)
	test.Equate(t, sch.State() == gltex.Stopped, true)

	// enqueue after shutdown fails and does not hang
	src.Refresh()
	err := sch.Upload(tex, src)
	test.ExpectedFailure(t, err)
	test.ExpectedSuccess(t, curated.Is(err, gltex.StoppedError))

	// shutdown destroyed the registered texture under the worker context
	test.Equate(t, tex.Destroyed(), true)
	test.Equate(t, drv.LiveTextures(), 0)

	// a second stop returns immediately
	sch.Stop(false)
}

func TestDestroyedTextureTaskIsNoOp(t *testing.T) {
	drv := gputest.NewDriver()
	drv.SetUploadDelay(10 * time.Millisecond)

	sch, cur := startScheduler(t, drv)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))

	// queue a burst and destroy the texture while the queue is still
	// moving. queued tasks for a destroyed texture must not touch it
	for i := 0; i < 5; i++ {
		src.Refresh()
		test.ExpectedSuccess(t, sch.Upload(tex, src))
	}
	tex.Destroy(cur)
	sch.Forget(tex)

	// bind on a destroyed texture must not hang on the discarded tasks
	_ = tex.Bind(cur, 0)

	sch.Stop(true)
	test.Equate(t, drv.LiveTextures(), 0)
}

func TestDestroyRacesInFlightUpload(t *testing.T) {
	drv := gputest.NewDriver()
	sch, cur := startScheduler(t, drv)

	// destroy immediately after enqueue, repeatedly, so that the destroy
	// genuinely overlaps the worker executing the task. the worker operates
	// on the id snapshotted at enqueue time and never reads the texture's
	// live handle. most valuable under the race detector
	for i := 0; i < 100; i++ {
		src := graySource(t, 4, 4)
		tex := gltex.NewTexture(drv, false)
		test.ExpectedSuccess(t, tex.Ensure(cur, src))
		test.ExpectedSuccess(t, sch.Upload(tex, src))
		tex.Destroy(cur)
		sch.Forget(tex)

		// a transfer may have been discarded or may have hit the deleted
		// id; either way bind must not hang
		_ = tex.Bind(cur, 0)
	}

	sch.Stop(false)
	test.Equate(t, drv.LiveTextures(), 0)
}

func TestStopFinishesQueuedWork(t *testing.T) {
	drv := gputest.NewDriver()
	sch, cur := startScheduler(t, drv)

	src := graySource(t, 4, 4)
	tex := gltex.NewTexture(drv, false)
	test.ExpectedSuccess(t, tex.Ensure(cur, src))

	src.Refresh()
	last := src.Identity()
	test.ExpectedSuccess(t, sch.Upload(tex, src))

	// take the texture out of the bulk-teardown registry so that the
	// effect of the queued upload is still observable after the stop
	sch.Forget(tex)

	// Stop(true) executes what is queued before winding down
	sch.Stop(true)
	test.Equate(t, tex.Uploaded(), last)
	test.Equate(t, drv.Transfers(tex.Handle()), 1)
	test.Equate(t, tex.Destroyed(), false)
}

func TestStartIsIdempotent(t *testing.T) {
	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	_, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	sch := gltex.NewScheduler(drv)
	test.ExpectedSuccess(t, sch.Start(ctx))
	test.ExpectedSuccess(t, sch.Start(ctx))

	sch.Stop(false)
	test.ExpectedFailure(t, sch.Start(ctx))
}
