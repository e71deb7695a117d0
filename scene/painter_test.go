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

package scene_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lumeview/lumeview/gltex"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/gpu/gputest"
	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/scene"
	"github.com/lumeview/lumeview/test"
)

func newPaintRig(t *testing.T) (*gputest.Driver, *gltex.Scheduler, *scene.Painter, gpu.Current) {
	t.Helper()

	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	sch := gltex.NewScheduler(drv)
	test.ExpectedSuccess(t, sch.Start(ctx))

	return drv, sch, scene.NewPainter(drv, sch, nil), cur
}

func TestPaintEndToEnd(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	view := scene.View{ID: 1}
	target := scene.RenderTarget{Width: 640, Height: 480}

	// 100x100 grayscale uint16
	src, err := pixels.NewSource(make([]byte, 100*100*2), 100, 100, pixels.Gray, pixels.U16)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	// two paints without a content change cost exactly one transfer
	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.TotalTransfers(), 1)
	test.Equate(t, drv.LiveTextures(), 1)

	// resizing forces a fresh texture object and one more transfer
	test.ExpectedSuccess(t, src.Set(make([]byte, 200*100*2), 200, 100, pixels.Gray, pixels.U16))
	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.TotalTransfers(), 2)
	test.Equate(t, drv.LiveTextures(), 1)
	w, h := drv.TextureSize(gpu.TextureID(1))
	test.Equate(t, w, 0) // the original texture object is gone
	test.Equate(t, h, 0)
	w, _ = drv.TextureSize(gpu.TextureID(2))
	test.Equate(t, w, 200)

	// a content change with unchanged dimensions reuses the texture object
	src.Refresh()
	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.TotalTransfers(), 3)
	test.Equate(t, drv.LiveTextures(), 1)
	test.Equate(t, drv.Transfers(gpu.TextureID(2)), 2)
}

func TestPaintAbsentSource(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	view := scene.View{ID: 1}
	target := scene.RenderTarget{Width: 640, Height: 480}

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.LiveTextures(), 1)

	// losing the source frees the texture promptly rather than leaving it
	// stale until view teardown
	layer.Source = nil
	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.LiveTextures(), 0)
}

func TestPaintNoRenderTarget(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	// a precondition violation by the caller. warned about, not fatal, no
	// resources touched
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, scene.RenderTarget{}, layer))
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, scene.RenderTarget{}, layer))
	test.Equate(t, drv.LiveTextures(), 0)
	test.Equate(t, drv.TotalTransfers(), 0)
}

func TestPaintStackContinuesPastFailure(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	view := scene.View{ID: 1}
	target := scene.RenderTarget{Width: 640, Height: 480}

	a := scene.NewLayer()
	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)
	a.Source = src

	b := scene.NewLayer()
	src2, err := pixels.NewSource(make([]byte, 16*4), 4, 4, pixels.RGBA, pixels.U8)
	test.ExpectedSuccess(t, err)
	b.Source = src2

	stack := &scene.Stack{}
	stack.Add(a)
	stack.Add(b)

	// with allocation failing every layer fails, but the stack paint
	// returns normally
	drv.SetAllocErr(errors.New("out of memory"))
	painter.PaintStack(cur, view, target, stack)
	test.Equate(t, drv.TotalTransfers(), 0)

	// once the fault clears the same stack paints fully
	drv.SetAllocErr(nil)
	painter.PaintStack(cur, view, target, stack)
	test.Equate(t, drv.TotalTransfers(), 2)
	test.Equate(t, drv.LiveTextures(), 2)
}

func TestPaintForegroundPath(t *testing.T) {
	drv := gputest.NewDriver()
	ctx := gputest.NewContext()
	cur, err := ctx.MakeCurrent()
	test.ExpectedSuccess(t, err)

	// no scheduler at all: the painter uses the foreground path, which
	// must leave the ambient alignment untouched
	painter := scene.NewPainter(drv, nil, nil)
	drv.SetUnpackAlignment(cur, 4)

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	target := scene.RenderTarget{Width: 640, Height: 480}
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, target, layer))
	test.Equate(t, drv.TotalTransfers(), 1)
	test.Equate(t, drv.Alignment(), int32(4))
}

func TestPaintAsyncPreferenceOff(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	prf := scene.NewPreferences()
	test.ExpectedSuccess(t, prf.AsyncUpload.Set(false))
	painter = scene.NewPainter(drv, sch, prf)

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	target := scene.RenderTarget{Width: 640, Height: 480}
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, target, layer))
	test.Equate(t, drv.TotalTransfers(), 1)

	// the foreground path ran byte-tight and restored the ambient value
	log := drv.AlignmentLog()
	test.Equate(t, log[len(log)-2], int32(1))
}

func TestPaintOverlay(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	view := scene.View{ID: 1}
	target := scene.RenderTarget{Width: 640, Height: 480}

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)
	overlay, err := pixels.NewSource(make([]byte, 2*2*4), 2, 2, pixels.RGBA, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src
	layer.Overlay = overlay

	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.LiveTextures(), 2)
	test.Equate(t, drv.TotalTransfers(), 2)

	frag := drv.ProgramFragment(gpu.ProgramID(1))
	test.Equate(t, strings.Contains(frag, "overlay_tex"), true)

	// removing the overlay frees its texture on the next paint
	layer.Overlay = nil
	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.LiveTextures(), 1)
}

func TestMipmapRegenPerView(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	target := scene.RenderTarget{Width: 640, Height: 480}

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	// each view binds the drawable through its own texture and must
	// regenerate mipmaps under its own context: once at transfer time and
	// once at first bind. what another view has bound is irrelevant
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, target, layer))
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 2}, target, layer))
	test.Equate(t, drv.MipmapGens(gpu.TextureID(1)), 2)
	test.Equate(t, drv.MipmapGens(gpu.TextureID(2)), 2)

	// repainting unchanged content regenerates nothing
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, target, layer))
	test.Equate(t, drv.MipmapGens(gpu.TextureID(1)), 2)

	// a texture recreated after its drawable lost and regained the source
	// regenerates even though the source identity never moved
	layer.Source = nil
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, target, layer))
	layer.Source = src
	test.ExpectedSuccess(t, painter.Paint(cur, scene.View{ID: 1}, target, layer))
	test.Equate(t, drv.MipmapGens(gpu.TextureID(3)), 2)
}

func TestRescaleUniforms(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	view := scene.View{ID: 1}
	target := scene.RenderTarget{Width: 640, Height: 480}

	src, err := pixels.NewSource(make([]byte, 4*4*2), 4, 4, pixels.Gray, pixels.U16)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src
	layer.RescaleEnabled = true
	layer.Min[0] = 1000
	layer.Max[0] = 3000
	layer.Gamma[0] = 0.5

	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))

	// min/max arrive in the shader normalised by the element full scale
	prog := gpu.ProgramID(1)
	test.Equate(t, drv.Uniform(prog, "gamma").(float32), float32(0.5))
	test.Equate(t, drv.Uniform(prog, "rescale_min").(float32), float32(1000)/65535)
	test.Equate(t, drv.Uniform(prog, "rescale_range").(float32), float32(2000)/65535)
	test.Equate(t, drv.Uniform(prog, "viewport_height").(float32), float32(480))
}

func TestOnViewDestroyed(t *testing.T) {
	drv, sch, painter, cur := newPaintRig(t)
	defer sch.Stop(false)

	view := scene.View{ID: 1}
	target := scene.RenderTarget{Width: 640, Height: 480}

	src, err := pixels.NewSource(make([]byte, 16), 4, 4, pixels.Gray, pixels.U8)
	test.ExpectedSuccess(t, err)

	layer := scene.NewLayer()
	layer.Source = src

	test.ExpectedSuccess(t, painter.Paint(cur, view, target, layer))
	test.Equate(t, drv.LiveTextures(), 1)
	test.Equate(t, drv.LivePrograms(), 1)
	test.Equate(t, drv.LiveQuads(), 1)

	painter.OnViewDestroyed(cur, view)
	test.Equate(t, drv.LiveTextures(), 0)
	test.Equate(t, drv.LivePrograms(), 0)
	test.Equate(t, drv.LiveQuads(), 0)

	// a second destroy, or destroying an unknown view, is a no-op
	painter.OnViewDestroyed(cur, view)
	painter.OnViewDestroyed(cur, scene.View{ID: 99})
}

func TestFragToTex(t *testing.T) {
	// one-to-one placement of a 100x50 image: a fragment at the image's
	// far corner maps to texture coordinate (1, 1)
	m := scene.FragToTex(scene.Identity(), 100, 50)
	test.Equate(t, m[0]*100+m[3]*0+m[6], float32(1))
	test.Equate(t, m[1]*0+m[4]*50+m[7], float32(1))

	// panning by (10, 20) moves the origin
	m = scene.FragToTex(scene.Transform{Zoom: 1, PanX: 10, PanY: 20}, 100, 50)
	test.Equate(t, m[0]*10+m[6], float32(0))
	test.Equate(t, m[4]*20+m[7], float32(0))

	// zooming by 2 halves the texture-space step of a fragment
	m = scene.FragToTex(scene.Transform{Zoom: 2}, 100, 50)
	test.Equate(t, m[0]*200+m[6], float32(1))
}
