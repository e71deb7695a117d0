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

// Package sdlview opens an SDL window and runs the viewer in it: the layer
// stack is painted every frame and an imgui control panel adjusts the display
// parameters of the top layer. The package owns the main render loop and must
// be driven from the main goroutine.
package sdlview

import (
	"fmt"
	"sync/atomic"

	"github.com/inkyblackness/imgui-go/v4"

	"github.com/lumeview/lumeview/gltex"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/histogram"
	"github.com/lumeview/lumeview/logger"
	"github.com/lumeview/lumeview/scene"
)

// each window is a view of its own as far as the painter's resource caches
// are concerned.
var viewSrc uint64

// View is a window, its GL context and everything needed to paint a layer
// stack into it.
type View struct {
	context *imgui.Context
	io      imgui.IO
	plt     *platform
	rnd     *renderer

	drv       *gpu.GL32
	renderCtx *gpu.SDLContext
	sched     *gltex.Scheduler

	prefs   *scene.Preferences
	painter *scene.Painter
	stack   *scene.Stack
	view    scene.View

	// histogram of the top layer, recomputed when the source's identity
	// moves on
	hist *histogram.Histogram
}

// NewView is the preferred method of initialisation for the View type. Must
// be called from the main goroutine; the goroutine is locked to its thread
// for the lifetime of the view.
func NewView(stack *scene.Stack, prf *scene.Preferences, width int32, height int32) (*View, error) {
	if prf == nil {
		prf = scene.NewPreferences()
	}

	v := &View{
		context: imgui.CreateContext(nil),
		io:      imgui.CurrentIO(),
		stack:   stack,
		prefs:   prf,
		view:    scene.View{ID: atomic.AddUint64(&viewSrc, 1)},
	}

	var err error

	v.plt, err = newPlatform(v.io, width, height)
	if err != nil {
		v.context.Destroy()
		return nil, fmt.Errorf("sdlview: %v", err)
	}

	v.drv = gpu.NewGL32()
	v.renderCtx = gpu.WrapSDL(v.plt.window, v.plt.glContext)

	cur, err := v.renderCtx.MakeCurrent()
	if err != nil {
		v.Destroy()
		return nil, fmt.Errorf("sdlview: %v", err)
	}

	err = v.drv.Init(cur)
	if err != nil {
		v.Destroy()
		return nil, fmt.Errorf("sdlview: %v", err)
	}
	logger.Log("gl", v.drv.Describe())

	v.rnd, err = newRenderer()
	if err != nil {
		v.Destroy()
		return nil, fmt.Errorf("sdlview: %v", err)
	}

	// the upload worker shares the object namespace of the window's
	// context. starting it leaves the window's context current on this
	// thread
	v.sched, err = gltex.Central(v.drv, v.renderCtx)
	if err != nil {
		logger.Logf("sdlview", "background uploads unavailable: %v", err)
		v.sched = nil
	}

	v.painter = scene.NewPainter(v.drv, v.sched, v.prefs)

	return v, nil
}

// Destroy the view and every GPU resource it holds. The upload worker is
// stopped before the context it shares with is deleted.
func (v *View) Destroy() {
	if v.renderCtx != nil {
		if cur, err := v.renderCtx.MakeCurrent(); err == nil {
			if v.painter != nil {
				v.painter.OnViewDestroyed(cur, v.view)
			}
		}
	}

	gltex.StopCentral()

	if v.rnd != nil {
		v.rnd.destroy()
		v.rnd = nil
	}
	if v.context != nil {
		v.context.Destroy()
		v.context = nil
	}
	if v.plt != nil {
		v.plt.destroy()
		v.plt = nil
	}
}

// Run the render loop until the window is closed. The advance function is
// called once per frame, before painting, and may mutate the layer stack and
// its pixel sources. A nil advance is allowed.
func (v *View) Run(advance func(frame int)) error {
	frame := 0

	for !v.plt.shouldQuit {
		v.plt.processEvents()

		if advance != nil {
			advance(frame)
		}
		frame++

		cur, err := v.renderCtx.MakeCurrent()
		if err != nil {
			return fmt.Errorf("sdlview: %v", err)
		}

		v.plt.newFrame()
		imgui.NewFrame()
		v.drawControls()
		imgui.Render()

		v.rnd.preRender()

		w, h := v.plt.window.GLGetDrawableSize()
		v.painter.PaintStack(cur, v.view, scene.RenderTarget{Width: int(w), Height: int(h)}, v.stack)

		v.rnd.render(v.plt.displaySize(), v.plt.framebufferSize(), imgui.RenderedDrawData())
		v.plt.postRender()
	}

	return nil
}

// topLayer returns the layer the control panel operates on.
func (v *View) topLayer() *scene.Layer {
	layers := v.stack.Layers()
	if len(layers) == 0 {
		return nil
	}
	return layers[len(layers)-1]
}

func (v *View) drawControls() {
	layer := v.topLayer()
	if layer == nil || layer.Source == nil {
		return
	}
	src := layer.Source

	imgui.SetNextWindowPosV(imgui.Vec2{X: 10, Y: 10}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	if !imgui.BeginV("Display", nil, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.End()
		return
	}
	defer imgui.End()

	imgui.Text(fmt.Sprintf("%dx%d %v/%v", src.Width(), src.Height(), src.Layout(), src.Elem()))

	if v.hist == nil || v.hist.Identity != src.Identity() {
		v.hist = histogram.Compute(src)
	}
	for c := 0; c < src.Layout().Channels(); c++ {
		imgui.PlotHistogramV(fmt.Sprintf("##histogram%d", c), v.hist.Plot(c),
			0, "", 0.0, 1.0, imgui.Vec2{X: 250, Y: 50})
	}

	gamma := layer.Gamma[0]
	if imgui.SliderFloatV("Gamma", &gamma, 0.1, 4.0, "%.2f", imgui.SliderFlagsNone) {
		layer.Gamma = [3]float32{gamma, gamma, gamma}
	}

	rescale := layer.RescaleEnabled
	if imgui.Checkbox("Rescale", &rescale) {
		layer.RescaleEnabled = rescale
	}

	if layer.RescaleEnabled {
		scale := src.Elem().FullScale()
		min := layer.Min[0]
		if imgui.SliderFloatV("Min", &min, 0, scale, "%.0f", imgui.SliderFlagsNone) {
			layer.Min = [3]float32{min, min, min}
		}
		max := layer.Max[0]
		if imgui.SliderFloatV("Max", &max, 0, scale, "%.0f", imgui.SliderFlagsNone) {
			layer.Max = [3]float32{max, max, max}
		}
	}

	zoom := layer.Transform.Zoom
	if imgui.SliderFloatV("Zoom", &zoom, 0.1, 10.0, "%.2f", imgui.SliderFlagsNone) {
		layer.Transform.Zoom = zoom
	}

	if v.sched != nil {
		async := v.prefs.AsyncUpload.Get().(bool)
		if imgui.Checkbox("Background uploads", &async) {
			_ = v.prefs.AsyncUpload.Set(async)
		}
	}
}
