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

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"

	"github.com/lumeview/lumeview/gui/sdlview"
	"github.com/lumeview/lumeview/logger"
	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/scene"
	"github.com/lumeview/lumeview/statsview"
	"github.com/lumeview/lumeview/version"
)

const winWidth = 1280
const winHeight = 800

func main() {
	os.Exit(launch(os.Args[1:], os.Stdout, os.Stderr))
}

func launch(args []string, output io.Writer, errOutput io.Writer) int {
	flgs := flag.NewFlagSet(version.ApplicationName, flag.ExitOnError)
	showVersion := flgs.Bool("version", false, "print version and quit")
	useLog := flgs.Bool("log", false, "echo log to stderr")
	useStats := flgs.Bool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	async := flgs.Bool("async", true, "upload pixel data through the background worker")
	_ = flgs.Parse(args)

	if *showVersion {
		fmt.Fprintf(output, "%s %s\n", version.ApplicationName, version.Version())
		return 0
	}

	if *useLog {
		logger.SetEcho(errOutput)
	}

	if *useStats {
		if statsview.Available() {
			statsview.Launch(errOutput)
		} else {
			fmt.Fprintln(errOutput, "statsview not available in this build. rebuild with 'statsview' build tag.")
			return 10
		}
	}

	prf := scene.NewPreferences()
	_ = prf.AsyncUpload.Set(*async)

	stack := &scene.Stack{}
	layer := scene.NewLayer()
	stack.Add(layer)

	var advance func(frame int)

	if flgs.NArg() > 0 {
		src, err := loadImage(flgs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOutput, "* %v\n", err)
			return 10
		}
		layer.Source = src
	} else {
		// without an image on the command line, show an animated synthetic
		// pattern. the per-frame Set exercises the identity-token cache
		// invalidation the same way a live acquisition feed would
		src, animate := syntheticSource(512, 512)
		layer.Source = src
		advance = animate
	}

	v, err := sdlview.NewView(stack, prf, winWidth, winHeight)
	if err != nil {
		fmt.Fprintf(errOutput, "* %v\n", err)
		return 10
	}
	defer v.Destroy()

	err = v.Run(advance)
	if err != nil {
		fmt.Fprintf(errOutput, "* %v\n", err)
		return 10
	}

	return 0
}

// loadImage decodes an image file into a pixel source.
func loadImage(filename string) (*pixels.Source, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}

	return pixels.FromImage(img)
}

// syntheticSource builds an animated 16bit grayscale pattern and the per-frame
// function that advances it. Each frame is rendered into a fresh buffer; the
// previous buffer may still be in the hands of the upload worker.
func syntheticSource(width int, height int) (*pixels.Source, func(int)) {
	render := func(phase float64) []byte {
		data := make([]byte, width*height*2)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				d := math.Hypot(float64(x-width/2), float64(y-height/2))
				v := 0.5 + 0.5*math.Sin(d/24.0-phase)
				binary.LittleEndian.PutUint16(data[(y*width+x)*2:], uint16(v*65535))
			}
		}
		return data
	}

	src, err := pixels.NewSource(render(0), width, height, pixels.Gray, pixels.U16)
	if err != nil {
		panic(err)
	}

	return src, func(frame int) {
		_ = src.Set(render(float64(frame)/20.0), width, height, pixels.Gray, pixels.U16)
	}
}
