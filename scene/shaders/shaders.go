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

// Package shaders holds the GLSL source for the image painter. The fragment
// shader is a template instantiated per channel layout: grayscale layouts
// rescale a single intensity, colour layouts rescale per channel, and overlay
// variants blend a second texture sampled on unit 1.
package shaders

import (
	"strings"

	_ "embed"

	"github.com/lumeview/lumeview/pixels"
)

//go:embed "planar_quad.vert"
var PlanarQuadVertexShader []byte

//go:embed "image_template.frag"
var imageTemplate []byte

// uniform declarations and colour expression per channel layout. the
// intensity of integer-typed sources arrives pre-divided by the GL into the
// [0,1] range, so rescale_min/rescale_range are given in the same range.
func rescaleParts(layout pixels.Layout) (string, string) {
	switch layout {
	case pixels.Gray:
		return `uniform float gamma;
uniform float rescale_min;
uniform float rescale_range;`,
			`	float v = clamp((s.r - rescale_min) / rescale_range, 0.0, 1.0);
	v = pow(v, gamma);
	vec4 color = vec4(v, v, v, 1.0);`

	case pixels.GrayAlpha:
		return `uniform float gamma;
uniform float rescale_min;
uniform float rescale_range;`,
			`	float v = clamp((s.r - rescale_min) / rescale_range, 0.0, 1.0);
	v = pow(v, gamma);
	vec4 color = vec4(v, v, v, s.g);`

	case pixels.RGB:
		return `uniform vec3 gamma;
uniform vec3 rescale_min;
uniform vec3 rescale_range;`,
			`	vec3 v = clamp((s.rgb - rescale_min) / rescale_range, vec3(0.0), vec3(1.0));
	v = pow(v, gamma);
	vec4 color = vec4(v, 1.0);`

	case pixels.RGBA:
		return `uniform vec3 gamma;
uniform vec3 rescale_min;
uniform vec3 rescale_range;`,
			`	vec3 v = clamp((s.rgb - rescale_min) / rescale_range, vec3(0.0), vec3(1.0));
	v = pow(v, gamma);
	vec4 color = vec4(v, s.a);`
	}

	return "", ""
}

// overlay sample swizzle per overlay channel layout.
func overlaySample(layout pixels.Layout) string {
	switch layout {
	case pixels.Gray:
		return "vec4(o.r, o.r, o.r, o.r)"
	case pixels.GrayAlpha:
		return "vec4(o.r, o.r, o.r, o.g)"
	case pixels.RGB:
		return "vec4(o.rgb, 1.0)"
	case pixels.RGBA:
		return "o"
	}
	return "o"
}

const overlayUniforms = `uniform sampler2D overlay_tex;
uniform mat3 overlay_frag_to_tex;`

const overlayExprTemplate = `	vec2 overlay_coord = (overlay_frag_to_tex * frag).xy;
	if (overlay_coord.x >= 0.0 && overlay_coord.x < 1.0 && overlay_coord.y >= 0.0 && overlay_coord.y < 1.0) {
		vec4 o = texture(overlay_tex, overlay_coord);
		vec4 ov = %OVERLAY_SAMPLE%;
		color.rgb = mix(color.rgb, ov.rgb, ov.a);
	}`

// Fragment instantiates the fragment shader template for a channel layout
// and, optionally, an overlay channel layout.
func Fragment(layout pixels.Layout, overlay pixels.Layout, hasOverlay bool) string {
	uniforms, colorExpr := rescaleParts(layout)

	src := string(imageTemplate)
	src = strings.Replace(src, "%RESCALE_UNIFORMS%", uniforms, 1)
	src = strings.Replace(src, "%COLOR_EXPR%", colorExpr, 1)

	if hasOverlay {
		expr := strings.Replace(overlayExprTemplate, "%OVERLAY_SAMPLE%", overlaySample(overlay), 1)
		src = strings.Replace(src, "%OVERLAY_UNIFORMS%", overlayUniforms, 1)
		src = strings.Replace(src, "%OVERLAY_EXPR%", expr, 1)
	} else {
		src = strings.Replace(src, "%OVERLAY_UNIFORMS%\n", "", 1)
		src = strings.Replace(src, "%OVERLAY_EXPR%\n", "", 1)
	}

	return src
}
