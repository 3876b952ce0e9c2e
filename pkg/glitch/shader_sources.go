package glitch

import (
	"fmt"
	"strings"
)

// Shader sources for the GL glitch pass. The fragment body mirrors Shade;
// the constants are baked in as #defines from Params.

// VertexSource draws the full-screen quad and forwards UVs
const VertexSource = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;

out vec2 vUV;

void main() {
    gl_Position = vec4(aPos, 1.0);
    vUV = aTexCoord;
}
`

// Uniform names declared by the fragment shader
const (
	UniformTime       = "time"
	UniformResolution = "resolution"
	UniformSampler    = "textureSampler"
)

const fragmentBody = `
in vec2 vUV;
out vec4 FragColor;

uniform sampler2D textureSampler;
uniform float time;
uniform vec2 resolution;

vec3 mod289(vec3 x) { return x - floor(x * (1.0 / 289.0)) * 289.0; }
vec4 mod289(vec4 x) { return x - floor(x * (1.0 / 289.0)) * 289.0; }
vec4 permute(vec4 x) { return mod289(((x * 34.0) + 1.0) * x); }
vec4 taylorInvSqrt(vec4 r) { return 1.79284291400159 - 0.85373472095314 * r; }

float snoise3(vec3 v) {
    const vec2 C = vec2(1.0 / 6.0, 1.0 / 3.0);
    const vec4 D = vec4(0.0, 0.5, 1.0, 2.0);

    vec3 i = floor(v + dot(v, C.yyy));
    vec3 x0 = v - i + dot(i, C.xxx);

    vec3 g = step(x0.yzx, x0.xyz);
    vec3 l = 1.0 - g;
    vec3 i1 = min(g.xyz, l.zxy);
    vec3 i2 = max(g.xyz, l.zxy);

    vec3 x1 = x0 - i1 + C.xxx;
    vec3 x2 = x0 - i2 + C.yyy;
    vec3 x3 = x0 - D.yyy;

    i = mod289(i);
    vec4 p = permute(permute(permute(
                i.z + vec4(0.0, i1.z, i2.z, 1.0))
              + i.y + vec4(0.0, i1.y, i2.y, 1.0))
              + i.x + vec4(0.0, i1.x, i2.x, 1.0));

    float n_ = 0.142857142857;
    vec3 ns = n_ * D.wyz - D.xzx;

    vec4 j = p - 49.0 * floor(p * ns.z * ns.z);
    vec4 x_ = floor(j * ns.z);
    vec4 y_ = floor(j - 7.0 * x_);

    vec4 x = x_ * ns.x + ns.yyyy;
    vec4 y = y_ * ns.x + ns.yyyy;
    vec4 h = 1.0 - abs(x) - abs(y);

    vec4 b0 = vec4(x.xy, y.xy);
    vec4 b1 = vec4(x.zw, y.zw);
    vec4 s0 = floor(b0) * 2.0 + 1.0;
    vec4 s1 = floor(b1) * 2.0 + 1.0;
    vec4 sh = -step(h, vec4(0.0));

    vec4 a0 = b0.xzyw + s0.xzyw * sh.xxyy;
    vec4 a1 = b1.xzyw + s1.xzyw * sh.zzww;

    vec3 p0 = vec3(a0.xy, h.x);
    vec3 p1 = vec3(a0.zw, h.y);
    vec3 p2 = vec3(a1.xy, h.z);
    vec3 p3 = vec3(a1.zw, h.w);

    vec4 norm = taylorInvSqrt(vec4(dot(p0, p0), dot(p1, p1), dot(p2, p2), dot(p3, p3)));
    p0 *= norm.x;
    p1 *= norm.y;
    p2 *= norm.z;
    p3 *= norm.w;

    vec4 m = max(0.6 - vec4(dot(x0, x0), dot(x1, x1), dot(x2, x2), dot(x3, x3)), 0.0);
    m = m * m;
    return 42.0 * dot(m * m, vec4(dot(p0, x0), dot(p1, x1), dot(p2, x2), dot(p3, x3)));
}

float rand(vec2 co) {
    return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453);
}

float burstStrength(float t) {
    return smoothstep(THRESHOLD * INTERVAL, INTERVAL, mod(t, INTERVAL));
}

float blockMask(vec2 uv, float stepTime, float strength, vec2 freq, float threshold, vec2 gain) {
    float nx = (snoise3(vec3(0.0, uv.x * freq.x, stepTime)) + 1.0) / 2.0;
    float ny = (snoise3(vec3(0.0, uv.y * freq.y, stepTime)) + 1.0) / 2.0;
    return step(nx, threshold + strength * gain.x) * step(ny, threshold + strength * gain.y);
}

vec3 blockLayer(vec2 uv, float t, float strength, float wave,
                float scale, float period, vec2 freq, float threshold, vec2 gain) {
    float stepTime = floor(t * scale) * period;
    float mask = blockMask(uv, stepTime, strength, freq, threshold, gain);
    float bnUvX = uv.x + sin(stepTime) * BLOCK_SWAY + wave;
    return vec3(
        texture(textureSampler, vec2(bnUvX + RGB_DIFF, uv.y)).r,
        texture(textureSampler, vec2(bnUvX, uv.y)).g,
        texture(textureSampler, vec2(bnUvX - RGB_DIFF, uv.y)).b) * mask;
}

void main() {
    float strength = burstStrength(time);

    vec2 shake = vec2(strength * SHAKE_AMPLITUDE + SHAKE_FLOOR)
        * vec2(rand(vec2(time)) * 2.0 - 1.0, rand(vec2(time * 2.0)) * 2.0 - 1.0)
        / resolution;

    float y = vUV.y * resolution.y;
    float rgbWave = (
        snoise3(vec3(0.0, y * 0.01, time * 400.0)) * (2.0 + strength * 32.0)
        * snoise3(vec3(0.0, y * 0.02, time * 200.0)) * (1.0 + strength * 4.0)
        + step(0.9995, sin(y * 0.005 + time * 1.6)) * 12.0
        + step(0.9999, sin(y * 0.005 + time * 2.0)) * -18.0
    ) / resolution.x;

    float r = texture(textureSampler, vUV + vec2(RGB_DIFF, 0.0) + shake * 0.5).r;
    float g = texture(textureSampler, vUV).g;
    float b = texture(textureSampler, vUV - vec2(RGB_DIFF, 0.0) + shake * 0.5).b;

    vec3 blocks =
        blockLayer(vUV, time, strength, rgbWave,
                   LAYER1_SCALE, LAYER1_PERIOD, LAYER1_FREQ, LAYER1_THRESHOLD, LAYER1_GAIN)
      + blockLayer(vUV, time, strength, rgbWave,
                   LAYER2_SCALE, LAYER2_PERIOD, LAYER2_FREQ, LAYER2_THRESHOLD, LAYER2_GAIN);

    FragColor = vec4(r, g, b, 1.0) + vec4(BLOCK_GAIN * blocks, 0.0);
}
`

// FragmentSource returns the GLSL fragment shader with p baked in
func FragmentSource(p Params) string {
	var b strings.Builder
	b.WriteString("#version 410 core\n")

	define := func(name string, v float64) {
		fmt.Fprintf(&b, "#define %s %s\n", name, glslFloat(v))
	}
	define("INTERVAL", p.Interval)
	define("THRESHOLD", p.Threshold)
	define("RGB_DIFF", p.RGBDiff)
	define("SHAKE_AMPLITUDE", p.ShakeAmplitude)
	define("SHAKE_FLOOR", p.ShakeFloor)
	define("BLOCK_GAIN", p.BlockGain)
	define("BLOCK_SWAY", blockSwayAmount)

	for i, l := range p.Layers {
		prefix := fmt.Sprintf("LAYER%d_", i+1)
		define(prefix+"SCALE", l.TimeStepScale)
		define(prefix+"PERIOD", l.TimeStepPeriod)
		define(prefix+"THRESHOLD", l.Threshold)
		fmt.Fprintf(&b, "#define %sFREQ vec2(%s, %s)\n", prefix, glslFloat(l.FreqX), glslFloat(l.FreqY))
		fmt.Fprintf(&b, "#define %sGAIN vec2(%s, %s)\n", prefix, glslFloat(l.GainX), glslFloat(l.GainY))
	}

	b.WriteString(fragmentBody)
	return b.String()
}

// glslFloat formats v so GLSL always parses it as a float literal
func glslFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
