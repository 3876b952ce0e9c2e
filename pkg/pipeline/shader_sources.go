package pipeline

// Uniform names of the image-processing pass
const (
	UniformSampler         = "screenTexture"
	UniformTime            = "time"
	UniformResolution      = "resolution"
	UniformToneMapping     = "toneMapping"
	UniformSaturation      = "saturation"
	UniformContrast        = "contrast"
	UniformVignetteWeight  = "vignetteWeight"
	UniformGrainIntensity  = "grainIntensity"
	UniformGrainSeed       = "grainSeed"
	UniformAberration      = "aberrationAmount"
	UniformAberrationCurve = "aberrationRadial"
)

// Uniform is one named value pushed before the pass draws
type Uniform struct {
	Name   string
	Values []float32
}

// Uniforms converts settings into the values the GL pass expects.
// Disabled stages are sent as zero so the shader needs no branches on flags.
func Uniforms(s Settings, t float64, width, height int) []Uniform {
	one := func(name string, v float64) Uniform {
		return Uniform{Name: name, Values: []float32{float32(v)}}
	}
	flag := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	saturation := 0.0
	if s.ColorCurves {
		saturation = s.GlobalSaturation
	}
	vignette := 0.0
	if s.VignetteEnabled {
		vignette = s.VignetteWeight
	}
	grain := 0.0
	seed := 1.0
	if s.Grain.Enabled {
		grain = s.Grain.Intensity
		if s.Grain.Animated {
			seed += t - float64(int64(t))
		}
	}
	aberration := 0.0
	if s.ChromaticAberration.Enabled {
		aberration = s.ChromaticAberration.Amount * aberrationPixelScale
	}

	return []Uniform{
		one(UniformTime, t),
		{Name: UniformResolution, Values: []float32{float32(width), float32(height)}},
		one(UniformToneMapping, flag(s.ToneMapping)),
		one(UniformSaturation, saturation),
		one(UniformContrast, s.Contrast),
		one(UniformVignetteWeight, vignette),
		one(UniformGrainIntensity, grain),
		one(UniformGrainSeed, seed),
		one(UniformAberration, aberration),
		one(UniformAberrationCurve, s.ChromaticAberration.RadialIntensity),
	}
}

// UniformNames lists the uniforms set by Uniforms, in order
func UniformNames() []string {
	us := Uniforms(Settings{}, 0, 1, 1)
	names := make([]string, len(us))
	for i, u := range us {
		names[i] = u.Name
	}
	return names
}

// FragmentSource is the GL twin of Grade without the bloom stage
const FragmentSource = `
#version 410 core
in vec2 vUV;
out vec4 FragColor;

uniform sampler2D screenTexture;
uniform float time;
uniform vec2 resolution;
uniform float toneMapping;
uniform float saturation;
uniform float contrast;
uniform float vignetteWeight;
uniform float grainIntensity;
uniform float grainSeed;
uniform float aberrationAmount;
uniform float aberrationRadial;

const float PI = 3.14159265359;

float rand(vec2 co) {
    return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453);
}

float luminance(vec3 c) {
    return dot(c, vec3(0.2126, 0.7152, 0.0722));
}

void main() {
    vec4 color = texture(screenTexture, vUV);

    // Radial chromatic aberration
    vec2 dir = vUV - 0.5;
    float r = length(dir);
    if (aberrationAmount > 0.0 && r > 0.0) {
        float weight = aberrationRadial > 0.0 ? r * aberrationRadial : 1.0;
        vec2 offset = dir / r * aberrationAmount * weight / resolution.x;
        color.r = texture(screenTexture, vUV + offset).r;
        color.b = texture(screenTexture, vUV - offset).b;
    }

    if (toneMapping > 0.5) {
        color.rgb = 1.0 - exp2(-1.590579 * color.rgb);
    }

    float lum = luminance(color.rgb);
    color.rgb = mix(vec3(lum), color.rgb, 1.0 + saturation / 100.0);

    color.rgb = clamp(color.rgb, 0.0, 1.0);
    vec3 highContrast = color.rgb * color.rgb * (3.0 - 2.0 * color.rgb);
    if (contrast < 1.0) {
        color.rgb = mix(vec3(0.5), color.rgb, contrast);
    } else {
        color.rgb = mix(color.rgb, highContrast, contrast - 1.0);
    }

    // Vignette
    vec2 v = (vUV * 2.0 - 1.0) * 0.5;
    color.rgb *= pow(1.0 + dot(v, v), -vignetteWeight);

    // Film grain weighted towards mid-tones
    if (grainIntensity > 0.0) {
        float n = (rand(vUV * resolution * grainSeed) - 0.5) * grainIntensity / 255.0;
        float l = clamp(luminance(color.rgb), 0.0, 1.0);
        float amount = (cos(-PI + l * PI * 2.0) + 1.0) / 2.0;
        color.rgb = max(color.rgb + n * amount, 0.0);
    }

    FragColor = vec4(clamp(color.rgb, 0.0, 1.0), 1.0);
}
`
