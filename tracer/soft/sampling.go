package soft

import (
	"math"
	"math/rand"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

// Build an orthonormal shading frame (tangent, bitangent) around a unit
// normal.
func tangentFrame(n types.Vec3) (types.Vec3, types.Vec3) {
	t := types.XYZ(1, 0, 0)
	if n[0] > 0.9 || n[0] < -0.9 {
		t = types.XYZ(0, 1, 0)
	}
	t = t.Sub(n.Mul(t.Dot(n))).Normalize()
	return t, n.Cross(t)
}

func localToWorld(t, b, n, v types.Vec3) types.Vec3 {
	return t.Mul(v[0]).Add(b.Mul(v[1])).Add(n.Mul(v[2]))
}

// Flip the normal onto the side the ray arrives from.
func faceForward(n, rayDir types.Vec3) types.Vec3 {
	if rayDir.Dot(n) > 0 {
		return n.Neg()
	}
	return n
}

func reflectDir(v, n types.Vec3) types.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Refract by Snell's law. Returns false on total internal reflection.
func refract(v, n types.Vec3, eta float32) (types.Vec3, bool) {
	cosI := -v.Dot(n)
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return types.Vec3{}, false
	}
	cosT := float32(math.Sqrt(float64(1 - sin2T)))
	return v.Mul(eta).Add(n.Mul(eta*cosI - cosT)), true
}

// Schlick's approximation of the Fresnel reflectance.
func schlick(cosI, r0 float32) float32 {
	c := 1 - cosI
	return r0 + (1-r0)*c*c*c*c*c
}

// Sample the BSDF of a non-emitting material: returns the outgoing world
// direction, the BSDF value and the sample's probability density. The caller
// applies throughput *= bsdf * |cos| / pdf. A non-positive pdf marks a
// degenerate sample and terminates the path.
func sampleBsdf(mat *scene.Material, rayDir, normal types.Vec3, rng *rand.Rand) (types.Vec3, types.Vec3, float32) {
	switch mat.Kind {
	case scene.MatSpecular:
		return sampleSpecular(mat, rayDir, normal, rng)
	case scene.MatMicrofacet:
		return sampleMicrofacet(mat, rayDir, normal, rng)
	default:
		return sampleDiffuse(mat, rayDir, normal, rng)
	}
}

// Cosine-weighted hemisphere sample of a Lambertian surface.
func sampleDiffuse(mat *scene.Material, rayDir, normal types.Vec3, rng *rand.Rand) (types.Vec3, types.Vec3, float32) {
	nf := faceForward(normal, rayDir)

	u1 := rng.Float32()
	u2 := rng.Float32()
	r := float32(math.Sqrt(float64(u1)))
	phi := 2 * math.Pi * float64(u2)
	local := types.XYZ(
		r*float32(math.Cos(phi)),
		r*float32(math.Sin(phi)),
		float32(math.Sqrt(float64(1-u1))),
	)

	t, b := tangentFrame(nf)
	wi := localToWorld(t, b, nf, local)

	pdf := local[2] / math.Pi
	bsdf := mat.Color.Mul(1 / math.Pi)
	return wi, bsdf, pdf
}

// Perfect Fresnel specular: stochastically select reflection or refraction
// weighted by the Fresnel term, with the refraction-index ratio chosen by
// the side the ray arrives from.
func sampleSpecular(mat *scene.Material, rayDir, normal types.Vec3, rng *rand.Rand) (types.Vec3, types.Vec3, float32) {
	entering := rayDir.Dot(normal) < 0
	nf := normal
	eta := 1 / mat.IOR
	if !entering {
		nf = normal.Neg()
		eta = mat.IOR
	}

	cosI := -rayDir.Dot(nf)
	r0 := (1 - mat.IOR) / (1 + mat.IOR)
	r0 *= r0

	refracted, ok := refract(rayDir, nf, eta)
	fresnel := schlick(cosI, r0)
	if !ok {
		fresnel = 1
	}

	var wi types.Vec3
	if rng.Float32() < fresnel {
		wi = reflectDir(rayDir, nf)
	} else {
		wi = refracted
	}

	absCos := wi.Dot(normal)
	if absCos < 0 {
		absCos = -absCos
	}
	if absCos < 1e-6 {
		return types.Vec3{}, types.Vec3{}, 0
	}

	// Delta distribution: pdf folds into the lobe-selection probability and
	// the 1/|cos| cancels the caller's cosine term.
	return wi, mat.Color.Mul(1 / absCos), 1
}

// GGX microfacet reflection: sample a half vector from the GGX normal
// distribution and mirror the ray about it.
func sampleMicrofacet(mat *scene.Material, rayDir, normal types.Vec3, rng *rand.Rand) (types.Vec3, types.Vec3, float32) {
	nf := faceForward(normal, rayDir)

	alpha := mat.Roughness * mat.Roughness
	if alpha < 1e-4 {
		alpha = 1e-4
	}

	u1 := rng.Float32()
	u2 := rng.Float32()
	cosT := float32(math.Sqrt(float64((1 - u1) / (1 + (alpha*alpha-1)*u1))))
	sinT := float32(math.Sqrt(float64(1 - cosT*cosT)))
	phi := 2 * math.Pi * float64(u2)

	t, b := tangentFrame(nf)
	h := localToWorld(t, b, nf, types.XYZ(
		sinT*float32(math.Cos(phi)),
		sinT*float32(math.Sin(phi)),
		cosT,
	))

	wi := reflectDir(rayDir, h)

	cosO := -rayDir.Dot(nf)
	cosWi := wi.Dot(nf)
	dotVH := -rayDir.Dot(h)
	if cosO <= 0 || cosWi <= 0 || dotVH <= 0 {
		return types.Vec3{}, types.Vec3{}, 0
	}

	d := ggxD(cosT, alpha)
	pdf := d * cosT / (4 * dotVH)
	if pdf <= 0 {
		return types.Vec3{}, types.Vec3{}, 0
	}

	// Schlick Fresnel with the base color as F0.
	c := 1 - dotVH
	c5 := c * c * c * c * c
	fresnel := mat.Color.Add(types.XYZ(1, 1, 1).Sub(mat.Color).Mul(c5))

	g := smithG1(cosO, alpha) * smithG1(cosWi, alpha)
	bsdf := fresnel.Mul(d * g / (4 * cosO * cosWi))

	return wi, bsdf, pdf
}

// GGX normal distribution evaluated at the half-vector cosine.
func ggxD(cosT, alpha float32) float32 {
	a2 := alpha * alpha
	denom := cosT*cosT*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

// Smith separable shadowing-masking term for GGX.
func smithG1(cos, alpha float32) float32 {
	a2 := alpha * alpha
	return 2 * cos / (cos + float32(math.Sqrt(float64(a2+(1-a2)*cos*cos))))
}
