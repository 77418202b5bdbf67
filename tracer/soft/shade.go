package soft

import (
	"time"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
)

// Distance along the surface normal by which scattered ray origins are
// nudged off the surface to avoid re-hitting it.
const shadowBias = 1e-3

func hasNaN(v types.Vec3) bool {
	return v[0] != v[0] || v[1] != v[1] || v[2] != v[2]
}

// Scatter the active paths at their intersection points. Paths that hit an
// emitter fold their weighted radiance into the accumulator and terminate;
// all others sample the surface BSDF, update their throughput and respawn
// from an offset origin. Degenerate samples terminate the path with no
// contribution.
//
// Each lane owns a distinct pixel, so the direct accumulator writes for
// emitter hits do not race.
func (tr *Tracer) shadeHits(bounce, iteration uint32, numActive int) (time.Duration, error) {
	b := tr.buffers
	paths := b.curPaths()
	isects := b.curIsects()
	materials := tr.sceneData.Materials

	elapsed, err := tr.dev.ExecKernel1D(0, numActive, func(gid int) {
		p := &paths[gid]
		is := &isects[gid]
		mat := &materials[is.materialIndex]

		if mat.Kind == scene.MatEmissive {
			radiance := p.throughput.MulComp(mat.Color.Mul(mat.Emittance))
			if !hasNaN(radiance) {
				b.accum[p.pixelIndex] = b.accum[p.pixelIndex].Add(radiance)
			}
			b.flags[gid] = 0
			return
		}

		rng := seededRand(iteration, p.pixelIndex, bounce)
		wi, bsdf, pdf := sampleBsdf(mat, p.ray.dir, is.normal, rng)
		if pdf <= 0 {
			b.flags[gid] = 0
			return
		}

		cos := wi.Dot(is.normal)
		offset := is.normal.Mul(shadowBias)
		if cos < 0 {
			cos = -cos
			offset = offset.Neg()
		}

		p.throughput = p.throughput.MulComp(bsdf).Mul(cos / pdf)
		p.ray = ray{origin: is.point.Add(offset), dir: wi}
		p.remainingBounces--
		b.flags[gid] = 1
	})

	tr.timeKernel(shadeHits, elapsed)
	return elapsed, err
}
