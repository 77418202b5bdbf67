package soft

import "fmt"

type kernelType uint8

// The list of kernels that implement the tracer. Each dispatch records its
// wall time against the kernel type for per-stage statistics.
const (
	generatePrimaryRays kernelType = iota
	rayIntersectionQuery
	rayIntersectionBruteForce
	scanValidityFlags
	compactPaths
	sortPathsByMaterial
	shadeHits
	accumulatePaths
	clearAccumulator
	finalizeFrame
	numKernels
)

// Implements Stringer.
func (kt kernelType) String() string {
	switch kt {
	case generatePrimaryRays:
		return "generatePrimaryRays"
	case rayIntersectionQuery:
		return "rayIntersectionQuery"
	case rayIntersectionBruteForce:
		return "rayIntersectionBruteForce"
	case scanValidityFlags:
		return "scanValidityFlags"
	case compactPaths:
		return "compactPaths"
	case sortPathsByMaterial:
		return "sortPathsByMaterial"
	case shadeHits:
		return "shadeHits"
	case accumulatePaths:
		return "accumulatePaths"
	case clearAccumulator:
		return "clearAccumulator"
	case finalizeFrame:
		return "finalizeFrame"
	default:
		panic(fmt.Sprintf("soft: unsupported kernel type: %d", uint8(kt)))
	}
}
