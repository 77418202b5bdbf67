package types

// Epsilon used for approximate float comparisons.
const floatCmpEpsilon = 1e-6

// Compare two 3 component vectors within the given tolerance.
func ApproxEqual(v1, v2 Vec3, epsilon float32) bool {
	for i := 0; i < 3; i++ {
		d := v1[i] - v2[i]
		if d < -epsilon || d > epsilon {
			return false
		}
	}
	return true
}
