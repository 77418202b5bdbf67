package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/bdwhst/altair/types"
	"github.com/olekukonko/tablewriter"
)

// The shape of an object in the scene.
type GeomType uint32

const (
	GeomSphere GeomType = iota
	GeomCube
	GeomMesh
)

// Implements Stringer.
func (t GeomType) String() string {
	switch t {
	case GeomSphere:
		return "sphere"
	case GeomCube:
		return "cube"
	case GeomMesh:
		return "mesh"
	}
	panic(fmt.Sprintf("scene: unsupported geometry type: %d", uint32(t)))
}

// The BSDF family assigned to a material. The set of kinds is closed; the
// shading stage dispatches on this tag.
type MaterialKind uint32

const (
	MatDiffuse MaterialKind = iota
	MatEmissive
	MatSpecular
	MatMicrofacet
)

// Implements Stringer.
func (k MaterialKind) String() string {
	switch k {
	case MatDiffuse:
		return "diffuse"
	case MatEmissive:
		return "emissive"
	case MatSpecular:
		return "specular"
	case MatMicrofacet:
		return "microfacet"
	}
	panic(fmt.Sprintf("scene: unsupported material kind: %d", uint32(k)))
}

// A surface material. Only the fields relevant to the material kind are
// consulted by the shading stage: Emittance for emissive materials,
// Roughness for microfacet ones and IOR for specular ones.
type Material struct {
	Kind      MaterialKind
	Color     types.Vec3
	Emittance float32
	Roughness float32
	IOR       float32
}

// An object in the scene. Analytic shapes (sphere, cube) are unit-sized and
// centered at the local origin; their placement is fully described by the
// object transform. Mesh objects additionally reference the [TriStart, TriEnd)
// range of the scene triangle list.
type Object struct {
	Type          GeomType
	MaterialIndex int32

	Transform    types.Mat4
	InvTransform types.Mat4
	// Inverse-transpose for transforming normals to world space.
	InvTransposeTransform types.Mat4

	TriStart int32
	TriEnd   int32
}

// Create an object from a translation, a per-axis rotation (degrees) and a
// per-axis scale. The inverse matrices are cached at construction time.
func NewObject(geomType GeomType, materialIndex int32, translate, rotateDeg, scale types.Vec3) Object {
	rot := rotationQuat(rotateDeg)
	xform := types.Translate4(translate).Mul4(rot.Mat4()).Mul4(types.Scale4(scale))
	inv := xform.Inv()

	return Object{
		Type:                  geomType,
		MaterialIndex:         materialIndex,
		Transform:             xform,
		InvTransform:          inv,
		InvTransposeTransform: inv.Transpose(),
	}
}

func rotationQuat(rotateDeg types.Vec3) types.Quat {
	const degToRad = 3.14159265358979 / 180.0
	qx := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), rotateDeg[0]*degToRad)
	qy := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), rotateDeg[1]*degToRad)
	qz := types.QuatFromAxisAngle(types.XYZ(0, 0, 1), rotateDeg[2]*degToRad)
	return qz.Mul(qy).Mul(qx).Normalize()
}

// A leaf-level intersection unit referenced by BVH leaves. Analytic objects
// map to a single primitive with TriangleIndex set to -1; mesh objects map to
// one primitive per triangle.
type Primitive struct {
	ObjectIndex   int32
	TriangleIndex int32
}

// A node of the flattened BVH. The root always lives at index 0 with
// Parent == -1. A node is a leaf iff both child indices are -1; leaves own
// the non-empty [FirstPrim, FirstPrim+PrimCount) range of the primitive list.
type BvhNode struct {
	Min types.Vec3
	Max types.Vec3

	Left   int32
	Right  int32
	Parent int32

	FirstPrim int32
	PrimCount int32
}

func (n *BvhNode) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// Set bounding box.
func (n *BvhNode) SetBBox(min, max types.Vec3) {
	n.Min = min
	n.Max = max
}

type Scene struct {
	Camera *Camera

	Objects   []Object
	Materials []Material

	// Mesh geometry. Both lists may be empty when the scene contains no
	// mesh objects.
	Vertices  []types.Vec3
	Triangles [][3]int32

	Primitives []Primitive
	BvhNodes   []BvhNode
}

// Append a material and return its index.
func (sc *Scene) AddMaterial(mat Material) int32 {
	sc.Materials = append(sc.Materials, mat)
	return int32(len(sc.Materials) - 1)
}

// Append an object and return its index.
func (sc *Scene) AddObject(obj Object) int32 {
	sc.Objects = append(sc.Objects, obj)
	return int32(len(sc.Objects) - 1)
}

// Calculate the world-space bounding box of a primitive by transforming the
// local-space bounds of the owning object's shape.
func (sc *Scene) PrimitiveBounds(prim Primitive) (types.Vec3, types.Vec3) {
	obj := &sc.Objects[prim.ObjectIndex]

	var localMin, localMax types.Vec3
	if prim.TriangleIndex >= 0 {
		tri := sc.Triangles[prim.TriangleIndex]
		v0, v1, v2 := sc.Vertices[tri[0]], sc.Vertices[tri[1]], sc.Vertices[tri[2]]
		localMin = types.MinVec3(v0, types.MinVec3(v1, v2))
		localMax = types.MaxVec3(v0, types.MaxVec3(v1, v2))
	} else {
		// Unit sphere and unit cube both fit in the half-unit box.
		localMin = types.XYZ(-0.5, -0.5, -0.5)
		localMax = types.XYZ(0.5, 0.5, 0.5)
	}

	min := types.XYZ(float32(1e30), float32(1e30), float32(1e30))
	max := min.Neg()
	for i := 0; i < 8; i++ {
		corner := types.XYZ(
			pick(i&1 == 0, localMin[0], localMax[0]),
			pick(i&2 == 0, localMin[1], localMax[1]),
			pick(i&4 == 0, localMin[2], localMax[2]),
		)
		world := obj.Transform.TransformPoint(corner)
		min = types.MinVec3(min, world)
		max = types.MaxVec3(max, world)
	}
	return min, max
}

func pick(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Size"})
	table.Append([]string{"Geometry", "---", fmtSize(sc.Objects, sc.Vertices, sc.Triangles, sc.Primitives, sc.BvhNodes)})
	table.Append([]string{"", "Objects", fmtSize(sc.Objects)})
	table.Append([]string{"", "Vertices", fmtSize(sc.Vertices)})
	table.Append([]string{"", "Triangles", fmtSize(sc.Triangles)})
	table.Append([]string{"", "Primitives", fmtSize(sc.Primitives)})
	table.Append([]string{"", "BVH", fmtSize(sc.BvhNodes)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Materials", "---", fmtSize(sc.Materials)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(sc.Objects, sc.Vertices, sc.Triangles, sc.Primitives, sc.BvhNodes, sc.Materials), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
