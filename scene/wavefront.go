package scene

import (
	"fmt"

	"github.com/bdwhst/altair/log"
	"github.com/bdwhst/altair/types"
	"github.com/udhos/gwob"
)

var logger = log.New("scene")

// Load a triangle mesh from a wavefront obj file and append it to the scene
// as a single mesh object with the given material and placement. Only vertex
// positions are consumed; per-face materials and normals in the file are
// ignored (shading normals are derived from the triangle planes).
func (sc *Scene) AddMeshFromFile(path string, materialIndex int32, translate, rotateDeg, scale types.Vec3) (int32, error) {
	options := gwob.ObjParserOptions{
		LogStats: false,
		Logger:   func(msg string) { logger.Debug(msg) },
	}

	mesh, err := gwob.NewObjFromFile(path, &options)
	if err != nil {
		return -1, fmt.Errorf("scene: could not parse %s: %s", path, err.Error())
	}
	if len(mesh.Indices)%3 != 0 {
		return -1, fmt.Errorf("scene: %s: index count %d is not a multiple of 3", path, len(mesh.Indices))
	}

	stride := mesh.StrideSize / 4
	offset := mesh.StrideOffsetPosition / 4

	vertexBase := int32(len(sc.Vertices))
	numVertices := len(mesh.Coord) / stride
	for v := 0; v < numVertices; v++ {
		base := v*stride + offset
		sc.Vertices = append(sc.Vertices, types.XYZ(mesh.Coord[base], mesh.Coord[base+1], mesh.Coord[base+2]))
	}

	triStart := int32(len(sc.Triangles))
	for i := 0; i < len(mesh.Indices); i += 3 {
		sc.Triangles = append(sc.Triangles, [3]int32{
			vertexBase + int32(mesh.Indices[i]),
			vertexBase + int32(mesh.Indices[i+1]),
			vertexBase + int32(mesh.Indices[i+2]),
		})
	}

	obj := NewObject(GeomMesh, materialIndex, translate, rotateDeg, scale)
	obj.TriStart = triStart
	obj.TriEnd = int32(len(sc.Triangles))

	logger.Infof("loaded %s: %d vertices, %d triangles", path, numVertices, int(obj.TriEnd-obj.TriStart))
	return sc.AddObject(obj), nil
}
