package scene

import "github.com/bdwhst/altair/types"

// Build the classic Cornell-box demo scene: an enclosing box of diffuse
// walls, a ceiling light and three spheres exercising the diffuse, specular
// and microfacet material families. The primitive list and BVH are built so
// the returned scene is ready for rendering.
func NewCornellBox(frameW, frameH, maxDepth uint32) *Scene {
	sc := &Scene{}

	white := sc.AddMaterial(Material{Kind: MatDiffuse, Color: types.XYZ(0.85, 0.85, 0.85)})
	red := sc.AddMaterial(Material{Kind: MatDiffuse, Color: types.XYZ(0.75, 0.1, 0.1)})
	green := sc.AddMaterial(Material{Kind: MatDiffuse, Color: types.XYZ(0.1, 0.75, 0.1)})
	light := sc.AddMaterial(Material{Kind: MatEmissive, Color: types.XYZ(1, 1, 0.9), Emittance: 8})
	glass := sc.AddMaterial(Material{Kind: MatSpecular, Color: types.XYZ(0.98, 0.98, 0.98), IOR: 1.52})
	metal := sc.AddMaterial(Material{Kind: MatMicrofacet, Color: types.XYZ(0.9, 0.7, 0.3), Roughness: 0.25})

	// Walls are unit cubes squashed into slabs.
	sc.AddObject(NewObject(GeomCube, white, types.XYZ(0, -2.5, 0), types.Vec3{}, types.XYZ(10, 0.1, 10)))  // floor
	sc.AddObject(NewObject(GeomCube, white, types.XYZ(0, 2.5, 0), types.Vec3{}, types.XYZ(10, 0.1, 10)))   // ceiling
	sc.AddObject(NewObject(GeomCube, white, types.XYZ(0, 0, -2.5), types.Vec3{}, types.XYZ(10, 10, 0.1)))  // back
	sc.AddObject(NewObject(GeomCube, red, types.XYZ(-2.5, 0, 0), types.Vec3{}, types.XYZ(0.1, 10, 10)))    // left
	sc.AddObject(NewObject(GeomCube, green, types.XYZ(2.5, 0, 0), types.Vec3{}, types.XYZ(0.1, 10, 10)))   // right
	sc.AddObject(NewObject(GeomCube, light, types.XYZ(0, 2.44, 0), types.Vec3{}, types.XYZ(1.5, 0.05, 1.5)))

	sc.AddObject(NewObject(GeomSphere, glass, types.XYZ(-0.9, -1.6, 0.4), types.Vec3{}, types.XYZ(1.6, 1.6, 1.6)))
	sc.AddObject(NewObject(GeomSphere, metal, types.XYZ(1.0, -1.7, -0.8), types.Vec3{}, types.XYZ(1.4, 1.4, 1.4)))
	sc.AddObject(NewObject(GeomSphere, white, types.XYZ(0.1, -1.9, 1.3), types.Vec3{}, types.XYZ(1.0, 1.0, 1.0)))

	sc.Camera = NewCamera(45, frameW, frameH, maxDepth)
	sc.Camera.Position = types.XYZ(0, 0, 7.5)
	sc.Camera.LookAt = types.XYZ(0, 0, 0)
	sc.Camera.Update()

	sc.BuildPrimitives()
	sc.BuildBvh(DefaultMaxPrimsPerLeaf)
	return sc
}
