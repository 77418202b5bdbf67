package cmd

import (
	"errors"
	"strings"

	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/types"
	"github.com/urfave/cli"
)

// Display information about a wavefront obj scene file.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene obj file argument")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".obj") {
		return errors.New("only wavefront scene files with an .obj extension are supported")
	}

	sc := &scene.Scene{Camera: scene.NewCamera(45, 512, 512, 8)}
	matIndex := sc.AddMaterial(scene.Material{Kind: scene.MatDiffuse, Color: types.XYZ(0.85, 0.85, 0.85)})
	if _, err := sc.AddMeshFromFile(sceneFile, matIndex, types.Vec3{}, types.Vec3{}, types.XYZ(1, 1, 1)); err != nil {
		return err
	}

	sc.BuildPrimitives()
	if err := sc.BuildBvh(scene.DefaultMaxPrimsPerLeaf); err != nil {
		return err
	}

	// Display scene info
	logger.Noticef("scene information:\n%s", sc.Stats())

	return nil
}
