package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/bdwhst/altair/renderer"
	"github.com/bdwhst/altair/scene"
	"github.com/bdwhst/altair/tracer/soft"
	"github.com/bdwhst/altair/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func renderOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		NumBounces:      uint32(ctx.Int("num-bounces")),
		Workers:         ctx.Int("workers"),
	}
}

func tracingPipeline(ctx *cli.Context) *soft.Pipeline {
	mode := soft.UseBvh
	if ctx.Bool("naive") {
		mode = soft.UseBruteForce
	}
	return soft.DefaultPipeline(mode, ctx.Bool("sort-materials"))
}

// Build the scene to render: the built-in cornell box, optionally with a
// wavefront obj mesh dropped into it.
func loadScene(ctx *cli.Context, opts renderer.Options) (*scene.Scene, error) {
	sc := scene.NewCornellBox(opts.FrameW, opts.FrameH, opts.NumBounces)

	if meshFile := ctx.String("mesh"); meshFile != "" {
		matIndex := sc.AddMaterial(scene.Material{
			Kind:      scene.MatMicrofacet,
			Color:     types.XYZ(0.9, 0.7, 0.3),
			Roughness: 0.35,
		})
		_, err := sc.AddMeshFromFile(meshFile, matIndex, types.XYZ(0, -1, 0), types.Vec3{}, types.XYZ(2, 2, 2))
		if err != nil {
			return nil, err
		}

		// Mesh triangles change the primitive list; rebuild the BVH.
		sc.BuildPrimitives()
		if err = sc.BuildBvh(scene.DefaultMaxPrimsPerLeaf); err != nil {
			return nil, err
		}
	}

	logger.Noticef("scene statistics\n%s", sc.Stats())
	return sc, nil
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderOptions(ctx)

	sc, err := loadScene(ctx, opts)
	if err != nil {
		return err
	}

	// Setup tracing pipeline
	pipeline := tracingPipeline(ctx)
	pipeline.PostProcess = append(pipeline.PostProcess, soft.SaveFrameBuffer(ctx.String("out")))

	// Create renderer
	r, err := renderer.NewDefault(sc, pipeline, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err = r.Render(); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", ctx.String("out"))

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

// Use opengl to render a continuously updating view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	// The opengl context and event callbacks are bound to the main thread.
	runtime.LockOSThread()

	opts := renderOptions(ctx)

	sc, err := loadScene(ctx, opts)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, tracingPipeline(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err = r.Render(); err != nil {
		return err
	}

	displayFrameStats(r.Stats())

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Bounces", "Iteration time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.Bounces),
			fmt.Sprintf("%s", stat.IterationTime),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d iterations", stats.Iterations), fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
