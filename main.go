package main

import (
	"os"

	"github.com/bdwhst/altair/cmd"
	"github.com/urfave/cli"
)

func renderFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "num-bounces",
			Value: 8,
			Usage: "number of indirect ray bounces",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "worker pool size; 0 selects one worker per logical CPU",
		},
		cli.BoolFlag{
			Name:  "naive",
			Usage: "use brute-force intersection testing instead of the BVH",
		},
		cli.BoolFlag{
			Name:  "sort-materials",
			Usage: "group paths by material before shading",
		},
		cli.StringFlag{
			Name:  "mesh",
			Usage: "wavefront obj file to place inside the scene",
		},
	}
	return append(flags, extra...)
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "altair"
	app.Usage = "render scenes using monte carlo path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame and save it as a png image.`,
					Flags: renderFlags(
						cli.IntFlag{
							Name:  "spp",
							Value: 32,
							Usage: "samples (accumulation iterations) per pixel",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Progressively refine the frame in an opengl window. The arrow keys move the camera and the mouse rotates it; any camera change restarts the accumulation.`,
					Flags: renderFlags(
						cli.IntFlag{
							Name:  "spp",
							Value: 0,
							Usage: "stop refining after this many iterations; 0 keeps refining",
						},
					),
					Action: cmd.RenderInteractive,
				},
			},
		},
		{
			Name:      "scene-info",
			Usage:     "display geometry and BVH statistics for a wavefront obj file",
			ArgsUsage: "scene.obj",
			Action:    cmd.ShowSceneInfo,
		},
	}

	app.Run(os.Args)
}
